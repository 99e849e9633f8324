package order

import "foodcourt-be/internal/auth"

var allowedNext = map[Status][]Status{
	StatusPending:        {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup, StatusCancelled},
	StatusReadyForPickup: {StatusCompleted},
}

func canMove(from, to Status) bool {
	for _, s := range allowedNext[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CheckTransition decides whether actor may move o to the requested status.
// ownedStalls lists the stalls the actor owns. Must be evaluated against a
// freshly read order.
func CheckTransition(o *Order, to Status, actor auth.Actor, ownedStalls []string) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	if o.Status.Terminal() {
		return ErrOrderClosed
	}
	if !mayTransition(o, to, actor, ownedStalls) {
		return ErrUnauthorized
	}

	// food court owners may force any move out of an open state
	if actor.IsAdmin() {
		return nil
	}
	if !canMove(o.Status, to) {
		return ErrIllegalTransition
	}
	return nil
}

func mayTransition(o *Order, to Status, actor auth.Actor, ownedStalls []string) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.Role == auth.RoleStallOwner && o.HasStall(ownedStalls):
		return true
	case to == StatusCancelled && o.Status == StatusPending && actor.UserID == o.CustomerID:
		return true
	}
	return false
}

// CanView applies the read-side visibility rule to a single order.
func CanView(o *Order, actor auth.Actor, ownedStalls []string) bool {
	switch {
	case actor.IsAdmin():
		return true
	case actor.UserID == o.CustomerID:
		return true
	case actor.Role == auth.RoleStallOwner:
		return o.HasStall(ownedStalls)
	}
	return false
}
