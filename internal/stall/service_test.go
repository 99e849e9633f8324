package stall

import (
	"context"
	"testing"

	"foodcourt-be/internal/auth"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListActive(ctx context.Context) ([]Stall, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Stall), args.Error(1)
}

func (m *MockRepository) ListByOwner(ctx context.Context, ownerID string) ([]Stall, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Stall), args.Error(1)
}

func (m *MockRepository) OwnedIDs(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Stall, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stall), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, s *Stall) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, s *Stall) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var (
	owner    = auth.Actor{UserID: "u-1", Role: auth.RoleStallOwner}
	stranger = auth.Actor{UserID: "u-2", Role: auth.RoleStallOwner}
	admin    = auth.Actor{UserID: "u-9", Role: auth.RoleFoodCourtOwner}
	customer = auth.Actor{UserID: "u-3", Role: auth.RoleCustomer}
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("Create", ctx, mock.MatchedBy(func(s *Stall) bool {
			return s.OwnerID == "u-1" && s.Name == "Dumplings" && s.IsActive && s.ID != ""
		})).Return(nil)

		st, err := NewService(repo, nil).Create(ctx, owner, CreateInput{Name: "  Dumplings ", Rent: decimal.NewFromInt(50)})
		require.NoError(t, err)
		assert.Equal(t, "Dumplings", st.Name)
		repo.AssertExpectations(t)
	})

	t.Run("CustomerRejected", func(t *testing.T) {
		_, err := NewService(new(MockRepository), nil).Create(ctx, customer, CreateInput{Name: "x"})
		assert.ErrorIs(t, err, ErrNotStaff)
	})

	t.Run("NegativeRent", func(t *testing.T) {
		_, err := NewService(new(MockRepository), nil).Create(ctx, owner, CreateInput{Name: "x", Rent: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, ErrInvalidRent)
	})

	t.Run("BlankName", func(t *testing.T) {
		_, err := NewService(new(MockRepository), nil).Create(ctx, owner, CreateInput{Name: "   "})
		assert.ErrorIs(t, err, ErrInvalidName)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	name := "Renamed"

	t.Run("Owner", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "s-1").Return(&Stall{ID: "s-1", OwnerID: "u-1", Name: "Old"}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*stall.Stall")).Return(nil)

		st, err := NewService(repo, nil).Update(ctx, owner, "s-1", UpdateInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", st.Name)
	})

	t.Run("AdminOverride", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "s-1").Return(&Stall{ID: "s-1", OwnerID: "u-1"}, nil)
		repo.On("Update", ctx, mock.Anything).Return(nil)

		_, err := NewService(repo, nil).Update(ctx, admin, "s-1", UpdateInput{Name: &name})
		assert.NoError(t, err)
	})

	t.Run("Stranger", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "s-1").Return(&Stall{ID: "s-1", OwnerID: "u-1"}, nil)

		_, err := NewService(repo, nil).Update(ctx, stranger, "s-1", UpdateInput{Name: &name})
		assert.ErrorIs(t, err, ErrNotOwner)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", ctx, "s-x").Return(nil, ErrStallNotFound)

		_, err := NewService(repo, nil).Update(ctx, owner, "s-x", UpdateInput{})
		assert.ErrorIs(t, err, ErrStallNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRepository)
	repo.On("GetByID", ctx, "s-1").Return(&Stall{ID: "s-1", OwnerID: "u-1"}, nil)
	repo.On("Delete", ctx, "s-1").Return(nil)

	assert.NoError(t, NewService(repo, nil).Delete(ctx, owner, "s-1"))
	assert.ErrorIs(t, NewService(repo, nil).Delete(ctx, stranger, "s-1"), ErrNotOwner)
	repo.AssertNumberOfCalls(t, "Delete", 1)
}

type MockMenuCache struct {
	mock.Mock
}

func (m *MockMenuCache) Delete(ctx context.Context, stallID string) error {
	return m.Called(ctx, stallID).Error(0)
}

func TestService_Delete_DropsCachedMenu(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalidated", func(t *testing.T) {
		repo, menus := new(MockRepository), new(MockMenuCache)
		repo.On("GetByID", ctx, "s-1").Return(&Stall{ID: "s-1", OwnerID: "u-1"}, nil)
		repo.On("Delete", ctx, "s-1").Return(nil)
		menus.On("Delete", ctx, "s-1").Return(nil).Once()

		require.NoError(t, NewService(repo, menus).Delete(ctx, owner, "s-1"))
		menus.AssertExpectations(t)
	})

	t.Run("CacheFailureIsNotFatal", func(t *testing.T) {
		repo, menus := new(MockRepository), new(MockMenuCache)
		repo.On("GetByID", ctx, "s-1").Return(&Stall{ID: "s-1", OwnerID: "u-1"}, nil)
		repo.On("Delete", ctx, "s-1").Return(nil)
		menus.On("Delete", ctx, "s-1").Return(assert.AnError)

		assert.NoError(t, NewService(repo, menus).Delete(ctx, owner, "s-1"))
	})

	t.Run("NotOwnerLeavesCache", func(t *testing.T) {
		repo, menus := new(MockRepository), new(MockMenuCache)
		repo.On("GetByID", ctx, "s-1").Return(&Stall{ID: "s-1", OwnerID: "u-1"}, nil)

		assert.ErrorIs(t, NewService(repo, menus).Delete(ctx, stranger, "s-1"), ErrNotOwner)
		menus.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
