package user

import (
	"context"
	"net/mail"
	"strings"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	// Register creates a customer or stall owner account.
	Register(ctx context.Context, in RegisterInput) (*User, error)
	// RegisterStaff lets a food court owner create accounts of any role.
	RegisterStaff(ctx context.Context, actor auth.Actor, in RegisterInput) (*User, error)
	Profile(ctx context.Context, actor auth.Actor) (*User, error)
	UpdateProfile(ctx context.Context, actor auth.Actor, name, phone *string) (*User, error)
	ChangePassword(ctx context.Context, actor auth.Actor, current, next string) error
	List(ctx context.Context, actor auth.Actor) ([]User, error)

	// VerifyEmail marks the account holding token as verified.
	VerifyEmail(ctx context.Context, token string) (*User, error)

	// EmailOf resolves the address used for order confirmations.
	EmailOf(ctx context.Context, userID string) (string, error)
}

// VerificationSender delivers the link a new user follows to verify their email.
type VerificationSender interface {
	SendVerification(ctx context.Context, email, token string) error
}

type service struct {
	repo Repository
	mail VerificationSender
}

// NewService wires the user service. mail may be nil, in which case
// verification emails are not sent.
func NewService(repo Repository, mail VerificationSender) Service {
	return &service{repo: repo, mail: mail}
}

func newVerificationToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Role == "" {
		in.Role = auth.RoleCustomer
	}
	if in.Role == auth.RoleFoodCourtOwner {
		return nil, ErrRoleNotAllowed
	}
	u, err := s.create(ctx, in, false)
	if err != nil {
		return nil, err
	}
	s.sendVerification(ctx, u)
	return u, nil
}

func (s *service) RegisterStaff(ctx context.Context, actor auth.Actor, in RegisterInput) (*User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if in.Role == "" {
		in.Role = auth.RoleFoodCourtOwner
	}
	// accounts opened by an admin are trusted
	return s.create(ctx, in, true)
}

func (s *service) create(ctx context.Context, in RegisterInput, verified bool) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	name := strings.TrimSpace(in.Name)
	if n := len([]rune(name)); n < 2 || n > 50 {
		return nil, ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         in.Role,
		Phone:        strings.TrimSpace(in.Phone),
		IsVerified:   verified,
	}
	if !verified {
		u.VerificationToken = newVerificationToken()
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info("register service completed",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
	)
	return u, nil
}

func (s *service) sendVerification(ctx context.Context, u *User) {
	if s.mail == nil || u.VerificationToken == "" {
		return
	}
	if err := s.mail.SendVerification(ctx, u.Email, u.VerificationToken); err != nil {
		logger.FromCtx(ctx).Warn("failed to send verification email",
			zap.String("layer", "service"),
			zap.String("user_id", u.ID),
			zap.Error(err),
		)
	}
}

func (s *service) VerifyEmail(ctx context.Context, token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidVerificationToken
	}
	return s.repo.Verify(ctx, token)
}

func (s *service) Profile(ctx context.Context, actor auth.Actor) (*User, error) {
	return s.repo.GetByID(ctx, actor.UserID)
}

func (s *service) UpdateProfile(ctx context.Context, actor auth.Actor, name, phone *string) (*User, error) {
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if n := len([]rune(trimmed)); n < 2 || n > 50 {
			return nil, ErrInvalidName
		}
		name = &trimmed
	}
	return s.repo.UpdateProfile(ctx, UpdateProfileParams{UserID: actor.UserID, Name: name, Phone: phone})
}

func (s *service) ChangePassword(ctx context.Context, actor auth.Actor, current, next string) error {
	u, err := s.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !CheckPasswordHash(current, u.PasswordHash) {
		return ErrInvalidPassword
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}

	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, hashed)
}

func (s *service) List(ctx context.Context, actor auth.Actor) ([]User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.repo.List(ctx)
}

func (s *service) EmailOf(ctx context.Context, userID string) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}
