package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/policy"
	repo "github.com/oksasatya/go-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
)

var (
	// ErrConflict signals an email-uniqueness violation.
	ErrConflict = errors.New("email already registered")
	// ErrNotFound signals that the target user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials collapses unknown email and wrong password into
	// one outcome so login cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrAccountInactive is login's distinct message for a known-good
	// credential on an account that has not been activated.
	ErrAccountInactive = errors.New("account not activated, please verify your email")
	// ErrInvalidToken signals an unmatched or already-consumed
	// verification/reset token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidPassword signals an old-password mismatch on change.
	ErrInvalidPassword = errors.New("incorrect old password")
	// ErrForbidden is the single outcome for every policy deny; it does not
	// leak which rule triggered.
	ErrForbidden = errors.New("not enough permissions")
	// ErrBadRequest signals malformed input, such as an empty bulk batch.
	ErrBadRequest = errors.New("invalid request")
)

// Mailer dispatches account emails. Implementations are best-effort; the
// services log a failed dispatch and keep the already-committed state.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// Service implements the user lifecycle: registration, verification,
// login, password management, profile and administrative transitions.
// Every mutating operation consults the authorization policy before it
// touches the store.
type Service struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Mail   Mailer
	Logger *logrus.Logger

	now func() time.Time
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, mail Mailer, logger *logrus.Logger) *Service {
	return &Service{Repo: r, JWT: jwt, Mail: mail, Logger: logger, now: time.Now}
}

// WithClock swaps the time source, for deterministic tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Role     entity.Role
}

// Register creates a pending user (inactive, unverified) and dispatches a
// verification email. Email uniqueness is enforced atomically by the store.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if !role.IsValid() {
		return nil, ErrBadRequest
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	token, err := helpers.GenerateToken()
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Email:             in.Email,
		Password:          hash,
		FullName:          in.FullName,
		Role:              role,
		VerificationToken: token,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := s.Mail.SendVerificationEmail(ctx, u.Email, u.FullName, token); err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("verification email dispatch failed")
	}
	s.Logger.WithFields(logrus.Fields{"email": u.Email, "role": u.Role}).Info("user registered")
	return u, nil
}

// CreateInput is the administrative create payload. Unlike registration
// the flags are taken as given and no verification email goes out.
type CreateInput struct {
	Email      string
	Password   string
	FullName   string
	Role       entity.Role
	IsActive   bool
	IsVerified bool
}

// CreateUser provisions an account directly, policy permitting.
func (s *Service) CreateUser(ctx context.Context, actor *entity.User, in CreateInput) (*entity.User, error) {
	if !policy.Allow(actor.Role, policy.ActionCreate, false) {
		return nil, ErrForbidden
	}
	role := in.Role
	if role == "" {
		role = entity.RoleUser
	}
	if !role.IsValid() {
		return nil, ErrBadRequest
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:      in.Email,
		Password:   hash,
		FullName:   in.FullName,
		Role:       role,
		IsActive:   in.IsActive,
		IsVerified: in.IsVerified,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"email": u.Email, "actor_id": actor.ID}).Info("user created by admin")
	return u, nil
}

// VerifyEmail consumes a verification token: the holder becomes active and
// verified and the token is cleared in the same store operation, so a
// second use of the same token fails.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	u, err := s.Repo.ConsumeVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	s.Logger.WithField("email", u.Email).Info("email verified")
	return u, nil
}

// LoginResult carries the issued session token and its expiry.
type LoginResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Login authenticates email/password and issues a session token. Unknown
// email and wrong password produce the same error; an inactive account
// gets a distinct message but the same unauthorized outcome.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	token, exp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, err
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// RequestPasswordReset stores a fresh reset token for the account and
// dispatches it. It reports success whether or not the email exists, so
// the endpoint cannot be used to probe for accounts. A repeated request
// supersedes the previous token.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil
	}
	token, err := helpers.GenerateToken()
	if err != nil {
		return err
	}
	if err := s.Repo.SetResetToken(ctx, u.ID, token); err != nil {
		return err
	}
	if err := s.Mail.SendPasswordResetEmail(ctx, u.Email, u.FullName, token); err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("reset email dispatch failed")
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token, rehashing the password and
// clearing the token atomically.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (*entity.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.ConsumeResetToken(ctx, token, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	s.Logger.WithField("email", u.Email).Info("password reset")
	return u, nil
}

// ChangePassword rehashes the actor's own password after verifying the
// current one.
func (s *Service) ChangePassword(ctx context.Context, actor *entity.User, oldPassword, newPassword string) error {
	if !helpers.CompareHashAndPassword(actor.Password, oldPassword) {
		return ErrInvalidPassword
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, actor.ID, hash)
}

// GetUser returns a single user record, policy permitting.
func (s *Service) GetUser(ctx context.Context, actor *entity.User, id int64) (*entity.User, error) {
	if !policy.Allow(actor.Role, policy.ActionView, actor.IsSelf(id)) {
		return nil, ErrForbidden
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdatePatch carries only the fields present in the request; nil means
// "leave unchanged".
type UpdatePatch struct {
	Email      *string
	FullName   *string
	Password   *string
	Role       *entity.Role
	IsActive   *bool
	IsVerified *bool
}

// Update applies a partial update to the target. Role, activation and
// verification fields require admin-level privilege and are stripped from
// the patch before any mutation otherwise; a non-admin can therefore never
// escalate their own role through this path. An admin still cannot
// deactivate their own account here.
func (s *Service) Update(ctx context.Context, actor *entity.User, targetID int64, patch UpdatePatch) (*entity.User, error) {
	self := actor.IsSelf(targetID)
	action := policy.ActionUpdateOther
	if self {
		action = policy.ActionUpdateSelf
	}
	if !policy.Allow(actor.Role, action, self) {
		return nil, ErrForbidden
	}

	if !policy.Allow(actor.Role, policy.ActionChangeRole, self) {
		patch.Role = nil
		patch.IsActive = nil
		patch.IsVerified = nil
		patch.Password = nil
	}
	if patch.Role != nil && !patch.Role.IsValid() {
		return nil, ErrBadRequest
	}
	if patch.IsActive != nil && !*patch.IsActive && !policy.Allow(actor.Role, policy.ActionDeactivate, self) {
		return nil, ErrForbidden
	}

	u, err := s.Repo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.Password != nil {
		hash, err := helpers.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.IsVerified != nil {
		u.IsVerified = *patch.IsVerified
	}
	u.UpdatedAt = s.now()

	if err := s.Repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return nil, ErrConflict
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "actor_id": actor.ID}).Info("user updated")
	return u, nil
}

// Activate turns the target account on. Self-activation is denied by
// policy along with the other self-targeted lifecycle actions.
func (s *Service) Activate(ctx context.Context, actor *entity.User, targetID int64) (*entity.User, error) {
	return s.setActive(ctx, actor, targetID, true)
}

// Deactivate turns the target account off, which blocks login and every
// authenticated action. An admin can never deactivate themselves.
func (s *Service) Deactivate(ctx context.Context, actor *entity.User, targetID int64) (*entity.User, error) {
	return s.setActive(ctx, actor, targetID, false)
}

func (s *Service) setActive(ctx context.Context, actor *entity.User, targetID int64, active bool) (*entity.User, error) {
	action := policy.ActionDeactivate
	if active {
		action = policy.ActionActivate
	}
	if !policy.Allow(actor.Role, action, actor.IsSelf(targetID)) {
		return nil, ErrForbidden
	}
	u, err := s.Repo.SetActive(ctx, targetID, active)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "active": active}).Info("activation changed")
	return u, nil
}

// VerifyUser is the admin override for email verification: it marks the
// target verified and clears any pending verification token.
func (s *Service) VerifyUser(ctx context.Context, actor *entity.User, targetID int64) (*entity.User, error) {
	if !policy.Allow(actor.Role, policy.ActionVerify, actor.IsSelf(targetID)) {
		return nil, ErrForbidden
	}
	u, err := s.Repo.MarkVerified(ctx, targetID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("user verified by admin")
	return u, nil
}

// Delete permanently removes the target. Deletion is terminal and ids are
// never reused; an admin cannot delete their own account.
func (s *Service) Delete(ctx context.Context, actor *entity.User, targetID int64) error {
	if !policy.Allow(actor.Role, policy.ActionDelete, actor.IsSelf(targetID)) {
		return ErrForbidden
	}
	if err := s.Repo.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": targetID, "actor_id": actor.ID}).Info("user deleted")
	return nil
}

// BulkAction applies one transition uniformly across ids, all-or-nothing.
// A batch is rejected before any mutation when it is empty, names an
// unknown action, fails to resolve every id, or would deactivate or delete
// the acting admin's own account.
func (s *Service) BulkAction(ctx context.Context, actor *entity.User, ids []int64, action string) (int64, error) {
	if !policy.Allow(actor.Role, policy.ActionBulk, false) {
		return 0, ErrForbidden
	}
	if len(ids) == 0 {
		return 0, ErrBadRequest
	}
	act := repo.BulkAction(action)
	if !act.IsValid() {
		return 0, ErrBadRequest
	}
	if act == repo.BulkDelete || act == repo.BulkDeactivate {
		for _, id := range ids {
			if actor.IsSelf(id) {
				return 0, ErrForbidden
			}
		}
	}
	n, err := s.Repo.BulkApply(ctx, ids, act)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrBadRequest
		}
		return 0, err
	}
	s.Logger.WithFields(logrus.Fields{"action": action, "affected": n}).Info("bulk action applied")
	return n, nil
}
