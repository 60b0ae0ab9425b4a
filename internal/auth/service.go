package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chills-dance/camp-api/internal/model"
	"github.com/chills-dance/camp-api/internal/repository"
	pkglog "github.com/chills-dance/camp-api/pkg/log"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore is the slice of the credential store the session manager needs
// for user records.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// TokenStore persists refresh-token rows for rotation and revocation.
type TokenStore interface {
	Store(ctx context.Context, t model.RefreshToken) error
	FindValid(ctx context.Context, userID, tokenHash string, now time.Time) (model.RefreshToken, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TeacherStore creates the empty profile that accompanies a TEACHER
// registration.
type TeacherStore interface {
	CreateEmpty(ctx context.Context, userID string) error
}

// AuditRecorder receives security-relevant events. Recording is
// fire-and-forget: implementations log their own failures and never block or
// fail the calling operation.
type AuditRecorder interface {
	Record(ctx context.Context, e model.AuditLogEntry)
}

// Service is the session manager. It owns no state beyond its injected
// collaborators; all operations are single-attempt and synchronous.
type Service struct {
	users    UserStore
	tokens   TokenStore
	teachers TeacherStore
	audit    AuditRecorder
	hasher   Hasher
	issuer   *Issuer
	log      pkglog.Logger
}

// NewService wires the session manager with explicit dependencies.
func NewService(users UserStore, tokens TokenStore, teachers TeacherStore, audit AuditRecorder, hasher Hasher, issuer *Issuer, log pkglog.Logger) *Service {
	return &Service{users: users, tokens: tokens, teachers: teachers, audit: audit, hasher: hasher, issuer: issuer, log: log}
}

// Result is returned by Register and Login: the sanitized user plus a fresh
// token pair.
type Result struct {
	User         model.SanitizedUser
	AccessToken  string
	RefreshToken string
}

// TokenPair is returned by Refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterInput carries the registration fields. Role defaults to STUDENT
// when empty.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Register validates input, creates the user (and, for teachers, an empty
// profile), and issues a token pair.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Result, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := strings.ToUpper(strings.TrimSpace(in.Role))
	if role == "" {
		role = model.RoleStudent
	}

	var violations []string
	if email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		violations = append(violations, "All fields are required")
	}
	if in.Password != "" && len(in.Password) < 8 {
		violations = append(violations, "Password must be at least 8 characters long")
	}
	if email != "" && !emailRe.MatchString(email) {
		violations = append(violations, "Invalid email format")
	}
	if !model.ValidRole(role) {
		violations = append(violations, "Invalid role")
	}
	if len(violations) > 0 {
		return Result{}, validationErr(strings.Join(violations, ", "))
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return Result{}, conflictErr("User with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return Result{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Result{}, err
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Result{}, conflictErr("User with this email already exists")
		}
		return Result{}, err
	}
	if role == model.RoleTeacher {
		if err := s.teachers.CreateEmpty(ctx, user.ID); err != nil {
			return Result{}, err
		}
	}

	pair, err := s.issueTokens(ctx, *user)
	if err != nil {
		return Result{}, err
	}
	s.log.Info().Str("user_id", user.ID).Str("role", role).Msg("user registered")
	return Result{User: user.Sanitize(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Login verifies credentials and issues a token pair. Unknown email, inactive
// account and wrong password all fail with the identical message.
func (s *Service) Login(ctx context.Context, email, password, ip string) (Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Result{}, validationErr("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, unauthorizedErr("Invalid credentials")
		}
		return Result{}, err
	}
	if !user.IsActive {
		return Result{}, unauthorizedErr("Invalid credentials")
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		s.record(ctx, user.ID, model.AuditLoginFailed, ip, nil)
		return Result{}, unauthorizedErr("Invalid credentials")
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return Result{}, err
	}
	user.LastLoginAt = &now

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return Result{}, err
	}
	s.record(ctx, user.ID, model.AuditLoginSuccess, ip, nil)
	return Result{User: user.Sanitize(), AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token's persisted row is deleted before the new one is created, so the old
// token can never be replayed. All verification failures normalize to
// UnauthorizedError; the expired case keeps a distinct message so clients can
// prompt a re-login instead of retrying.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return TokenPair{}, unauthorizedErr("Refresh token expired")
		}
		return TokenPair{}, unauthorizedErr("Invalid refresh token")
	}

	now := time.Now().UTC()
	row, err := s.tokens.FindValid(ctx, claims.UserID, HashToken(refreshToken), now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, unauthorizedErr("Invalid refresh token")
		}
		return TokenPair{}, err
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, unauthorizedErr("Invalid refresh token")
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, unauthorizedErr("Invalid refresh token")
	}

	// Rotate on use: the old row goes away before the replacement exists.
	if err := s.tokens.Delete(ctx, row.ID); err != nil {
		return TokenPair{}, err
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes every refresh token for the user, across all devices.
func (s *Service) Logout(ctx context.Context, userID, ip string) error {
	if err := s.tokens.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	s.record(ctx, userID, model.AuditLogout, ip, nil)
	return nil
}

// ChangePassword replaces the password hash and revokes all refresh tokens,
// forcing a re-login on every device.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, ip string) error {
	if len(newPassword) < 8 {
		return validationErr("New password must be at least 8 characters long")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorizedErr("User not found")
		}
		return err
	}
	if !s.hasher.Verify(user.PasswordHash, currentPassword) {
		return unauthorizedErr("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return err
	}
	if err := s.tokens.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	s.record(ctx, userID, model.AuditPasswordChanged, ip, nil)
	return nil
}

// CleanupExpiredTokens removes refresh-token rows past expiry. Idempotent and
// safe to run concurrently with refreshes: a racing refresh either uses its
// still-valid row or fails cleanly with UnauthorizedError.
func (s *Service) CleanupExpiredTokens(ctx context.Context) error {
	n, err := s.tokens.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired refresh tokens removed")
	}
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user model.User) (TokenPair, error) {
	access, err := s.issuer.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issuer.IssueRefresh(user.ID, user.Email, user.Role)
	if err != nil {
		return TokenPair{}, err
	}
	row := model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: HashToken(refresh),
		ExpiresAt: time.Now().UTC().Add(s.issuer.RefreshTTL()),
	}
	if err := s.tokens.Store(ctx, row); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *Service) record(ctx context.Context, userID, action, ip string, details map[string]any) {
	s.audit.Record(ctx, model.AuditLogEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Action:     action,
		Resource:   "USER",
		ResourceID: userID,
		IPAddress:  ip,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	})
}
