package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chills-dance/camp-api/internal/model"
	"github.com/chills-dance/camp-api/internal/repository"
)

// --- in-memory fakes ---

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User // by id
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *u
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (s *fakeUserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (s *fakeUserStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (s *fakeUserStore) setActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsActive = active
	}
}

type fakeTokenStore struct {
	mu   sync.Mutex
	rows map[string]model.RefreshToken // by id
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{rows: map[string]model.RefreshToken{}}
}

func (s *fakeTokenStore) Store(_ context.Context, t model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[t.ID] = t
	return nil
}

func (s *fakeTokenStore) FindValid(_ context.Context, userID, tokenHash string, now time.Time) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.UserID == userID && row.TokenHash == tokenHash && row.ExpiresAt.After(now) {
			return row, nil
		}
	}
	return model.RefreshToken{}, repository.ErrNotFound
}

func (s *fakeTokenStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

func (s *fakeTokenStore) DeleteAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.rows {
		if row.UserID == userID {
			delete(s.rows, id)
		}
	}
	return nil
}

func (s *fakeTokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, row := range s.rows {
		if !row.ExpiresAt.After(now) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type fakeTeacherStore struct {
	mu      sync.Mutex
	userIDs []string
}

func (s *fakeTeacherStore) CreateEmpty(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userIDs = append(s.userIDs, userID)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []model.AuditLogEntry
}

func (a *fakeAudit) Record(_ context.Context, e model.AuditLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	svc      *Service
	users    *fakeUserStore
	tokens   *fakeTokenStore
	teachers *fakeTeacherStore
	audit    *fakeAudit
	issuer   *Issuer
}

func newFixture() *fixture {
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	teachers := &fakeTeacherStore{}
	audit := &fakeAudit{}
	issuer := NewIssuer("access-secret", "refresh-secret", 15, 7)
	svc := NewService(users, tokens, teachers, audit, NewHasher(4), issuer, zerolog.Nop())
	return &fixture{svc: svc, users: users, tokens: tokens, teachers: teachers, audit: audit, issuer: issuer}
}

func registerStudent(t *testing.T, f *fixture, email string) Result {
	t.Helper()
	res, err := f.svc.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "Passw0rd!",
		FirstName: "Alice",
		LastName:  "Adams",
	})
	require.NoError(t, err)
	return res
}

// --- tests ---

func TestRegisterReturnsSanitizedUserAndTokenPair(t *testing.T) {
	f := newFixture()
	res := registerStudent(t, f, "Alice@Example.com")

	require.Equal(t, "alice@example.com", res.User.Email)
	require.Equal(t, model.RoleStudent, res.User.Role)
	require.True(t, res.User.IsActive)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.NotEqual(t, res.AccessToken, res.RefreshToken)
	require.Equal(t, 1, f.tokens.count())
	require.Empty(t, f.teachers.userIDs)
}

func TestRegisterTeacherCreatesEmptyProfile(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Register(context.Background(), RegisterInput{
		Email:     "teach@example.com",
		Password:  "Passw0rd!",
		FirstName: "Tina",
		LastName:  "Turner",
		Role:      model.RoleTeacher,
	})
	require.NoError(t, err)
	require.Equal(t, []string{res.User.ID}, f.teachers.userIDs)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newFixture()
	registerStudent(t, f, "alice@example.com")

	// Case-insensitive duplicate.
	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email:     "ALICE@example.com",
		Password:  "Passw0rd!",
		FirstName: "Alice",
		LastName:  "Adams",
	})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestRegisterValidationEnumeratesViolations(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "not-an-email",
		Password: "short",
		Role:     "WIZARD",
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Message, "All fields are required")
	require.Contains(t, ve.Message, "Password must be at least 8 characters long")
	require.Contains(t, ve.Message, "Invalid email format")
	require.Contains(t, ve.Message, "Invalid role")
}

func TestLoginSucceedsAndStampsLastLogin(t *testing.T) {
	f := newFixture()
	reg := registerStudent(t, f, "alice@example.com")

	res, err := f.svc.Login(context.Background(), "alice@example.com", "Passw0rd!", "10.0.0.1")
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, res.User.ID)
	require.NotNil(t, res.User.LastLoginAt)
	require.Contains(t, f.audit.actions(), model.AuditLoginSuccess)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture()
	res := registerStudent(t, f, "alice@example.com")

	_, errUnknown := f.svc.Login(context.Background(), "nobody@example.com", "Passw0rd!", "")
	_, errWrongPw := f.svc.Login(context.Background(), "alice@example.com", "wrong-password", "")
	f.users.setActive(res.User.ID, false)
	_, errInactive := f.svc.Login(context.Background(), "alice@example.com", "Passw0rd!", "")

	for _, err := range []error{errUnknown, errWrongPw, errInactive} {
		var ue *UnauthorizedError
		require.ErrorAs(t, err, &ue)
		require.Equal(t, "Invalid credentials", ue.Message)
	}
	// Only the wrong-password case hits a real account and gets audited.
	require.Contains(t, f.audit.actions(), model.AuditLoginFailed)
}

func TestRefreshRotatesAndOldTokenIsSingleUse(t *testing.T) {
	f := newFixture()
	registerStudent(t, f, "alice@example.com")

	login, err := f.svc.Login(context.Background(), "alice@example.com", "Passw0rd!", "")
	require.NoError(t, err)

	pair, err := f.svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	// Re-presenting the consumed token must fail.
	_, err = f.svc.Refresh(context.Background(), login.RefreshToken)
	var ue *UnauthorizedError
	require.ErrorAs(t, err, &ue)

	// The rotated replacement still works.
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsForgedAndInactive(t *testing.T) {
	f := newFixture()
	res := registerStudent(t, f, "alice@example.com")

	var ue *UnauthorizedError

	_, err := f.svc.Refresh(context.Background(), "garbage")
	require.ErrorAs(t, err, &ue)

	// A structurally valid token for a user with no persisted row.
	forged, err := f.issuer.IssueRefresh("ghost", "ghost@example.com", model.RoleStudent)
	require.NoError(t, err)
	_, err = f.svc.Refresh(context.Background(), forged)
	require.ErrorAs(t, err, &ue)

	f.users.setActive(res.User.ID, false)
	_, err = f.svc.Refresh(context.Background(), res.RefreshToken)
	require.ErrorAs(t, err, &ue)
}

func TestLogoutRevokesEverySession(t *testing.T) {
	f := newFixture()
	reg := registerStudent(t, f, "alice@example.com")
	login, err := f.svc.Login(context.Background(), "alice@example.com", "Passw0rd!", "")
	require.NoError(t, err)
	require.Equal(t, 2, f.tokens.count())

	require.NoError(t, f.svc.Logout(context.Background(), reg.User.ID, "10.0.0.1"))
	require.Equal(t, 0, f.tokens.count())

	var ue *UnauthorizedError
	_, err = f.svc.Refresh(context.Background(), reg.RefreshToken)
	require.ErrorAs(t, err, &ue)
	_, err = f.svc.Refresh(context.Background(), login.RefreshToken)
	require.ErrorAs(t, err, &ue)
	require.Contains(t, f.audit.actions(), model.AuditLogout)
}

func TestChangePasswordRevokesTokensAndRejectsOldPassword(t *testing.T) {
	f := newFixture()
	reg := registerStudent(t, f, "alice@example.com")

	err := f.svc.ChangePassword(context.Background(), reg.User.ID, "Passw0rd!", "NewPassw0rd!", "")
	require.NoError(t, err)
	require.Equal(t, 0, f.tokens.count())
	require.Contains(t, f.audit.actions(), model.AuditPasswordChanged)

	var ue *UnauthorizedError
	_, err = f.svc.Login(context.Background(), "alice@example.com", "Passw0rd!", "")
	require.ErrorAs(t, err, &ue)
	_, err = f.svc.Refresh(context.Background(), reg.RefreshToken)
	require.ErrorAs(t, err, &ue)

	_, err = f.svc.Login(context.Background(), "alice@example.com", "NewPassw0rd!", "")
	require.NoError(t, err)
}

func TestChangePasswordValidation(t *testing.T) {
	f := newFixture()
	reg := registerStudent(t, f, "alice@example.com")

	var ve *ValidationError
	err := f.svc.ChangePassword(context.Background(), reg.User.ID, "Passw0rd!", "short", "")
	require.ErrorAs(t, err, &ve)

	var ue *UnauthorizedError
	err = f.svc.ChangePassword(context.Background(), reg.User.ID, "wrong-current", "NewPassw0rd!", "")
	require.ErrorAs(t, err, &ue)
	err = f.svc.ChangePassword(context.Background(), "missing-user", "Passw0rd!", "NewPassw0rd!", "")
	require.ErrorAs(t, err, &ue)
}

func TestCleanupExpiredTokens(t *testing.T) {
	f := newFixture()
	reg := registerStudent(t, f, "alice@example.com")

	// Plant an already-expired row next to the live one.
	require.NoError(t, f.tokens.Store(context.Background(), model.RefreshToken{
		ID:        "expired-row",
		UserID:    reg.User.ID,
		TokenHash: HashToken("stale"),
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}))
	require.Equal(t, 2, f.tokens.count())

	require.NoError(t, f.svc.CleanupExpiredTokens(context.Background()))
	require.Equal(t, 1, f.tokens.count())

	// Idempotent.
	require.NoError(t, f.svc.CleanupExpiredTokens(context.Background()))
	require.Equal(t, 1, f.tokens.count())

	// The surviving token still refreshes.
	_, err := f.svc.Refresh(context.Background(), reg.RefreshToken)
	require.NoError(t, err)
}

func TestRegisterLoginRefreshReplayScenario(t *testing.T) {
	f := newFixture()
	registerStudent(t, f, "alice@example.com")

	login, err := f.svc.Login(context.Background(), "alice@example.com", "Passw0rd!", "")
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), login.RefreshToken)
	var ue *UnauthorizedError
	require.ErrorAs(t, err, &ue)
}
