package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/HttpsPratik/new-life/internal/shared"
)

type memoryAccountsRepo struct {
	users              map[uuid.UUID]*User
	byEmail            map[string]uuid.UUID
	verificationTokens map[string]VerificationToken
	resetTokens        map[string]*ResetToken
}

func newMemoryAccountsRepo() *memoryAccountsRepo {
	return &memoryAccountsRepo{
		users:              make(map[uuid.UUID]*User),
		byEmail:            make(map[string]uuid.UUID),
		verificationTokens: make(map[string]VerificationToken),
		resetTokens:        make(map[string]*ResetToken),
	}
}

func (r *memoryAccountsRepo) CreateUser(ctx context.Context, user *User, token VerificationToken) error {
	if _, exists := r.byEmail[user.Email]; exists {
		return shared.ErrDuplicate
	}
	copied := *user
	r.users[user.ID] = &copied
	r.byEmail[user.Email] = user.ID
	r.verificationTokens[token.Token] = token
	return nil
}

func (r *memoryAccountsRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *r.users[id]
	return &copied, nil
}

func (r *memoryAccountsRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryAccountsRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if upd.FullName != nil {
		u.FullName = *upd.FullName
	}
	if upd.PhoneNumber != nil {
		u.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Location != nil {
		u.Location = *upd.Location
	}
	copied := *u
	return &copied, nil
}

func (r *memoryAccountsRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *memoryAccountsRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (r *memoryAccountsRepo) ReplaceVerificationToken(ctx context.Context, token VerificationToken) error {
	for value, existing := range r.verificationTokens {
		if existing.UserID == token.UserID {
			delete(r.verificationTokens, value)
		}
	}
	r.verificationTokens[token.Token] = token
	return nil
}

func (r *memoryAccountsRepo) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*User, error) {
	t, ok := r.verificationTokens[token]
	if !ok {
		return nil, shared.ErrInvalidToken
	}
	if !t.Valid(now) {
		return nil, shared.ErrExpiredToken
	}
	u := r.users[t.UserID]
	u.IsVerified = true
	delete(r.verificationTokens, token)
	copied := *u
	return &copied, nil
}

func (r *memoryAccountsRepo) ReplaceResetToken(ctx context.Context, token ResetToken) error {
	for value, existing := range r.resetTokens {
		if existing.UserID == token.UserID && !existing.IsUsed {
			delete(r.resetTokens, value)
		}
	}
	copied := token
	r.resetTokens[token.Token] = &copied
	return nil
}

func (r *memoryAccountsRepo) GetResetToken(ctx context.Context, token string) (*ResetToken, error) {
	t, ok := r.resetTokens[token]
	if !ok {
		return nil, shared.ErrInvalidToken
	}
	copied := *t
	return &copied, nil
}

func (r *memoryAccountsRepo) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*User, error) {
	t, ok := r.resetTokens[token]
	if !ok {
		return nil, shared.ErrInvalidToken
	}
	if t.IsUsed {
		return nil, shared.ErrUsedToken
	}
	if !now.Before(t.ExpiresAt) {
		return nil, shared.ErrExpiredToken
	}
	t.IsUsed = true
	u := r.users[t.UserID]
	u.PasswordHash = passwordHash
	copied := *u
	return &copied, nil
}

func (r *memoryAccountsRepo) DeleteResetToken(ctx context.Context, token string) error {
	delete(r.resetTokens, token)
	return nil
}

func (r *memoryAccountsRepo) liveResetTokens(userID uuid.UUID) int {
	n := 0
	for _, t := range r.resetTokens {
		if t.UserID == userID && !t.IsUsed {
			n++
		}
	}
	return n
}

var _ Repository = (*memoryAccountsRepo)(nil)

type fakeMailer struct {
	sent []string
	fail bool
}

func (m *fakeMailer) IsEnabled() bool { return true }

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sent = append(m.sent, subject)
	return nil
}

func newTestIssuer(t *testing.T) *SessionIssuer {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionIssuer("test-secret", 15*time.Minute, 7*24*time.Hour, client)
}

func newTestService(t *testing.T, repo *memoryAccountsRepo, mailer *fakeMailer) *Service {
	t.Helper()
	return NewService(repo, newTestIssuer(t), mailer, nil, nil, ServiceConfig{
		VerificationTokenTTL: 24 * time.Hour,
		ResetTokenTTL:        time.Hour,
		FrontendURL:          "http://localhost:3000",
	})
}

func registerVerifiedUser(t *testing.T, svc *Service, repo *memoryAccountsRepo, email, password string) *User {
	t.Helper()
	user, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:         email,
		Password:      password,
		FullName:      "Test User",
		TermsAccepted: true,
	})
	require.NoError(t, err)
	repo.users[user.ID].IsVerified = true
	return user
}

func TestRegisterCreatesUnverifiedAccountWithToken(t *testing.T) {
	repo := newMemoryAccountsRepo()
	mailer := &fakeMailer{}
	svc := newTestService(t, repo, mailer)

	user, message, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "Jane@Example.COM",
		Password:      "password1",
		FullName:      "Jane Doe",
		TermsAccepted: true,
	})
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", user.Email)
	require.False(t, user.IsVerified)
	require.True(t, user.TermsAccepted)
	require.Equal(t, shared.RoleUser, user.Role)
	require.Contains(t, message, "Check your email")
	require.Len(t, repo.verificationTokens, 1)
	require.Len(t, mailer.sent, 1)
}

func TestRegisterRequiresTermsAcceptance(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "jane@example.com",
		Password: "password1",
		FullName: "Jane Doe",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestRegisterRejectsWeakPasswords(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})

	for _, password := range []string{"short1", "passwordonly", "12345678"} {
		_, _, err := svc.Register(context.Background(), RegisterRequest{
			Email:         "jane@example.com",
			Password:      password,
			FullName:      "Jane Doe",
			TermsAccepted: true,
		})
		require.ErrorIs(t, err, shared.ErrValidation, "password %q should be rejected", password)
	}
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	repo := newMemoryAccountsRepo()
	mailer := &fakeMailer{fail: true}
	svc := newTestService(t, repo, mailer)

	user, message, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "jane@example.com",
		Password:      "password1",
		FullName:      "Jane Doe",
		TermsAccepted: true,
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Contains(t, message, "could not send")
	require.Len(t, repo.verificationTokens, 1)
}

func TestLoginHidesAccountExistence(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "password1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, wrongPass := svc.Login(context.Background(), "jane@example.com", "wrongpass1")
	require.ErrorIs(t, wrongPass, shared.ErrInvalidCredentials)
	require.Equal(t, err.Error(), wrongPass.Error())
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "jane@example.com",
		Password:      "password1",
		FullName:      "Jane Doe",
		TermsAccepted: true,
	})
	require.NoError(t, err)

	_, _, loginErr := svc.Login(context.Background(), "jane@example.com", "password1")
	require.ErrorIs(t, loginErr, shared.ErrUnverified)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	user := registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")
	repo.users[user.ID].IsActive = false

	_, _, err := svc.Login(context.Background(), "jane@example.com", "password1")
	require.ErrorIs(t, err, shared.ErrInactive)
}

func TestLoginIssuesSessionAndStampsLastLogin(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	user, pair, err := svc.Login(context.Background(), "jane@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.NotNil(t, user.LastLogin)
}

func TestVerifyEmailConsumesToken(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "jane@example.com",
		Password:      "password1",
		FullName:      "Jane Doe",
		TermsAccepted: true,
	})
	require.NoError(t, err)

	var tokenValue string
	for value := range repo.verificationTokens {
		tokenValue = value
	}

	user, err := svc.VerifyEmail(context.Background(), tokenValue)
	require.NoError(t, err)
	require.True(t, user.IsVerified)
	require.Empty(t, repo.verificationTokens)

	// A consumed token no longer exists, so re-submitting it is invalid.
	_, err = svc.VerifyEmail(context.Background(), tokenValue)
	require.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	user := registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")
	repo.users[user.ID].IsVerified = false

	expired := VerificationToken{
		Token:     "expired-token",
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-25 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Second),
	}
	require.NoError(t, repo.ReplaceVerificationToken(context.Background(), expired))

	_, err := svc.VerifyEmail(context.Background(), "expired-token")
	require.ErrorIs(t, err, shared.ErrExpiredToken)
}

func TestForgotPasswordRevealsMissingAccount(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, shared.ErrNoAccount)
}

func TestForgotPasswordKeepsSingleLiveToken(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	user := registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	require.NoError(t, svc.ForgotPassword(context.Background(), "jane@example.com"))
	require.NoError(t, svc.ForgotPassword(context.Background(), "jane@example.com"))
	require.Equal(t, 1, repo.liveResetTokens(user.ID))
}

func TestForgotPasswordRollsBackOnMailFailure(t *testing.T) {
	repo := newMemoryAccountsRepo()
	mailer := &fakeMailer{fail: true}
	svc := newTestService(t, repo, mailer)
	user := registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	err := svc.ForgotPassword(context.Background(), "jane@example.com")
	require.ErrorIs(t, err, shared.ErrMailDispatch)
	require.Equal(t, 0, repo.liveResetTokens(user.ID))
}

func TestResetPasswordConsumesTokenOnce(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	user := registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	require.NoError(t, svc.ForgotPassword(context.Background(), "jane@example.com"))
	var tokenValue string
	for value := range repo.resetTokens {
		tokenValue = value
	}

	require.NoError(t, svc.ResetPassword(context.Background(), tokenValue, "newpassword2"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[user.ID].PasswordHash), []byte("newpassword2")))

	err := svc.ResetPassword(context.Background(), tokenValue, "anotherpass3")
	require.ErrorIs(t, err, shared.ErrUsedToken)
}

func TestVerifyResetTokenDoesNotConsume(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	require.NoError(t, svc.ForgotPassword(context.Background(), "jane@example.com"))
	var tokenValue string
	for value := range repo.resetTokens {
		tokenValue = value
	}

	token, email, err := svc.VerifyResetToken(context.Background(), tokenValue)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", email)
	require.False(t, token.IsUsed)

	// Still consumable afterwards.
	require.NoError(t, svc.ResetPassword(context.Background(), tokenValue, "newpassword2"))
}

func TestVerifyResetTokenExpiryBoundary(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	user := registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	expired := &ResetToken{
		Token:     "expired-reset",
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Second),
	}
	repo.resetTokens[expired.Token] = expired

	_, _, err := svc.VerifyResetToken(context.Background(), "expired-reset")
	require.ErrorIs(t, err, shared.ErrExpiredToken)

	live := &ResetToken{
		Token:     "live-reset",
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Second),
	}
	repo.resetTokens[live.Token] = live

	_, _, err = svc.VerifyResetToken(context.Background(), "live-reset")
	require.NoError(t, err)
}

func TestChangePasswordVerifiesOldPassword(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	user := registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	err := svc.ChangePassword(context.Background(), user.ID, "wrongpass1", "newpassword2")
	require.ErrorIs(t, err, shared.ErrIncorrectPassword)

	require.NoError(t, svc.ChangePassword(context.Background(), user.ID, "password1", "newpassword2"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[user.ID].PasswordHash), []byte("newpassword2")))
}

func TestRefreshRejectsInactiveAccount(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	user := registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	_, pair, err := svc.Login(context.Background(), "jane@example.com", "password1")
	require.NoError(t, err)

	repo.users[user.ID].IsActive = false
	_, refreshErr := svc.Refresh(context.Background(), pair.Refresh)
	require.ErrorIs(t, refreshErr, shared.ErrInactive)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	repo := newMemoryAccountsRepo()
	svc := newTestService(t, repo, &fakeMailer{})
	registerVerifiedUser(t, svc, repo, "jane@example.com", "password1")

	_, pair, err := svc.Login(context.Background(), "jane@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.Refresh))

	_, refreshErr := svc.Refresh(context.Background(), pair.Refresh)
	require.ErrorIs(t, refreshErr, shared.ErrUnauthorized)

	// Logging out twice is a client error, not a fatal one.
	logoutErr := svc.Logout(context.Background(), pair.Refresh)
	require.ErrorIs(t, logoutErr, shared.ErrValidation)
}
