package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/HttpsPratik/new-life/internal/mail"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// TermsSource resolves the currently active terms version so registration
// can stamp it on the account.
type TermsSource interface {
	ActiveVersion(ctx context.Context) (string, error)
}

// ServiceConfig carries the tunables of the account flows.
type ServiceConfig struct {
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration
	FrontendURL          string
}

// Service wraps the account lifecycle business rules.
type Service struct {
	repo     Repository
	sessions *SessionIssuer
	mailer   mail.Mailer
	logger   *slog.Logger
	terms    TermsSource
	cfg      ServiceConfig
}

// NewService constructs a Service. terms may be nil, in which case
// registration stamps the fallback version "1.0".
func NewService(repo Repository, sessions *SessionIssuer, mailer mail.Mailer, terms TermsSource, logger *slog.Logger, cfg ServiceConfig) *Service {
	if cfg.VerificationTokenTTL <= 0 {
		cfg.VerificationTokenTTL = 24 * time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, sessions: sessions, mailer: mailer, terms: terms, logger: logger, cfg: cfg}
}

// RegisterRequest carries the registration input.
type RegisterRequest struct {
	Email         string
	Password      string
	FullName      string
	PhoneNumber   string
	Location      string
	TermsAccepted bool
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", shared.ErrValidation)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: password must contain at least one letter and one digit", shared.ErrValidation)
	}
	return nil
}

// Register creates an unverified account, mints its verification token and
// dispatches the verification email. Dispatch failure does not roll back the
// account; it only changes the returned message.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	if !req.TermsAccepted {
		return nil, "", fmt.Errorf("%w: you must accept the terms and conditions", shared.ErrValidation)
	}
	if err := validatePasswordStrength(req.Password); err != nil {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("accounts: hash password: %w", err)
	}

	now := time.Now().UTC()
	version := "1.0"
	if s.terms != nil {
		if v, err := s.terms.ActiveVersion(ctx); err == nil && v != "" {
			version = v
		}
	}

	user := &User{
		ID:              uuid.New(),
		Email:           NormalizeEmail(req.Email),
		PasswordHash:    string(hash),
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		Location:        req.Location,
		Role:            shared.RoleUser,
		IsActive:        true,
		IsVerified:      false,
		TermsAccepted:   true,
		TermsAcceptedAt: &now,
		TermsVersion:    version,
		DateJoined:      now,
	}

	tokenValue, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}
	token := VerificationToken{
		Token:     tokenValue,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.VerificationTokenTTL),
	}

	if err := s.repo.CreateUser(ctx, user, token); err != nil {
		return nil, "", err
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.FrontendURL, tokenValue)
	subject, body := mail.VerificationEmail(user.FullName, link)
	message := "Registration successful! Check your email to verify your account."
	if !s.sendBestEffort(user.Email, subject, body, "verification email") {
		message = "Registration successful! We could not send the verification email, please request a new one later."
	}
	return user, message, nil
}

// Login authenticates credentials and issues a session pair. Credential and
// lookup failures collapse into one generic error; the verified and active
// checks report distinct messages.
func (s *Service) Login(ctx context.Context, email, password string) (*User, TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, TokenPair{}, shared.ErrUnverified
	}
	if !user.IsActive {
		return nil, TokenPair{}, shared.ErrInactive
	}

	pair, err := s.sessions.Issue(user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("touch last login", slog.Any("error", err))
	} else {
		user.LastLogin = &now
	}
	return user, pair, nil
}

// Logout revokes the refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.Invalidate(ctx, refreshToken)
}

// Refresh mints a new access token from a live refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.sessions.Subject(refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return TokenPair{}, shared.ErrUnauthorized
	}
	if !user.IsActive {
		return TokenPair{}, shared.ErrInactive
	}
	return s.sessions.Refresh(ctx, refreshToken, user)
}

// Profile returns the account for the given ID.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// UpdateProfile applies the profile update and returns the fresh record.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error) {
	return s.repo.UpdateProfile(ctx, id, upd)
}

// ChangePassword rotates the password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return shared.ErrIncorrectPassword
	}
	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("accounts: hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// ForgotPassword mints a reset token and emails the reset link. Unlike
// registration, a dispatch failure here rolls the token back and fails the
// whole operation.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return shared.ErrNoAccount
	}

	tokenValue, err := GenerateToken()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	token := ResetToken{
		Token:     tokenValue,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.ResetTokenTTL),
	}
	if err := s.repo.ReplaceResetToken(ctx, token); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, tokenValue)
	subject, body := mail.PasswordResetEmail(user.FullName, link)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		s.logger.Error("send password reset email", slog.Any("error", err))
		if delErr := s.repo.DeleteResetToken(ctx, tokenValue); delErr != nil {
			s.logger.Error("rollback reset token", slog.Any("error", delErr))
		}
		return shared.ErrMailDispatch
	}
	return nil
}

// VerifyResetToken reports a reset token's validity without consuming it.
// It returns the owning account's email for the reset UX.
func (s *Service) VerifyResetToken(ctx context.Context, tokenValue string) (*ResetToken, string, error) {
	token, err := s.repo.GetResetToken(ctx, tokenValue)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	if token.IsUsed {
		return nil, "", shared.ErrUsedToken
	}
	if !now.Before(token.ExpiresAt) {
		return nil, "", shared.ErrExpiredToken
	}
	user, err := s.repo.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, "", err
	}
	return token, user.Email, nil
}

// ResetPassword consumes a reset token and replaces the password. The token
// is marked used, not deleted, so the audit trail survives.
func (s *Service) ResetPassword(ctx context.Context, tokenValue, newPassword string) error {
	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("accounts: hash password: %w", err)
	}
	_, err = s.repo.ConsumeResetToken(ctx, tokenValue, string(hash), time.Now().UTC())
	return err
}

// VerifyEmail consumes a verification token, marks the account verified and
// sends the welcome email best-effort.
func (s *Service) VerifyEmail(ctx context.Context, tokenValue string) (*User, error) {
	user, err := s.repo.ConsumeVerificationToken(ctx, tokenValue, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	subject, body := mail.WelcomeEmail(user.FullName, s.cfg.FrontendURL)
	s.sendBestEffort(user.Email, subject, body, "welcome email")
	return user, nil
}

func (s *Service) sendBestEffort(to, subject, body, what string) bool {
	if err := s.mailer.Send(to, subject, body); err != nil {
		s.logger.Warn("send "+what, slog.String("to", to), slog.Any("error", err))
		return false
	}
	return true
}
