package accounts

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/HttpsPratik/new-life/internal/authz"
	"github.com/HttpsPratik/new-life/internal/platform/httpx"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Handler wires HTTP endpoints for the account flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. The bearer
// middleware is expected to already be installed upstream.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/forgot-password", h.handleForgotPassword)
	r.Post("/verify-password-reset-token", h.handleVerifyResetToken)
	r.Post("/reset-password", h.handleResetPassword)
	r.Post("/verify-email", h.handleVerifyEmail)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAuth)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
		r.Put("/me/update", h.handleUpdateMe)
		r.Patch("/me/update", h.handleUpdateMe)
		r.Post("/change-password", h.handleChangePassword)
	})
}

// userPayload is the public account representation.
type userPayload struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FullName        string     `json:"full_name"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	Location        string     `json:"location,omitempty"`
	Role            string     `json:"role"`
	IsVerified      bool       `json:"is_verified"`
	TermsAccepted   bool       `json:"terms_accepted"`
	TermsAcceptedAt *time.Time `json:"terms_accepted_at,omitempty"`
	TermsVersion    string     `json:"terms_version,omitempty"`
	DateJoined      time.Time  `json:"date_joined"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
}

func toUserPayload(u *User) userPayload {
	return userPayload{
		ID:              u.ID.String(),
		Email:           u.Email,
		FullName:        u.FullName,
		PhoneNumber:     u.PhoneNumber,
		Location:        u.Location,
		Role:            u.Role,
		IsVerified:      u.IsVerified,
		TermsAccepted:   u.TermsAccepted,
		TermsAcceptedAt: u.TermsAcceptedAt,
		TermsVersion:    u.TermsVersion,
		DateJoined:      u.DateJoined,
		LastLogin:       u.LastLogin,
	}
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			httpx.Fail(w, http.StatusBadRequest, fmt.Sprintf("validation failed on field %q (%s)", fe.Field(), fe.Tag()))
			return false
		}
		httpx.Fail(w, http.StatusBadRequest, shared.ErrValidation.Error())
		return false
	}
	return true
}

type registerRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Password2     string `json:"password2" validate:"required,eqfield=Password"`
	FullName      string `json:"full_name" validate:"required,max=50"`
	PhoneNumber   string `json:"phone_number" validate:"omitempty,max=10"`
	Location      string `json:"location" validate:"omitempty,max=255"`
	TermsAccepted bool   `json:"terms_accepted" validate:"required"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, message, err := h.service.Register(r.Context(), RegisterRequest{
		Email:         req.Email,
		Password:      req.Password,
		FullName:      req.FullName,
		PhoneNumber:   req.PhoneNumber,
		Location:      req.Location,
		TermsAccepted: req.TermsAccepted,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.OK(w, http.StatusCreated, message, map[string]any{
		"id":        user.ID.String(),
		"email":     user.Email,
		"full_name": user.FullName,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	user, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.OK(w, http.StatusOK, "Login successful", map[string]any{
		"user":   toUserPayload(user),
		"tokens": pair,
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.service.Logout(r.Context(), req.Refresh); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Logout successful", nil)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	pair, err := h.service.Refresh(r.Context(), req.Refresh)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", map[string]any{"tokens": pair})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	user, err := h.service.Profile(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", toUserPayload(user))
}

type updateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=1,max=50"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=10"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
}

func (h *Handler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if r.Method == http.MethodPut && req.FullName == nil {
		httpx.Fail(w, http.StatusBadRequest, "full_name is required")
		return
	}

	principal, _ := shared.PrincipalFromContext(r.Context())
	user, err := h.service.UpdateProfile(r.Context(), principal.ID, ProfileUpdate{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Profile updated successfully", toUserPayload(user))
}

type changePasswordRequest struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required,min=8"`
	NewPassword2 string `json:"new_password2" validate:"required,eqfield=NewPassword"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), principal.ID, req.OldPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Password changed successfully", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Password reset email sent. Check your inbox.", nil)
}

type tokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *Handler) handleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	token, email, err := h.service.VerifyResetToken(r.Context(), req.Token)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Token is valid", map[string]any{
		"email":      email,
		"expires_at": token.ExpiresAt,
	})
}

type resetPasswordRequest struct {
	Token        string `json:"token" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required,min=8"`
	NewPassword2 string `json:"new_password2" validate:"required,eqfield=NewPassword"`
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Password reset successful. You can now login with your new password.", nil)
}

func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if _, err := h.service.VerifyEmail(r.Context(), req.Token); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Email verified successfully. You can now login.", nil)
}
