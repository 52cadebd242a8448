package feedback

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/HttpsPratik/new-life/internal/authz"
	"github.com/HttpsPratik/new-life/internal/platform/httpx"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Handler wires HTTP endpoints for feedback.
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
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers feedback routes on the provided router. Submitting
// is open to anonymous callers; everything else is admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAdmin)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdateStatus)
	})
}

type feedbackPayload struct {
	ID         int64     `json:"id"`
	Sender     string    `json:"sender"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	AdminNotes string    `json:"admin_notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toFeedbackPayload(f *Feedback, includeNotes bool) feedbackPayload {
	p := feedbackPayload{
		ID:        f.ID,
		Sender:    f.SenderDisplay(),
		Email:     f.Email,
		Subject:   f.Subject,
		Type:      f.Type,
		Message:   f.Message,
		Status:    f.Status,
		CreatedAt: f.CreatedAt,
	}
	if includeNotes {
		p.AdminNotes = f.AdminNotes
	}
	return p
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

type createFeedbackRequest struct {
	Name    string `json:"name" validate:"omitempty,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Type    string `json:"type" validate:"omitempty,oneof=FEEDBACK BUG_REPORT SUGGESTION COMPLAINT OTHER"`
	Message string `json:"message" validate:"required"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = TypeFeedback
	}

	var user *uuid.UUID
	name := req.Name
	if principal, ok := shared.PrincipalFromContext(r.Context()); ok {
		user = &principal.ID
		if name == "" {
			name = principal.FullName
		}
	}

	f, err := h.service.Create(r.Context(), CreateRequest{
		User:    user,
		Name:    name,
		Email:   req.Email,
		Subject: req.Subject,
		Type:    req.Type,
		Message: req.Message,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Thank you for your feedback! We will get back to you soon.", toFeedbackPayload(f, false))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	q := r.URL.Query()
	items, pagination, err := h.service.List(r.Context(), ListFilter{
		Status:  q.Get("status"),
		Type:    q.Get("type"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payloads := make([]feedbackPayload, 0, len(items))
	for i := range items {
		payloads = append(payloads, toFeedbackPayload(&items[i], true))
	}
	httpx.OK(w, http.StatusOK, "", map[string]any{
		"feedback":   payloads,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid feedback id")
		return
	}
	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", toFeedbackPayload(f, true))
}

type updateFeedbackRequest struct {
	Status     string  `json:"status" validate:"required,oneof=NEW IN_PROGRESS RESOLVED CLOSED"`
	AdminNotes *string `json:"admin_notes"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid feedback id")
		return
	}
	var req updateFeedbackRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	f, err := h.service.UpdateStatus(r.Context(), id, req.Status, req.AdminNotes)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Feedback updated successfully", toFeedbackPayload(f, true))
}
