package terms

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/HttpsPratik/new-life/internal/authz"
	"github.com/HttpsPratik/new-life/internal/platform/httpx"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Handler wires HTTP endpoints for terms management and acceptance.
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

// MountRoutes registers terms routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/current", h.handleCurrent)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAuth)
		r.Post("/accept", h.handleAccept)
		r.Get("/my-acceptance", h.handleMyAcceptances)
	})

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAdmin)
		r.Post("/", h.handleCreate)
		r.Post("/{id}/activate", h.handleActivate)
	})
}

type termsPayload struct {
	ID            int64     `json:"id"`
	Version       string    `json:"version"`
	Content       string    `json:"content"`
	EffectiveDate time.Time `json:"effective_date"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTermsPayload(t Terms) termsPayload {
	return termsPayload{
		ID:            t.ID,
		Version:       t.Version,
		Content:       t.Content,
		EffectiveDate: t.EffectiveDate,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
	}
}

type acceptancePayload struct {
	ID         int64     `json:"id"`
	TermsID    int64     `json:"terms_id"`
	Version    string    `json:"version"`
	AcceptedAt time.Time `json:"accepted_at"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

func toAcceptancePayload(a Acceptance) acceptancePayload {
	return acceptancePayload{
		ID:         a.ID,
		TermsID:    a.TermsID,
		Version:    a.Version,
		AcceptedAt: a.AcceptedAt,
		IPAddress:  a.IPAddress,
		UserAgent:  a.UserAgent,
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payloads := make([]termsPayload, 0, len(all))
	for _, t := range all {
		payloads = append(payloads, toTermsPayload(t))
	}
	httpx.OK(w, http.StatusOK, "", payloads)
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Current(r.Context())
	if err != nil {
		if err == shared.ErrNotFound {
			httpx.Fail(w, http.StatusNotFound, "no active terms found")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", toTermsPayload(*t))
}

type acceptRequest struct {
	TermsID int64 `json:"terms_id" validate:"required"`
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	var req acceptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "terms_id is required")
		return
	}

	principal, _ := shared.PrincipalFromContext(r.Context())
	a, err := h.service.Accept(r.Context(), principal.ID, req.TermsID, clientIP(r), r.UserAgent())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Terms accepted successfully", toAcceptancePayload(*a))
}

func (h *Handler) handleMyAcceptances(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	history, err := h.service.MyAcceptances(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payloads := make([]acceptancePayload, 0, len(history))
	for _, a := range history {
		payloads = append(payloads, toAcceptancePayload(a))
	}
	httpx.OK(w, http.StatusOK, "", payloads)
}

type createTermsRequest struct {
	Version       string `json:"version" validate:"required,max=10"`
	Content       string `json:"content" validate:"required"`
	EffectiveDate string `json:"effective_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTermsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "version, content and effective_date (YYYY-MM-DD) are required")
		return
	}
	effective, _ := time.Parse("2006-01-02", req.EffectiveDate)

	t, err := h.service.Create(r.Context(), CreateRequest{
		Version:       req.Version,
		Content:       req.Content,
		EffectiveDate: effective,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Terms version created", toTermsPayload(*t))
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid terms id")
		return
	}
	if err := h.service.Activate(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Terms version activated", nil)
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
