package donations

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/HttpsPratik/new-life/internal/authz"
	"github.com/HttpsPratik/new-life/internal/platform/httpx"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Handler wires HTTP endpoints for donations.
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

// MountRoutes registers donation routes on the provided router. Creation
// is open to anonymous callers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAuth)
		r.Get("/mine", h.handleMine)
		r.Get("/{id}", h.handleGet)
	})

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAdmin)
		r.Get("/", h.handleList)
		r.Post("/{id}/complete", h.handleComplete)
	})
}

type donationPayload struct {
	ID               string     `json:"id"`
	DonorName        string     `json:"donor_name"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	PaymentMethod    string     `json:"payment_method"`
	PaymentReference string     `json:"payment_reference"`
	PaymentStatus    string     `json:"payment_status"`
	Message          string     `json:"message,omitempty"`
	IsAnonymous      bool       `json:"is_anonymous"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func toDonationPayload(d *Donation) donationPayload {
	return donationPayload{
		ID:               d.ID.String(),
		DonorName:        d.DisplayName(),
		Amount:           d.Amount,
		Currency:         d.Currency,
		PaymentMethod:    d.PaymentMethod,
		PaymentReference: d.PaymentReference,
		PaymentStatus:    d.PaymentStatus,
		Message:          d.Message,
		IsAnonymous:      d.IsAnonymous,
		CreatedAt:        d.CreatedAt,
		CompletedAt:      d.CompletedAt,
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

type createDonationRequest struct {
	DonorName     string  `json:"donor_name" validate:"omitempty,max=200"`
	DonorEmail    string  `json:"donor_email" validate:"required,email"`
	DonorPhone    string  `json:"donor_phone" validate:"omitempty,max=15"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Currency      string  `json:"currency" validate:"omitempty,oneof=NPR USD"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=ESEWA PAYPAL BANK_TRANSFER"`
	Message       string  `json:"message"`
	IsAnonymous   bool    `json:"is_anonymous"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Currency == "" {
		req.Currency = "NPR"
	}

	var donor *uuid.UUID
	donorName := req.DonorName
	if principal, ok := shared.PrincipalFromContext(r.Context()); ok {
		donor = &principal.ID
		if donorName == "" {
			donorName = principal.FullName
		}
	}

	d, err := h.service.Create(r.Context(), CreateRequest{
		Donor:         donor,
		DonorName:     donorName,
		DonorEmail:    req.DonorEmail,
		DonorPhone:    req.DonorPhone,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
		Message:       req.Message,
		IsAnonymous:   req.IsAnonymous,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Thank you for your donation! It is pending payment confirmation.", toDonationPayload(d))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid donation id")
		return
	}
	principal, ok := shared.PrincipalFromContext(r.Context())
	d, err := h.service.Get(r.Context(), principal, ok, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", toDonationPayload(d))
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	mine, err := h.service.Mine(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payloads := make([]donationPayload, 0, len(mine))
	for i := range mine {
		payloads = append(payloads, toDonationPayload(&mine[i]))
	}
	httpx.OK(w, http.StatusOK, "", payloads)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	q := r.URL.Query()
	donations, pagination, err := h.service.List(r.Context(), ListFilter{
		Status:  q.Get("status"),
		Method:  q.Get("method"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payloads := make([]donationPayload, 0, len(donations))
	for i := range donations {
		payloads = append(payloads, toDonationPayload(&donations[i]))
	}
	httpx.OK(w, http.StatusOK, "", map[string]any{
		"donations":  payloads,
		"pagination": pagination,
	})
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid donation id")
		return
	}
	d, err := h.service.Complete(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Donation marked as completed", toDonationPayload(d))
}
