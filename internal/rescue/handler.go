package rescue

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/HttpsPratik/new-life/internal/authz"
	"github.com/HttpsPratik/new-life/internal/platform/httpx"
	"github.com/HttpsPratik/new-life/internal/shared"
)

// Handler wires HTTP endpoints for the rescue directory.
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

// MountRoutes registers rescue routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAdmin)
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

type contactPayload struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Address          string    `json:"address"`
	City             string    `json:"city"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Website          string    `json:"website,omitempty"`
	Description      string    `json:"description,omitempty"`
	OperatingHours   string    `json:"operating_hours,omitempty"`
	Capacity         *int      `json:"capacity,omitempty"`
	Specialization   string    `json:"specialization,omitempty"`
	Services         string    `json:"services,omitempty"`
	EmergencyService bool      `json:"emergency_service"`
	IsVerified       bool      `json:"is_verified"`
	CreatedAt        time.Time `json:"created_at"`
}

func toContactPayload(c *Contact) contactPayload {
	return contactPayload{
		ID:               c.ID,
		Name:             c.Name,
		Type:             c.Type,
		Address:          c.Address,
		City:             c.City,
		Phone:            c.Phone,
		Email:            c.Email,
		Website:          c.Website,
		Description:      c.Description,
		OperatingHours:   c.OperatingHours,
		Capacity:         c.Capacity,
		Specialization:   c.Specialization,
		Services:         c.Services,
		EmergencyService: c.EmergencyService,
		IsVerified:       c.IsVerified,
		CreatedAt:        c.CreatedAt,
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

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid contact id")
		return 0, false
	}
	return id, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	q := r.URL.Query()
	contacts, pagination, err := h.service.List(r.Context(), ListFilter{
		Type:          q.Get("type"),
		City:          q.Get("city"),
		EmergencyOnly: q.Get("emergency") == "true",
		VerifiedOnly:  q.Get("verified") == "true",
		Page:          page,
		PerPage:       perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payloads := make([]contactPayload, 0, len(contacts))
	for i := range contacts {
		payloads = append(payloads, toContactPayload(&contacts[i]))
	}
	httpx.OK(w, http.StatusOK, "", map[string]any{
		"contacts":   payloads,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", toContactPayload(c))
}

type createContactRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	Type             string `json:"type" validate:"required,oneof=SHELTER VETERINARIAN"`
	Address          string `json:"address" validate:"required"`
	City             string `json:"city" validate:"required,max=100"`
	Phone            string `json:"phone" validate:"required,max=15"`
	Email            string `json:"email" validate:"required,email"`
	Website          string `json:"website" validate:"omitempty,url"`
	Description      string `json:"description"`
	OperatingHours   string `json:"operating_hours"`
	Capacity         *int   `json:"capacity" validate:"omitempty,min=1"`
	Specialization   string `json:"specialization" validate:"omitempty,max=200"`
	Services         string `json:"services"`
	EmergencyService bool   `json:"emergency_service"`
	IsVerified       bool   `json:"is_verified"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.service.Create(r.Context(), Contact{
		Name:             req.Name,
		Type:             req.Type,
		Address:          req.Address,
		City:             req.City,
		Phone:            req.Phone,
		Email:            req.Email,
		Website:          req.Website,
		Description:      req.Description,
		OperatingHours:   req.OperatingHours,
		Capacity:         req.Capacity,
		Specialization:   req.Specialization,
		Services:         req.Services,
		EmergencyService: req.EmergencyService,
		IsVerified:       req.IsVerified,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Rescue contact created successfully", toContactPayload(c))
}

type updateContactRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	Type             *string `json:"type" validate:"omitempty,oneof=SHELTER VETERINARIAN"`
	Address          *string `json:"address" validate:"omitempty,min=1"`
	City             *string `json:"city" validate:"omitempty,min=1,max=100"`
	Phone            *string `json:"phone" validate:"omitempty,max=15"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Website          *string `json:"website" validate:"omitempty,url"`
	Description      *string `json:"description"`
	OperatingHours   *string `json:"operating_hours"`
	Capacity         *int    `json:"capacity" validate:"omitempty,min=1"`
	Specialization   *string `json:"specialization" validate:"omitempty,max=200"`
	Services         *string `json:"services"`
	EmergencyService *bool   `json:"emergency_service"`
	IsVerified       *bool   `json:"is_verified"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateContactRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	c, err := h.service.Update(r.Context(), id, Update{
		Name:             req.Name,
		Type:             req.Type,
		Address:          req.Address,
		City:             req.City,
		Phone:            req.Phone,
		Email:            req.Email,
		Website:          req.Website,
		Description:      req.Description,
		OperatingHours:   req.OperatingHours,
		Capacity:         req.Capacity,
		Specialization:   req.Specialization,
		Services:         req.Services,
		EmergencyService: req.EmergencyService,
		IsVerified:       req.IsVerified,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Rescue contact updated successfully", toContactPayload(c))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Rescue contact deleted successfully", nil)
}
