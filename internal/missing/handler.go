package missing

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

// Handler wires HTTP endpoints for missing-pet reports.
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

// MountRoutes registers missing-pet routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAuth)
		r.Use(authz.RequireTerms)
		r.Post("/", h.handleCreate)
		r.Put("/{id}", h.handleUpdate)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/found", h.handleFound)
	})
}

type reportPayload struct {
	ID               string     `json:"id"`
	Reporter         string     `json:"reporter"`
	Name             string     `json:"name,omitempty"`
	Category         string     `json:"category"`
	Breed            string     `json:"breed,omitempty"`
	Gender           string     `json:"gender"`
	Description      string     `json:"description"`
	LastSeenLocation string     `json:"last_seen_location"`
	LastSeenDate     string     `json:"last_seen_date"`
	RewardOffered    *float64   `json:"reward_offered,omitempty"`
	ContactPhone     string     `json:"contact_phone"`
	ContactEmail     string     `json:"contact_email"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	FoundDate        *time.Time `json:"found_date,omitempty"`
}

func toReportPayload(rep *Report) reportPayload {
	return reportPayload{
		ID:               rep.ID.String(),
		Reporter:         rep.Reporter.String(),
		Name:             rep.Name,
		Category:         rep.Category,
		Breed:            rep.Breed,
		Gender:           rep.Gender,
		Description:      rep.Description,
		LastSeenLocation: rep.LastSeenLocation,
		LastSeenDate:     rep.LastSeenDate.Format("2006-01-02"),
		RewardOffered:    rep.RewardOffered,
		ContactPhone:     rep.ContactPhone,
		ContactEmail:     rep.ContactEmail,
		Status:           rep.Status,
		CreatedAt:        rep.CreatedAt,
		FoundDate:        rep.FoundDate,
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

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid report id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	q := r.URL.Query()
	reports, pagination, err := h.service.List(r.Context(), ListFilter{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Status:   q.Get("status"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	payloads := make([]reportPayload, 0, len(reports))
	for i := range reports {
		payloads = append(payloads, toReportPayload(&reports[i]))
	}
	httpx.OK(w, http.StatusOK, "", map[string]any{
		"reports":    payloads,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rep, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", toReportPayload(rep))
}

type createReportRequest struct {
	Name             string   `json:"name" validate:"omitempty,max=100"`
	Category         string   `json:"category" validate:"required,oneof=CAT DOG OTHER"`
	Breed            string   `json:"breed" validate:"omitempty,max=100"`
	Gender           string   `json:"gender" validate:"required,oneof=MALE FEMALE UNKNOWN"`
	Description      string   `json:"description" validate:"required"`
	LastSeenLocation string   `json:"last_seen_location" validate:"required,max=200"`
	LastSeenDate     string   `json:"last_seen_date" validate:"required,datetime=2006-01-02"`
	RewardOffered    *float64 `json:"reward_offered" validate:"omitempty,gt=0"`
	ContactPhone     string   `json:"contact_phone" validate:"required,max=15"`
	ContactEmail     string   `json:"contact_email" validate:"required,email"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	lastSeen, _ := time.Parse("2006-01-02", req.LastSeenDate)

	principal, _ := shared.PrincipalFromContext(r.Context())
	rep, err := h.service.Create(r.Context(), principal, CreateRequest{
		Name:             req.Name,
		Category:         req.Category,
		Breed:            req.Breed,
		Gender:           req.Gender,
		Description:      req.Description,
		LastSeenLocation: req.LastSeenLocation,
		LastSeenDate:     lastSeen,
		RewardOffered:    req.RewardOffered,
		ContactPhone:     req.ContactPhone,
		ContactEmail:     req.ContactEmail,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Missing pet report created successfully", toReportPayload(rep))
}

type updateReportRequest struct {
	Name             *string  `json:"name" validate:"omitempty,max=100"`
	Category         *string  `json:"category" validate:"omitempty,oneof=CAT DOG OTHER"`
	Breed            *string  `json:"breed" validate:"omitempty,max=100"`
	Gender           *string  `json:"gender" validate:"omitempty,oneof=MALE FEMALE UNKNOWN"`
	Description      *string  `json:"description" validate:"omitempty,min=1"`
	LastSeenLocation *string  `json:"last_seen_location" validate:"omitempty,min=1,max=200"`
	LastSeenDate     *string  `json:"last_seen_date" validate:"omitempty,datetime=2006-01-02"`
	RewardOffered    *float64 `json:"reward_offered" validate:"omitempty,gt=0"`
	ContactPhone     *string  `json:"contact_phone" validate:"omitempty,max=15"`
	ContactEmail     *string  `json:"contact_email" validate:"omitempty,email"`
	Status           *string  `json:"status" validate:"omitempty,oneof=MISSING FOUND CLOSED"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updateReportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	var lastSeen *time.Time
	if req.LastSeenDate != nil {
		parsed, _ := time.Parse("2006-01-02", *req.LastSeenDate)
		lastSeen = &parsed
	}

	principal, _ := shared.PrincipalFromContext(r.Context())
	rep, err := h.service.Update(r.Context(), principal, id, Update{
		Name:             req.Name,
		Category:         req.Category,
		Breed:            req.Breed,
		Gender:           req.Gender,
		Description:      req.Description,
		LastSeenLocation: req.LastSeenLocation,
		LastSeenDate:     lastSeen,
		RewardOffered:    req.RewardOffered,
		ContactPhone:     req.ContactPhone,
		ContactEmail:     req.ContactEmail,
		Status:           req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Report updated successfully", toReportPayload(rep))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Report deleted successfully", nil)
}

func (h *Handler) handleFound(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	rep, err := h.service.Found(r.Context(), principal, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Wonderful news! Report marked as found.", toReportPayload(rep))
}
