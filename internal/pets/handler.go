package pets

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

// Handler wires HTTP endpoints for pet listings.
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

// MountRoutes registers pet routes on the provided router.
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
		r.Post("/{id}/adopt", h.handleAdopt)
		r.Post("/{id}/images", h.handleAddImage)
	})
}

type imagePayload struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	Caption    string    `json:"caption,omitempty"`
	IsPrimary  bool      `json:"is_primary"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type petPayload struct {
	ID           string         `json:"id"`
	Owner        string         `json:"owner"`
	Name         string         `json:"name"`
	Category     string         `json:"category"`
	Breed        string         `json:"breed,omitempty"`
	Age          int            `json:"age"`
	Gender       string         `json:"gender"`
	Size         string         `json:"size"`
	Description  string         `json:"description"`
	HealthInfo   string         `json:"health_info,omitempty"`
	Location     string         `json:"location"`
	ContactPhone string         `json:"contact_phone"`
	ContactEmail string         `json:"contact_email"`
	Status       string         `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	AdoptionDate *time.Time     `json:"adoption_date,omitempty"`
	Images       []imagePayload `json:"images"`
}

func toPetPayload(p *Pet) petPayload {
	images := make([]imagePayload, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, imagePayload{
			ID:         img.ID,
			URL:        img.URL,
			Caption:    img.Caption,
			IsPrimary:  img.IsPrimary,
			UploadedAt: img.UploadedAt,
		})
	}
	return petPayload{
		ID:           p.ID.String(),
		Owner:        p.Owner.String(),
		Name:         p.Name,
		Category:     p.Category,
		Breed:        p.Breed,
		Age:          p.Age,
		Gender:       p.Gender,
		Size:         p.Size,
		Description:  p.Description,
		HealthInfo:   p.HealthInfo,
		Location:     p.Location,
		ContactPhone: p.ContactPhone,
		ContactEmail: p.ContactEmail,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		AdoptionDate: p.AdoptionDate,
		Images:       images,
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
		httpx.Fail(w, http.StatusBadRequest, "invalid pet id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	q := r.URL.Query()
	pets, pagination, err := h.service.List(r.Context(), ListFilter{
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
	payloads := make([]petPayload, 0, len(pets))
	for i := range pets {
		payloads = append(payloads, toPetPayload(&pets[i]))
	}
	httpx.OK(w, http.StatusOK, "", map[string]any{
		"pets":       payloads,
		"pagination": pagination,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", toPetPayload(p))
}

type createPetRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Category     string `json:"category" validate:"required,oneof=CAT DOG OTHER"`
	Breed        string `json:"breed" validate:"omitempty,max=100"`
	Age          int    `json:"age" validate:"required,min=1"`
	Gender       string `json:"gender" validate:"required,oneof=MALE FEMALE UNKNOWN"`
	Size         string `json:"size" validate:"required,oneof=SMALL MEDIUM LARGE"`
	Description  string `json:"description" validate:"required"`
	HealthInfo   string `json:"health_info"`
	Location     string `json:"location" validate:"required,max=100"`
	ContactPhone string `json:"contact_phone" validate:"required,max=15"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPetRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	p, err := h.service.Create(r.Context(), principal, CreateRequest{
		Name:         req.Name,
		Category:     req.Category,
		Breed:        req.Breed,
		Age:          req.Age,
		Gender:       req.Gender,
		Size:         req.Size,
		Description:  req.Description,
		HealthInfo:   req.HealthInfo,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Pet listing created successfully", toPetPayload(p))
}

type updatePetRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Category     *string `json:"category" validate:"omitempty,oneof=CAT DOG OTHER"`
	Breed        *string `json:"breed" validate:"omitempty,max=100"`
	Age          *int    `json:"age" validate:"omitempty,min=1"`
	Gender       *string `json:"gender" validate:"omitempty,oneof=MALE FEMALE UNKNOWN"`
	Size         *string `json:"size" validate:"omitempty,oneof=SMALL MEDIUM LARGE"`
	Description  *string `json:"description" validate:"omitempty,min=1"`
	HealthInfo   *string `json:"health_info"`
	Location     *string `json:"location" validate:"omitempty,min=1,max=100"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=15"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	Status       *string `json:"status" validate:"omitempty,oneof=AVAILABLE ADOPTED PENDING REMOVED"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req updatePetRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	p, err := h.service.Update(r.Context(), principal, id, Update{
		Name:         req.Name,
		Category:     req.Category,
		Breed:        req.Breed,
		Age:          req.Age,
		Gender:       req.Gender,
		Size:         req.Size,
		Description:  req.Description,
		HealthInfo:   req.HealthInfo,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		Status:       req.Status,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Pet listing updated successfully", toPetPayload(p))
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
	httpx.OK(w, http.StatusOK, "Pet listing deleted successfully", nil)
}

func (h *Handler) handleAdopt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	p, err := h.service.Adopt(r.Context(), principal, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Pet marked as adopted. Congratulations!", toPetPayload(p))
}

type addImageRequest struct {
	URL       string `json:"url" validate:"required,url"`
	Caption   string `json:"caption" validate:"omitempty,max=200"`
	IsPrimary bool   `json:"is_primary"`
}

func (h *Handler) handleAddImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req addImageRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	img, err := h.service.AddImage(r.Context(), principal, id, req.URL, req.Caption, req.IsPrimary)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, "Image added successfully", imagePayload{
		ID:         img.ID,
		URL:        img.URL,
		Caption:    img.Caption,
		IsPrimary:  img.IsPrimary,
		UploadedAt: img.UploadedAt,
	})
}
