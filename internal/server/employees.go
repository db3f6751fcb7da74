package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/themis/internal/models"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// EmployeeService is the registry behaviour the HTTP layer depends on.
type EmployeeService interface {
	Create(ctx context.Context, employee models.Employee) (models.Employee, error)
	Update(ctx context.Context, employee models.Employee) (models.Employee, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.Employee, error)
	FindByFullName(ctx context.Context, firstName, lastName string) (models.Employee, error)
	FindAllPaged(ctx context.Context, page models.PageRequest) ([]models.Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Paging holds the page size applied when a client does not ask for one, and its upper bound.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

type EmployeeHandler struct {
	log        *slog.Logger
	service    EmployeeService
	translator *Translator
	paging     Paging
}

func NewEmployeeHandler(log *slog.Logger, service EmployeeService, translator *Translator, paging Paging) *EmployeeHandler {
	return &EmployeeHandler{log: log, service: service, translator: translator, paging: paging}
}

// Register mounts the employee routes on mux.
func (h *EmployeeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/employees", h.create)
	mux.HandleFunc("GET /api/v1/employees", h.list)
	mux.HandleFunc("GET /api/v1/employees/search", h.search)
	mux.HandleFunc("GET /api/v1/employees/{id}", h.findByID)
	mux.HandleFunc("PUT /api/v1/employees", h.update)
	mux.HandleFunc("DELETE /api/v1/employees/{id}", h.delete)
}

func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	employee, err := decodeEmployee(w, r)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), employee)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/employees/"+created.ID.String())
	writeJSON(w, http.StatusCreated, created, h.log)
}

func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.pageRequest(r)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	employees, err := h.service.FindAllPaged(r.Context(), page)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, employees, h.log)
}

func (h *EmployeeHandler) search(w http.ResponseWriter, r *http.Request) {
	firstName := r.URL.Query().Get("firstName")
	lastName := r.URL.Query().Get("lastName")
	if firstName == "" || lastName == "" {
		h.translator.Write(w, r, models.Invalid("firstName and lastName are required"))
		return
	}

	employee, err := h.service.FindByFullName(r.Context(), firstName, lastName)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, employee, h.log)
}

func (h *EmployeeHandler) findByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	employee, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, employee, h.log)
}

func (h *EmployeeHandler) update(w http.ResponseWriter, r *http.Request) {
	employee, err := decodeEmployee(w, r)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	if _, err = h.service.Update(r.Context(), employee); err != nil {
		h.translator.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.translator.Write(w, r, err)
		return
	}

	if err = h.service.Delete(r.Context(), id); err != nil {
		h.translator.Write(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pageRequest reads page, size and sort. Unusable page or size values fall back to defaults;
// an unsupported sort expression is rejected.
func (h *EmployeeHandler) pageRequest(r *http.Request) (models.PageRequest, error) {
	query := r.URL.Query()

	page := models.PageRequest{Page: 0, Size: h.paging.DefaultSize}
	if value, err := strconv.Atoi(query.Get("page")); err == nil && value >= 0 {
		page.Page = value
	}
	if value, err := strconv.Atoi(query.Get("size")); err == nil && value >= 1 {
		page.Size = min(value, h.paging.MaxSize)
	}

	for _, raw := range query["sort"] {
		srt, err := models.ParseSort(raw)
		if err != nil {
			return models.PageRequest{}, err
		}
		page.Sort = append(page.Sort, srt)
	}

	return page, nil
}

func decodeEmployee(w http.ResponseWriter, r *http.Request) (models.Employee, error) {
	var employee models.Employee

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&employee); err != nil {
		return models.Employee{}, models.Invalid("malformed employee payload").WithCause(err)
	}

	return employee, nil
}

func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.Invalid("malformed employee id: '" + raw + "'").WithCause(err)
	}
	return id, nil
}
