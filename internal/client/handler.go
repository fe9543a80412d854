// AngelaMos | 2026
// handler.go

package client

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"fiscaldesk/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Route("/clients", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.ListClients)
		r.Post("/", h.CreateClient)
		r.Get("/{clientID}", h.GetClient)
		r.Put("/{clientID}", h.UpdateClient)
	})
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	client, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToClientResponse(client))
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.Get(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToClientResponse(client))
}

// UpdateClient overwrites the client's mutable fields. The request body
// carries no CNPJ; the stored one is kept as-is.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	client, err := h.service.Update(r.Context(), chi.URLParam(r, "clientID"), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToClientResponse(client))
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	params := ListClientsParams{
		Filter: Filter{
			Query:  r.URL.Query().Get("q"),
			Regime: r.URL.Query().Get("regime"),
		},
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}

	clients, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToClientResponseList(clients),
		params.Page,
		params.PageSize,
		total,
	)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
