// AngelaMos | 2026
// handler.go

package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"fiscaldesk/internal/core"
)

// DeviceUnbinder is implemented by the session gate; unbinding clears the
// device and forces the session flag off in one transaction.
type DeviceUnbinder interface {
	Unbind(ctx context.Context, accountID string) error
}

type Handler struct {
	service   *Service
	unbinder  DeviceUnbinder
	validator *validator.Validate
}

func NewHandler(service *Service, unbinder DeviceUnbinder) *Handler {
	return &Handler{
		service:   service,
		unbinder:  unbinder,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/accounts", h.Register)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/accounts", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListAccounts)
		r.Get("/{accountID}", h.GetAccount)
		r.Post("/{accountID}/approve", h.ApproveAccount)
		r.Post("/{accountID}/reject", h.RejectAccount)
		r.Post("/{accountID}/reset-credential", h.ResetCredential)
		r.Post("/{accountID}/unbind", h.UnbindDevice)
		r.Delete("/{accountID}", h.DeleteAccount)
	})
}

// Register creates a PENDING account; the desktop client cannot log in
// until an admin approves it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	account, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToAccountResponse(account))
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	params := ListAccountsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("search"),
	}

	accounts, total, err := h.service.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "invalid status filter")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToAccountResponseList(accounts),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.Get(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(account))
}

func (h *Handler) ApproveAccount(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.service.Approve)
}

func (h *Handler) RejectAccount(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.service.Reject)
}

func (h *Handler) applyTransition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, string) (*Account, error),
) {
	account, err := fn(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		if errors.Is(err, core.ErrConflict) {
			core.Conflict(w, "account is no longer pending")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(account))
}

// ResetCredential returns the generated credential in the response body;
// it is shown once and never stored in plaintext.
func (h *Handler) ResetCredential(w http.ResponseWriter, r *http.Request) {
	temp, err := h.service.ResetCredential(
		r.Context(),
		chi.URLParam(r, "accountID"),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ResetCredentialResponse{TempCredential: temp})
}

func (h *Handler) UnbindDevice(w http.ResponseWriter, r *http.Request) {
	err := h.unbinder.Unbind(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
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
