// AngelaMos | 2026
// handler.go

package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"fiscaldesk/internal/core"
)

type Handler struct {
	gate      *Gate
	validator *validator.Validate
}

func NewHandler(gate *Gate) *Handler {
	return &Handler{
		gate:      gate,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes wires the desktop licensing endpoints. loginLimiter
// throttles credential guessing; it wraps only the login route.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	loginLimiter func(http.Handler) http.Handler,
) {
	r.Route("/session", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.gate.Login(
		r.Context(),
		req.Email,
		req.Credential,
		req.DeviceID,
	)
	if err != nil {
		if denied, ok := AsDenied(err); ok {
			writeDenied(w, denied)
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, LoginResponse{
		AccountID: result.AccountID,
		Name:      result.Name,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.gate.Logout(r.Context(), req.Email); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "account")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func writeDenied(w http.ResponseWriter, denied *DeniedError) {
	status := http.StatusForbidden
	message := "access denied"

	switch denied.Reason {
	case DeniedNotFound:
		status = http.StatusNotFound
		message = "account not found"
	case DeniedBadCredential:
		status = http.StatusUnauthorized
		message = "invalid credential"
	case DeniedNotApproved:
		status = http.StatusForbidden
		message = "account is not approved"
	case DeniedDeviceMismatch:
		status = http.StatusConflict
		message = "account is bound to another device"
	case DeniedAlreadyLoggedIn:
		status = http.StatusConflict
		message = "account already has an active session"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // nothing useful to do if the client is gone
	_ = json.NewEncoder(w).Encode(DeniedResponse{
		Error:         message,
		Reason:        string(denied.Reason),
		AccountStatus: denied.AccountStatus,
	})
}
