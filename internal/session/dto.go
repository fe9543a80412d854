// AngelaMos | 2026
// dto.go

package session

type LoginRequest struct {
	Email      string `json:"email"      validate:"required,email,max=160"`
	Credential string `json:"credential" validate:"required,min=1,max=128"`
	DeviceID   string `json:"device_id"  validate:"required,min=1,max=128"`
}

type LoginResponse struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
}

type LogoutRequest struct {
	Email string `json:"email" validate:"required,email,max=160"`
}

type DeniedResponse struct {
	Error         string `json:"error"`
	Reason        string `json:"reason"`
	AccountStatus string `json:"account_status,omitempty"`
}
