// AngelaMos | 2026
// dto.go

package client

import (
	"time"
)

type CreateClientRequest struct {
	LegalName   string `json:"legal_name"  validate:"required,min=1,max=200"`
	CNPJ        string `json:"cnpj"        validate:"required,min=14,max=18"`
	TaxRegime   string `json:"tax_regime"  validate:"required,min=1,max=60"`
	Responsible string `json:"responsible" validate:"required,min=1,max=120"`
}

// UpdateClientRequest deliberately has no CNPJ field: the natural key
// never changes after creation.
type UpdateClientRequest struct {
	LegalName   string `json:"legal_name"  validate:"required,min=1,max=200"`
	TaxRegime   string `json:"tax_regime"  validate:"required,min=1,max=60"`
	Responsible string `json:"responsible" validate:"required,min=1,max=120"`
}

type ClientResponse struct {
	ID          string    `json:"id"`
	LegalName   string    `json:"legal_name"`
	CNPJ        string    `json:"cnpj"`
	TaxRegime   string    `json:"tax_regime"`
	Responsible string    `json:"responsible"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter matches the listing screen's search boxes: free text over legal
// name / cnpj / responsible, plus a tax-regime narrower. The exporter uses
// the same filter, so a filtered screen exports exactly what it shows.
type Filter struct {
	Query  string `json:"q"`
	Regime string `json:"regime"`
}

type ListClientsParams struct {
	Filter
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (p *ListClientsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListClientsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToClientResponse(c *Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID,
		LegalName:   c.LegalName,
		CNPJ:        c.CNPJ,
		TaxRegime:   c.TaxRegime,
		Responsible: c.Responsible,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToClientResponseList(clients []Client) []ClientResponse {
	responses := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		responses = append(responses, ToClientResponse(&c))
	}
	return responses
}
