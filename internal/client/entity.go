// AngelaMos | 2026
// entity.go

package client

import (
	"time"
)

// Client is one fiscal client of the office. CNPJ is stored digits-only,
// exactly 14 characters, and never changes after creation.
type Client struct {
	ID          string    `db:"id"`
	LegalName   string    `db:"legal_name"`
	CNPJ        string    `db:"cnpj"`
	TaxRegime   string    `db:"tax_regime"`
	Responsible string    `db:"responsible"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
