// AngelaMos | 2026
// repository.go

package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"fiscaldesk/internal/core"
)

// Repository is the fiscal client store. The importer runs its whole batch
// through InTx so a transaction-level failure leaves zero effect.
type Repository interface {
	Create(ctx context.Context, client *Client) error
	GetByID(ctx context.Context, id string) (*Client, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*Client, error)
	Update(ctx context.Context, client *Client) error
	List(
		ctx context.Context,
		params ListClientsParams,
	) ([]Client, int, error)
	ListAll(ctx context.Context, filter Filter) ([]Client, error)
	InTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db   core.DBTX
	root *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, root: db}
}

const clientColumns = `
	id, legal_name, cnpj, tax_regime, responsible, created_at, updated_at
	`

func (r *repository) Create(ctx context.Context, client *Client) error {
	query := `
		INSERT INTO clients (id, legal_name, cnpj, tax_regime, responsible)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, client, query,
		client.ID,
		client.LegalName,
		client.CNPJ,
		client.TaxRegime,
		client.Responsible,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create client: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create client: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Client, error) {
	query := `SELECT` + clientColumns + `FROM clients WHERE id = $1`

	var client Client
	err := r.db.GetContext(ctx, &client, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get client: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	return &client, nil
}

func (r *repository) GetByCNPJ(
	ctx context.Context,
	cnpj string,
) (*Client, error) {
	query := `SELECT` + clientColumns + `FROM clients WHERE cnpj = $1`

	var client Client
	err := r.db.GetContext(ctx, &client, query, cnpj)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get client by cnpj: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get client by cnpj: %w", err)
	}

	return &client, nil
}

// Update overwrites everything except the CNPJ.
func (r *repository) Update(ctx context.Context, client *Client) error {
	query := `
		UPDATE clients
		SET legal_name = $2, tax_regime = $3, responsible = $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &client.UpdatedAt, query,
		client.ID,
		client.LegalName,
		client.TaxRegime,
		client.Responsible,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update client: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListClientsParams,
) ([]Client, int, error) {
	params.Normalize()

	whereClause, args, argIdx := buildFilter(params.Filter)

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM clients WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT`+clientColumns+`
		FROM clients
		WHERE %s
		ORDER BY legal_name ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var clients []Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	return clients, total, nil
}

func (r *repository) ListAll(
	ctx context.Context,
	filter Filter,
) ([]Client, error) {
	whereClause, args, _ := buildFilter(filter)

	query := fmt.Sprintf(`
		SELECT`+clientColumns+`
		FROM clients
		WHERE %s
		ORDER BY legal_name ASC`,
		whereClause)

	var clients []Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, fmt.Errorf("list all clients: %w", err)
	}

	return clients, nil
}

func (r *repository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	if r.root == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.root, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func buildFilter(filter Filter) (string, []any, int) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(legal_name ILIKE $%d OR cnpj ILIKE $%d OR responsible ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		argIdx++
	}

	if filter.Regime != "" {
		conditions = append(conditions,
			fmt.Sprintf("tax_regime ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(filter.Regime)+"%")
		argIdx++
	}

	return strings.Join(conditions, " AND "), args, argIdx
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
