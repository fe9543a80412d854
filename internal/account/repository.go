// AngelaMos | 2026
// repository.go

package account

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

// Repository is the account store. GetByEmailLocked and the session-state
// mutations are meant to run inside InTx: the session gate's
// read-check-write sequence holds a row-exclusive lock for its duration so
// two concurrent logins for the same account serialize.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailLocked(ctx context.Context, email string) (*Account, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateCredential(
		ctx context.Context,
		id, passwordHash string,
		singleUse bool,
	) error
	ConsumeCredential(ctx context.Context, id string) error
	BindDevice(ctx context.Context, id, deviceID string) error
	SetLoggedIn(ctx context.Context, id string, loggedIn bool) error
	UnbindDevice(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	List(
		ctx context.Context,
		params ListAccountsParams,
	) ([]Account, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	InTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db   core.DBTX
	root *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, root: db}
}

const accountColumns = `
	id, email, name, password_hash, status, role, device_id,
	logged_in, credential_single_use, created_at, updated_at
	`

func (r *repository) Create(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (id, email, name, password_hash, status, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, account, query,
		account.ID,
		account.Email,
		account.Name,
		account.PasswordHash,
		account.Status,
		account.Role,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create account: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE id = $1`

	var account Account
	err := r.db.GetContext(ctx, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE email = $1`

	var account Account
	err := r.db.GetContext(ctx, &account, query, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return &account, nil
}

func (r *repository) GetByEmailLocked(
	ctx context.Context,
	email string,
) (*Account, error) {
	query := `SELECT` + accountColumns + `
		FROM accounts WHERE email = $1 FOR UPDATE`

	var account Account
	err := r.db.GetContext(ctx, &account, query, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return &account, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id, status string,
) error {
	query := `
		UPDATE accounts
		SET status = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "update status", query, id, status)
}

func (r *repository) UpdateCredential(
	ctx context.Context,
	id, passwordHash string,
	singleUse bool,
) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, credential_single_use = $3, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(
		ctx, "update credential", query, id, passwordHash, singleUse)
}

// ConsumeCredential blanks the stored hash so a single-use credential can
// never authenticate twice. Verification treats a blank hash as deny-all.
func (r *repository) ConsumeCredential(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET password_hash = '', credential_single_use = FALSE,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "consume credential", query, id)
}

func (r *repository) BindDevice(
	ctx context.Context,
	id, deviceID string,
) error {
	// set-once: existing bindings are never silently replaced
	query := `
		UPDATE accounts
		SET device_id = $2, updated_at = NOW()
		WHERE id = $1 AND device_id IS NULL`

	return r.execExpectingRow(ctx, "bind device", query, id, deviceID)
}

func (r *repository) SetLoggedIn(
	ctx context.Context,
	id string,
	loggedIn bool,
) error {
	query := `
		UPDATE accounts
		SET logged_in = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "set logged in", query, id, loggedIn)
}

func (r *repository) UnbindDevice(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET device_id = NULL, logged_in = FALSE, updated_at = NOW()
		WHERE id = $1`

	return r.execExpectingRow(ctx, "unbind device", query, id)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	return r.execExpectingRow(ctx, "delete account", query, id)
}

func (r *repository) List(
	ctx context.Context,
	params ListAccountsParams,
) ([]Account, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(email ILIKE $%d OR name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM accounts WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT`+accountColumns+`
		FROM accounts
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var accounts []Account
	if err := r.db.SelectContext(ctx, &accounts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, strings.ToLower(email))
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	if r.root == nil {
		// already inside a transaction
		return fn(r)
	}

	return core.InTx(ctx, r.root, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) execExpectingRow(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
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
