package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/repository"
)

const pgUniqueViolation = "23505"

const userColumns = `id, email, password_hash, full_name, role, is_active, is_verified, verification_token, reset_token, created_at, updated_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*entity.User, error) {
	u := &entity.User{}
	var verTok, resetTok *string
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role,
		&u.IsActive, &u.IsVerified, &verTok, &resetTok, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if verTok != nil {
		u.VerificationToken = *verTok
	}
	if resetTok != nil {
		u.ResetToken = *resetTok
	}
	return u, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// Create inserts the user, relying on ON CONFLICT to make the
// email-uniqueness check and the insert a single atomic operation.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, role, is_active, is_verified, verification_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.FullName, u.Role, u.IsActive, u.IsVerified, nullIfEmpty(u.VerificationToken))

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, full_name = $3, role = $4,
		    is_active = $5, is_verified = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Password, u.FullName, u.Role, u.IsActive, u.IsVerified, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeVerificationToken matches and clears the token in one statement,
// so two concurrent consumers cannot both succeed.
func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET is_active = true, is_verified = true, verification_token = NULL, updated_at = now()
		WHERE verification_token = $1
		RETURNING `+userColumns,
		token)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) SetResetToken(ctx context.Context, id int64, token string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_token = $1, updated_at = now() WHERE id = $2
	`, token, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, token, passwordHash string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, updated_at = now()
		WHERE reset_token = $1
		RETURNING `+userColumns,
		token, passwordHash)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1
		RETURNING `+userColumns,
		id, active)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func (r *UserRepository) MarkVerified(ctx context.Context, id int64) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET is_verified = true, verification_token = NULL, updated_at = now() WHERE id = $1
		RETURNING `+userColumns,
		id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return u, err
}

func searchConditions(f repository.SearchFilter) []sq.Sqlizer {
	var conds []sq.Sqlizer
	if f.Text != "" {
		pattern := "%" + f.Text + "%"
		conds = append(conds, sq.Or{
			sq.ILike{"full_name": pattern},
			sq.ILike{"email": pattern},
		})
	}
	if f.Role != nil {
		conds = append(conds, sq.Eq{"role": *f.Role})
	}
	if f.IsActive != nil {
		conds = append(conds, sq.Eq{"is_active": *f.IsActive})
	}
	if f.IsVerified != nil {
		conds = append(conds, sq.Eq{"is_verified": *f.IsVerified})
	}
	return conds
}

// Search pages through the directory, newest first. Filters are
// AND-combined; the text filter is a case-insensitive substring match over
// full_name and email.
func (r *UserRepository) Search(ctx context.Context, f repository.SearchFilter) ([]entity.User, int64, error) {
	conds := searchConditions(f)

	countQ := psql.Select("count(*)").From("users")
	for _, c := range conds {
		countQ = countQ.Where(c)
	}
	sqlStr, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := uint64(f.Page-1) * uint64(f.PerPage)
	listQ := psql.Select(userColumns).From("users").
		OrderBy("created_at DESC").
		Offset(offset).
		Limit(uint64(f.PerPage))
	for _, c := range conds {
		listQ = listQ.Where(c)
	}
	sqlStr, args, err = listQ.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]entity.User, 0, f.PerPage)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Stats(ctx context.Context) (*repository.Stats, error) {
	st := &repository.Stats{ByRole: make(map[entity.Role]int64)}
	err := r.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE is_active),
		       count(*) FILTER (WHERE is_verified)
		FROM users
	`).Scan(&st.Total, &st.Active, &st.Verified)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role entity.Role
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		st.ByRole[role] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, role := range entity.Roles() {
		if _, ok := st.ByRole[role]; !ok {
			st.ByRole[role] = 0
		}
	}
	return st, nil
}

func (r *UserRepository) Growth(ctx context.Context, months int) ([]repository.MonthlyCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('month', created_at) AS month, count(*)
		FROM users
		WHERE created_at >= date_trunc('month', now()) - make_interval(months => $1 - 1)
		GROUP BY month
		ORDER BY month
	`, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.MonthlyCount
	for rows.Next() {
		var mc repository.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// BulkApply locks the full id set inside one transaction and rejects the
// whole batch when any id is missing, so concurrent lifecycle operations
// on the same users serialize against it and a partial batch can never be
// observed.
func (r *UserRepository) BulkApply(ctx context.Context, ids []int64, action repository.BulkAction) (int64, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked int64
	err = tx.QueryRow(ctx, `
		SELECT count(*) FROM (
			SELECT id FROM users WHERE id = ANY($1) FOR UPDATE
		) AS locked
	`, unique).Scan(&locked)
	if err != nil {
		return 0, err
	}
	if locked != int64(len(unique)) {
		return 0, repository.ErrNotFound
	}

	var stmt string
	switch action {
	case repository.BulkActivate:
		stmt = `UPDATE users SET is_active = true, updated_at = now() WHERE id = ANY($1)`
	case repository.BulkDeactivate:
		stmt = `UPDATE users SET is_active = false, updated_at = now() WHERE id = ANY($1)`
	case repository.BulkVerify:
		stmt = `UPDATE users SET is_verified = true, verification_token = NULL, updated_at = now() WHERE id = ANY($1)`
	case repository.BulkDelete:
		stmt = `DELETE FROM users WHERE id = ANY($1)`
	default:
		return 0, fmt.Errorf("unknown bulk action %q", action)
	}

	res, err := tx.Exec(ctx, stmt, unique)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
