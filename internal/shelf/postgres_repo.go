package shelf

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, external_id, title, authors, cover_image_url, average_rating, status,
	user_rating, user_review, started_date, finished_date, created_at, updated_at`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.ExternalID, &b.Title, &b.Authors, &b.CoverImageURL, &b.AverageRating, &b.Status,
		&b.UserRating, &b.UserReview, &b.StartedDate, &b.FinishedDate, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	return b, err
}

func (r *PostgresRepo) List(ctx context.Context, status string) ([]Book, error) {
	sql := `SELECT ` + bookColumns + ` FROM shelf_books`
	var args []any
	if status != "" {
		sql += ` WHERE status = $1`
		args = append(args, status)
	}
	sql += ` ORDER BY created_at DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *PostgresRepo) GetByExternalID(ctx context.Context, externalID string) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx,
		`SELECT `+bookColumns+` FROM shelf_books WHERE external_id = $1`, externalID))
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const upsertSQL = `
		INSERT INTO shelf_books (id, external_id, title, authors, cover_image_url, average_rating, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (external_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING ` + bookColumns

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	saved, err := scanBook(r.db.QueryRow(timeoutCtx, upsertSQL,
		uuid.NewString(), b.ExternalID, b.Title, b.Authors, b.CoverImageURL, b.AverageRating, b.Status,
	))
	if err != nil {
		return err
	}
	*b = saved
	return nil
}

func (r *PostgresRepo) Update(ctx context.Context, id string, p Patch) (Book, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	if p.UserRating != nil {
		set("user_rating", *p.UserRating)
	}
	if p.UserReview != nil {
		set("user_review", *p.UserReview)
	}
	if p.StartedDate != nil {
		set("started_date", *p.StartedDate)
	}
	if p.FinishedDate != nil {
		set("finished_date", *p.FinishedDate)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	updateSQL := fmt.Sprintf(`UPDATE shelf_books SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), bookColumns)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return scanBook(r.db.QueryRow(timeoutCtx, updateSQL, args...))
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	commandTag, err := r.db.Exec(timeoutCtx, `DELETE FROM shelf_books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
