package todo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTodosTableSQL = `
CREATE TABLE IF NOT EXISTS todos (
  id uuid PRIMARY KEY,
  title text NOT NULL,
  description text NOT NULL,
  is_active boolean NOT NULL,
  created_at timestamptz NOT NULL,
  updated_at timestamptz NOT NULL
)`

const listTodosSQL = `
SELECT id, title, description, is_active, created_at, updated_at
FROM todos
ORDER BY created_at DESC`

const getTodoSQL = `
SELECT id, title, description, is_active, created_at, updated_at
FROM todos
WHERE id = $1`

const insertTodoSQL = `
INSERT INTO todos (id, title, description, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`

const updateTodoSQL = `
UPDATE todos
SET title = COALESCE($2, title),
    description = COALESCE($3, description),
    is_active = COALESCE($4, is_active),
    updated_at = $5
WHERE id = $1
RETURNING id, title, description, is_active, created_at, updated_at`

const deleteTodoSQL = `
DELETE FROM todos WHERE id = $1`

type PostgresRepository struct {
	Pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{Pool: pool}
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.Pool.Exec(ctx, createTodosTableSQL)
	return err
}

func (r *PostgresRepository) List(ctx context.Context) ([]Todo, error) {
	rows, err := r.Pool.Query(ctx, listTodosSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Todo{}
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Todo, error) {
	var t Todo
	err := r.Pool.QueryRow(ctx, getTodoSQL, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return Todo{}, ErrTodoNotFound
		}
		return Todo{}, err
	}
	return t, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, t Todo) error {
	_, err := r.Pool.Exec(ctx, insertTodoSQL,
		t.ID, t.Title, t.Description, t.IsActive, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, id string, patch Patch, updatedAt time.Time) (Todo, error) {
	var t Todo
	err := r.Pool.QueryRow(ctx, updateTodoSQL,
		id, patch.Title, patch.Description, patch.IsActive, updatedAt).
		Scan(&t.ID, &t.Title, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return Todo{}, ErrTodoNotFound
		}
		return Todo{}, err
	}
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.Pool.Exec(ctx, deleteTodoSQL, id)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrTodoNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

// isInvalidUUID matches Postgres invalid_text_representation, raised when the
// path id is not a well-formed uuid. Such an id can never name a record, so
// the repository reports it as not found rather than a store failure.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
