package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

// PostgresRepository stores saved views in viewer.saved_views
// ⭐ SSOT: 저장된 뷰의 DB 저장/조회는 여기서만
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository over an open pool
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, name string, state contracts.ViewState) (SavedView, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return SavedView{}, err
	}

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return SavedView{}, fmt.Errorf("failed to marshal view state: %w", err)
	}

	query := `
		INSERT INTO viewer.saved_views (name, state)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			state = EXCLUDED.state,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	view := SavedView{Name: name, State: state.Clone()}
	err = r.pool.QueryRow(ctx, query, name, stateJSON).Scan(&view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		return SavedView{}, fmt.Errorf("failed to save view %q: %w", name, err)
	}

	return view, nil
}

func (r *PostgresRepository) Get(ctx context.Context, name string) (SavedView, error) {
	query := `
		SELECT name, state, created_at, updated_at
		FROM viewer.saved_views
		WHERE name = $1
	`

	view, err := scanView(r.pool.QueryRow(ctx, query, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return SavedView{}, ErrNotFound
	}
	if err != nil {
		return SavedView{}, fmt.Errorf("failed to get view %q: %w", name, err)
	}
	return view, nil
}

// List returns views newest first
func (r *PostgresRepository) List(ctx context.Context) ([]SavedView, error) {
	query := `
		SELECT name, state, created_at, updated_at
		FROM viewer.saved_views
		ORDER BY updated_at DESC, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list views: %w", err)
	}
	defer rows.Close()

	views := make([]SavedView, 0)
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan view: %w", err)
		}
		views = append(views, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate views: %w", err)
	}

	return views, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM viewer.saved_views WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete view %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanView(row pgx.Row) (SavedView, error) {
	var view SavedView
	var stateJSON []byte

	if err := row.Scan(&view.Name, &stateJSON, &view.CreatedAt, &view.UpdatedAt); err != nil {
		return SavedView{}, err
	}
	if err := json.Unmarshal(stateJSON, &view.State); err != nil {
		return SavedView{}, &contracts.DataShapeError{Field: "state", Reason: err.Error()}
	}
	return view, nil
}
