package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/csopt/internal/models"
)

const promptColumns = `id, name, system_prompt, user_prompt, is_active, notes, created_at`

// PromptPatch holds the optional fields of a prompt version update.
type PromptPatch struct {
	Name         *string `json:"name"`
	SystemPrompt *string `json:"system_prompt"`
	UserPrompt   *string `json:"user_prompt"`
	IsActive     *bool   `json:"is_active"`
	Notes        *string `json:"notes"`
}

func scanPrompt(row pgx.Row) (*models.PromptVersion, error) {
	var p models.PromptVersion
	if err := row.Scan(&p.ID, &p.Name, &p.SystemPrompt, &p.UserPrompt, &p.IsActive, &p.Notes, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPromptVersions returns all versions, newest first.
func (s *Store) ListPromptVersions(ctx context.Context) ([]models.PromptVersion, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+promptColumns+` FROM prompt_versions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list prompt versions: %w", err)
	}
	defer rows.Close()

	var out []models.PromptVersion
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt version: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) GetPromptVersion(ctx context.Context, id int64) (*models.PromptVersion, error) {
	p, err := scanPrompt(s.pool.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompt_versions WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get prompt version %d: %w", id, classify(err))
	}
	return p, nil
}

// GetActivePromptVersion returns the active version or ErrNotFound.
func (s *Store) GetActivePromptVersion(ctx context.Context) (*models.PromptVersion, error) {
	p, err := scanPrompt(s.pool.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompt_versions WHERE is_active = true ORDER BY id LIMIT 1`))
	if err != nil {
		return nil, fmt.Errorf("get active prompt version: %w", classify(err))
	}
	return p, nil
}

// CreatePromptVersion inserts p. When p.IsActive is set every other version
// is deactivated in the same transaction.
func (s *Store) CreatePromptVersion(ctx context.Context, p models.PromptVersion) (*models.PromptVersion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	out, err := scanPrompt(tx.QueryRow(ctx, `
		INSERT INTO prompt_versions (name, system_prompt, user_prompt, is_active, notes)
		VALUES ($1, $2, $3, false, $4)
		RETURNING `+promptColumns,
		p.Name, p.SystemPrompt, p.UserPrompt, p.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("create prompt version: %w", classify(err))
	}

	if p.IsActive {
		if err := activate(ctx, tx, out.ID); err != nil {
			return nil, err
		}
		out.IsActive = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return out, nil
}

// UpdatePromptVersion applies the non-nil fields of p. Setting is_active to
// true goes through the same single-statement swap as ActivatePromptVersion.
func (s *Store) UpdatePromptVersion(ctx context.Context, id int64, p PromptPatch) (*models.PromptVersion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	out, err := scanPrompt(tx.QueryRow(ctx, `
		UPDATE prompt_versions
		SET name = COALESCE($1, name),
			system_prompt = COALESCE($2, system_prompt),
			user_prompt = COALESCE($3, user_prompt),
			notes = COALESCE($4, notes),
			is_active = CASE WHEN $5::boolean = false THEN false ELSE is_active END
		WHERE id = $6
		RETURNING `+promptColumns,
		p.Name, p.SystemPrompt, p.UserPrompt, p.Notes, p.IsActive, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update prompt version %d: %w", id, classify(err))
	}

	if p.IsActive != nil && *p.IsActive && !out.IsActive {
		if err := activate(ctx, tx, id); err != nil {
			return nil, err
		}
		out.IsActive = true
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return out, nil
}

func (s *Store) DeletePromptVersion(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM prompt_versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prompt version %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete prompt version %d: %w", id, ErrNotFound)
	}
	return nil
}

// ActivatePromptVersion makes id the only active version.
func (s *Store) ActivatePromptVersion(ctx context.Context, id int64) (*models.PromptVersion, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer rollback(ctx, tx)

	// Row lock so concurrent activations serialize on the target.
	var exists int64
	if err := tx.QueryRow(ctx, `SELECT id FROM prompt_versions WHERE id = $1 FOR UPDATE`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("activate prompt version %d: %w", id, classify(err))
	}

	if err := activate(ctx, tx, id); err != nil {
		return nil, err
	}

	out, err := scanPrompt(tx.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompt_versions WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reload prompt version %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return out, nil
}

func activate(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `UPDATE prompt_versions SET is_active = (id = $1)`, id); err != nil {
		return fmt.Errorf("activate prompt version %d: %w", id, err)
	}
	return nil
}

// SetSystemPrompt overwrites the system prompt of a version.
func (s *Store) SetSystemPrompt(ctx context.Context, id int64, systemPrompt string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE prompt_versions SET system_prompt = $1 WHERE id = $2`, systemPrompt, id)
	if err != nil {
		return fmt.Errorf("set system prompt %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set system prompt %d: %w", id, ErrNotFound)
	}
	return nil
}
