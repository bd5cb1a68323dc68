package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dfaua/papooga-reach/internal/model"
)

// UpsertProfile inserts or replaces a profile row by ID.
func (s *Store) UpsertProfile(ctx context.Context, p model.Profile) error {
	roles, err := encodeStrings(p.Roles)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	painPoints, err := encodeStrings(p.PainPoints)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, roles, industry, pain_points, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			roles = excluded.roles,
			industry = excluded.industry,
			pain_points = excluded.pain_points
	`, p.ID, p.Name, roles, p.Industry, painPoints, encodeTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// ListProfiles returns all profiles ordered by creation, which keeps
// matcher tie-breaks stable across calls.
func (s *Store) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, roles, industry, pain_points, created_at
		FROM profiles
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		var roles, painPoints, createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &roles, &p.Industry, &painPoints, &createdAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if p.Roles, err = decodeStrings(roles); err != nil {
			return nil, err
		}
		if p.PainPoints, err = decodeStrings(painPoints); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// InsertTemplate inserts a template row. The record is validated first;
// a follow_up without a sequence (or the reverse) never reaches the
// database. The schema CHECK is a second line of defense.
func (s *Store) InsertTemplate(ctx context.Context, t model.Template) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	var seq any
	if t.SequenceNumber != nil {
		seq = *t.SequenceNumber
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates
		(id, profile_id, name, kind, content, notes, is_current, sequence_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.ProfileID, t.Name, string(t.Kind), t.Content, t.Notes,
		boolToInt(t.IsCurrent), seq, encodeTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// UpdateTemplateCurrent sets one template's is_current flag. Deliberately
// touches a single row: no cascading deactivation of siblings.
func (s *Store) UpdateTemplateCurrent(ctx context.Context, id string, current bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET is_current = ? WHERE id = ?`, boolToInt(current), id)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %q: %w", id, ErrNotFound)
	}
	return nil
}

const templateColumns = `id, profile_id, name, kind, content, notes, is_current, sequence_number, created_at`

// GetTemplate returns one template by ID, or ErrNotFound.
func (s *Store) GetTemplate(ctx context.Context, id string) (model.Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)

	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Template{}, fmt.Errorf("template %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Template{}, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// ListTemplates returns all templates, ordered deterministically.
func (s *Store) ListTemplates(ctx context.Context) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM templates ORDER BY created_at ASC, id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var tmpls []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		tmpls = append(tmpls, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return tmpls, nil
}

func scanTemplate(row rowScanner) (model.Template, error) {
	var t model.Template
	var kind, createdAt string
	var isCurrent int
	var seq sql.NullInt64

	err := row.Scan(&t.ID, &t.ProfileID, &t.Name, &kind, &t.Content, &t.Notes,
		&isCurrent, &seq, &createdAt)
	if err != nil {
		return model.Template{}, err
	}

	t.Kind = model.TemplateKind(kind)
	t.IsCurrent = isCurrent != 0
	if seq.Valid {
		n := int(seq.Int64)
		t.SequenceNumber = &n
	}
	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return model.Template{}, err
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
