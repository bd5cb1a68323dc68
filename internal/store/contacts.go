package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dfaua/papooga-reach/internal/model"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UpsertContact inserts or replaces a contact row by ID.
func (s *Store) UpsertContact(ctx context.Context, c model.Contact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts
		(id, first_name, last_name, title, company_name, status, warm_intro_referrer, profile_override_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			title = excluded.title,
			company_name = excluded.company_name,
			status = excluded.status,
			warm_intro_referrer = excluded.warm_intro_referrer,
			profile_override_id = excluded.profile_override_id,
			updated_at = excluded.updated_at
	`,
		c.ID, c.FirstName, c.LastName, c.Title, c.CompanyName,
		string(c.Status), c.WarmIntroReferrer, c.ProfileOverrideID,
		encodeTime(c.CreatedAt), encodeTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	return nil
}

const contactColumns = `id, first_name, last_name, title, company_name, status, warm_intro_referrer, profile_override_id, created_at, updated_at`

// GetContact returns one contact by ID, or ErrNotFound.
func (s *Store) GetContact(ctx context.Context, id string) (model.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)

	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Contact{}, fmt.Errorf("contact %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// ListContacts returns every contact, ordered by ID.
func (s *Store) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

// ListContactsByCompany returns a company's contacts, ordered by ID for
// deterministic batch fan-out.
func (s *Store) ListContactsByCompany(ctx context.Context, company string) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE company_name = ? ORDER BY id COLLATE BINARY ASC`, company)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

// SetProfileOverride pins (or clears, with "") a contact's manual profile
// override. Override storage lives here, not in the matcher.
func (s *Store) SetProfileOverride(ctx context.Context, contactID, profileID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET profile_override_id = ? WHERE id = ?`, profileID, contactID)
	if err != nil {
		return fmt.Errorf("set profile override: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set profile override: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("contact %q: %w", contactID, ErrNotFound)
	}
	return nil
}

// SetStatus updates a contact's stored status directly. Operator-driven
// edits (e.g. asked_for_intro with a referrer) come through here; automatic
// advancement happens only via ApplySend.
func (s *Store) SetStatus(ctx context.Context, contactID string, status model.ContactStatus, referrer string) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET status = ?, warm_intro_referrer = ? WHERE id = ?`,
		string(status), referrer, contactID)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("contact %q: %w", contactID, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (model.Contact, error) {
	var c model.Contact
	var status, createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Title, &c.CompanyName,
		&status, &c.WarmIntroReferrer, &c.ProfileOverrideID, &createdAt, &updatedAt)
	if err != nil {
		return model.Contact{}, err
	}

	c.Status = model.ContactStatus(status)
	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return model.Contact{}, err
	}
	if c.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return model.Contact{}, err
	}
	return c, nil
}

func collectContacts(rows *sql.Rows) ([]model.Contact, error) {
	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}
