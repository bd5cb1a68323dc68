package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfaua/papooga-reach/internal/engagement"
	"github.com/dfaua/papooga-reach/internal/model"
)

// AppendEvent inserts an outreach event. ON CONFLICT DO NOTHING makes
// re-applying the same effect idempotent; other constraint violations
// still surface.
func (s *Store) AppendEvent(ctx context.Context, ev model.OutreachEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return execAppendEvent(ctx, s.db, ev)
}

// AppendMessage inserts a message turn, idempotently.
func (s *Store) AppendMessage(ctx context.Context, msg model.Message) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return execAppendMessage(ctx, s.db, msg)
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execAppendEvent(ctx context.Context, db execer, ev model.OutreachEvent) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO outreach_events
		(id, contact_id, action, template_id, outcome, seq, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, ev.ID, ev.ContactID, string(ev.Action), ev.TemplateID, string(ev.Outcome),
		ev.Seq, encodeTime(ev.CreatedAt), encodeTime(ev.UpdatedAt))
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func execAppendMessage(ctx context.Context, db execer, msg model.Message) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, contact_id, direction, channel, content, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, msg.ID, msg.ContactID, string(msg.Direction), msg.Channel, msg.Content,
		msg.Seq, encodeTime(msg.CreatedAt))
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// AdvanceOutcome moves an event's outcome forward, guarded at the row
// level: the UPDATE names exactly the outcomes the transition table allows
// as sources, so a backward or same-value request matches zero rows and
// reports advanced=false. Concurrent forward writers therefore commute -
// the last forward-moving write wins and no interleaving can produce an
// invalid state.
func (s *Store) AdvanceOutcome(ctx context.Context, eventID string, next model.Outcome, updatedAt time.Time) (advanced bool, err error) {
	return advanceOutcome(ctx, s.db, eventID, next, updatedAt)
}

func advanceOutcome(ctx context.Context, db execer, eventID string, next model.Outcome, updatedAt time.Time) (bool, error) {
	if !next.Valid() {
		return false, fmt.Errorf("advance outcome: unknown outcome %q", next)
	}

	// Sources the transition table allows for this target.
	var from []any
	for _, o := range []model.Outcome{model.OutcomePending, model.OutcomeAccepted} {
		if o.CanAdvanceTo(next) {
			from = append(from, string(o))
		}
	}
	if len(from) == 0 {
		return false, nil
	}

	query := `UPDATE outreach_events SET outcome = ?, updated_at = ? WHERE id = ? AND outcome IN (?`
	for range from[1:] {
		query += `, ?`
	}
	query += `)`

	args := append([]any{string(next), encodeTime(updatedAt), eventID}, from...)
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("advance outcome: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("advance outcome: %w", err)
	}
	return n > 0, nil
}

// ApplySend persists a send effect atomically: append the event, append
// the outbound message, and advance the contact's stored status.
func (s *Store) ApplySend(ctx context.Context, eff engagement.SendEffect) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply send: %w", err)
	}
	defer tx.Rollback()

	if err := execAppendEvent(ctx, tx, eff.Event); err != nil {
		return err
	}
	if err := execAppendMessage(ctx, tx, eff.Message); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE contacts SET status = ?, updated_at = ? WHERE id = ?`,
		string(eff.Contact.Status), encodeTime(eff.Contact.UpdatedAt), eff.Contact.ID)
	if err != nil {
		return fmt.Errorf("apply send: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply send: %w", err)
	}
	return nil
}

// ApplyInbound persists an inbound effect atomically: the received message
// and, when set, the resolved event's outcome land in one transaction, so
// "outcome is replied" and "no longer follow-up eligible" are never
// observable apart.
func (s *Store) ApplyInbound(ctx context.Context, eff engagement.InboundEffect) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply inbound: %w", err)
	}
	defer tx.Rollback()

	if err := execAppendMessage(ctx, tx, eff.Message); err != nil {
		return err
	}
	if ev := eff.ResolvedEvent; ev != nil {
		if _, err := advanceOutcome(ctx, tx, ev.ID, ev.Outcome, ev.UpdatedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply inbound: %w", err)
	}
	return nil
}

const eventColumns = `id, contact_id, action, template_id, outcome, seq, created_at, updated_at`

// GetEvent returns one outreach event by ID, or ErrNotFound.
func (s *Store) GetEvent(ctx context.Context, id string) (model.OutreachEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM outreach_events WHERE id = ?`, id)

	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OutreachEvent{}, fmt.Errorf("event %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.OutreachEvent{}, fmt.Errorf("get event: %w", err)
	}
	return ev, nil
}

// ListEventsByContact returns the contact's outreach history in
// deterministic order: seq ascending, ID breaking exact ties.
func (s *Store) ListEventsByContact(ctx context.Context, contactID string) ([]model.OutreachEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM outreach_events
		WHERE contact_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, contactID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.OutreachEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ListMessagesByContact returns the contact's conversation in seq order.
func (s *Store) ListMessagesByContact(ctx context.Context, contactID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contact_id, direction, channel, content, seq, created_at
		FROM messages
		WHERE contact_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, contactID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var direction, createdAt string
		if err := rows.Scan(&m.ID, &m.ContactID, &direction, &m.Channel, &m.Content, &m.Seq, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Direction = model.Direction(direction)
		if m.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func scanEvent(row rowScanner) (model.OutreachEvent, error) {
	var ev model.OutreachEvent
	var action, outcome, createdAt, updatedAt string

	err := row.Scan(&ev.ID, &ev.ContactID, &action, &ev.TemplateID, &outcome,
		&ev.Seq, &createdAt, &updatedAt)
	if err != nil {
		return model.OutreachEvent{}, err
	}

	ev.Action = model.OutreachAction(action)
	ev.Outcome = model.Outcome(outcome)
	if ev.CreatedAt, err = decodeTime(createdAt); err != nil {
		return model.OutreachEvent{}, err
	}
	if ev.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return model.OutreachEvent{}, err
	}
	return ev, nil
}
