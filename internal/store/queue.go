package store

import (
	"context"
	"fmt"

	"github.com/dfaua/papooga-reach/internal/model"
)

// FollowUpQueue returns the contacts currently due for a follow-up:
// at least one outreach event with outcome accepted, and zero received
// messages. The membership test runs over the event streams on every
// call - there is no cached eligibility column to go stale.
func (s *Store) FollowUpQueue(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts c
		WHERE EXISTS (
			SELECT 1 FROM outreach_events e
			WHERE e.contact_id = c.id AND e.outcome = 'accepted'
		)
		AND NOT EXISTS (
			SELECT 1 FROM messages m
			WHERE m.contact_id = c.id AND m.direction = 'received'
		)
		ORDER BY c.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query follow-up queue: %w", err)
	}
	defer rows.Close()

	return collectContacts(rows)
}

// ContactHistory bundles one contact's record with both event streams,
// read in deterministic order. This is the unit the engagement functions
// operate over.
type ContactHistory struct {
	Contact  model.Contact
	Events   []model.OutreachEvent
	Messages []model.Message
}

// GetContactHistory reads a contact and its full event/message history.
func (s *Store) GetContactHistory(ctx context.Context, contactID string) (ContactHistory, error) {
	contact, err := s.GetContact(ctx, contactID)
	if err != nil {
		return ContactHistory{}, err
	}
	events, err := s.ListEventsByContact(ctx, contactID)
	if err != nil {
		return ContactHistory{}, err
	}
	messages, err := s.ListMessagesByContact(ctx, contactID)
	if err != nil {
		return ContactHistory{}, err
	}
	return ContactHistory{Contact: contact, Events: events, Messages: messages}, nil
}
