package pipeline

import (
	"context"
	"sync"

	"github.com/dfaua/papooga-reach/internal/model"
)

// BatchItem is one contact's slot in a batch draft: either a draft or a
// typed error, never both.
type BatchItem struct {
	Contact model.Contact
	Draft   Draft
	Err     error
}

// BatchRequest drafts the same kind for many contacts at once, typically
// everyone at one company. EventsByContact supplies each contact's
// outreach history for follow-up sequencing.
type BatchRequest struct {
	Contacts        []model.Contact
	Kind            model.TemplateKind
	Profiles        []model.Profile
	Templates       []model.Template
	EventsByContact map[string][]model.OutreachEvent
}

// DraftBatch fans DraftMessage out across contacts in parallel.
//
// Contacts are independent: there is no shared mutable state between
// slots, and one contact's failure lands in its own slot without aborting
// the rest. Results keep the input order.
func (o *Orchestrator) DraftBatch(ctx context.Context, req BatchRequest) []BatchItem {
	items := make([]BatchItem, len(req.Contacts))

	var wg sync.WaitGroup
	for i, contact := range req.Contacts {
		wg.Add(1)
		go func(i int, contact model.Contact) {
			defer wg.Done()

			draft, err := o.DraftMessage(ctx, DraftRequest{
				Contact:   contact,
				Kind:      req.Kind,
				Profiles:  req.Profiles,
				Templates: req.Templates,
				Events:    req.EventsByContact[contact.ID],
			})
			items[i] = BatchItem{Contact: contact, Draft: draft, Err: err}
		}(i, contact)
	}
	wg.Wait()

	return items
}
