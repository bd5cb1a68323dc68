package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfaua/papooga-reach/internal/model"
)

func intPtr(n int) *int { return &n }

func seedProfile(t *testing.T, s *Store, id, name string, roles ...string) model.Profile {
	t.Helper()
	p := model.Profile{ID: id, Name: name, Roles: roles, CreatedAt: storeTestNow}
	require.NoError(t, s.UpsertProfile(context.Background(), p))
	return p
}

func TestProfiles_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p := model.Profile{
		ID:         "p-1",
		Name:       "Executives",
		Roles:      []string{"CEO", "Chief Executive Officer"},
		Industry:   "SaaS",
		PainPoints: []string{"churn", "pipeline visibility"},
		CreatedAt:  storeTestNow,
	}
	require.NoError(t, s.UpsertProfile(ctx, p))

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, p.Roles, profiles[0].Roles, "role order survives the round trip")
	assert.Equal(t, p.PainPoints, profiles[0].PainPoints)
	assert.True(t, p.CreatedAt.Equal(profiles[0].CreatedAt))
}

func TestListProfiles_OrderedByCreation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for i, id := range []string{"p-b", "p-a", "p-c"} {
		p := model.Profile{ID: id, Name: id, Roles: []string{"CEO"},
			CreatedAt: storeTestNow.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.UpsertProfile(ctx, p))
	}

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "p-b", profiles[0].ID)
	assert.Equal(t, "p-a", profiles[1].ID)
	assert.Equal(t, "p-c", profiles[2].ID)
}

func TestInsertTemplate_EnforcesSequenceInvariant(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedProfile(t, s, "p-1", "Executives", "CEO")

	// follow_up without a sequence never reaches the database.
	err := s.InsertTemplate(ctx, model.Template{
		ID: "t-1", ProfileID: "p-1", Name: "Nudge", Kind: model.KindFollowUp,
		Content: "Still there?", CreatedAt: storeTestNow,
	})
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	// connection_note with a sequence is equally invalid.
	err = s.InsertTemplate(ctx, model.Template{
		ID: "t-2", ProfileID: "p-1", Name: "Note", Kind: model.KindConnectionNote,
		Content: "Hi", SequenceNumber: intPtr(1), CreatedAt: storeTestNow,
	})
	require.Error(t, err)

	tmpls, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Empty(t, tmpls)
}

func TestTemplates_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedProfile(t, s, "p-1", "Executives", "CEO")

	tmpl := model.Template{
		ID: "t-1", ProfileID: "p-1", Name: "Nudge", Kind: model.KindFollowUp,
		Content: "Still there?", Notes: "tone: casual", IsCurrent: true,
		SequenceNumber: intPtr(2), CreatedAt: storeTestNow,
	}
	require.NoError(t, s.InsertTemplate(ctx, tmpl))

	got, err := s.GetTemplate(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, model.KindFollowUp, got.Kind)
	assert.True(t, got.IsCurrent)
	require.NotNil(t, got.SequenceNumber)
	assert.Equal(t, 2, *got.SequenceNumber)

	note := model.Template{
		ID: "t-2", ProfileID: "p-1", Name: "Note", Kind: model.KindConnectionNote,
		Content: "Hi", CreatedAt: storeTestNow,
	}
	require.NoError(t, s.InsertTemplate(ctx, note))

	got, err = s.GetTemplate(ctx, "t-2")
	require.NoError(t, err)
	assert.Nil(t, got.SequenceNumber)
}

func TestUpdateTemplateCurrent_SingleRowOnly(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedProfile(t, s, "p-1", "Executives", "CEO")

	for _, id := range []string{"t-1", "t-2"} {
		require.NoError(t, s.InsertTemplate(ctx, model.Template{
			ID: id, ProfileID: "p-1", Name: "Note " + id, Kind: model.KindConnectionNote,
			Content: "Hi", IsCurrent: true, CreatedAt: storeTestNow,
		}))
	}

	require.NoError(t, s.UpdateTemplateCurrent(ctx, "t-1", false))

	t1, err := s.GetTemplate(ctx, "t-1")
	require.NoError(t, err)
	assert.False(t, t1.IsCurrent)

	t2, err := s.GetTemplate(ctx, "t-2")
	require.NoError(t, err)
	assert.True(t, t2.IsCurrent, "no cascading deactivation of siblings")
}

func TestGetTemplate_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetTemplate(context.Background(), "t-missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetProfileOverride(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	seedContact(t, s, "c-1")

	require.NoError(t, s.SetProfileOverride(ctx, "c-1", "p-9"))

	c, err := s.GetContact(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "p-9", c.ProfileOverrideID)

	require.NoError(t, s.SetProfileOverride(ctx, "c-1", ""))
	c, err = s.GetContact(ctx, "c-1")
	require.NoError(t, err)
	assert.Empty(t, c.ProfileOverrideID)

	err = s.SetProfileOverride(ctx, "c-missing", "p-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
