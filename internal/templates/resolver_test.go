package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfaua/papooga-reach/internal/model"
)

var testBase = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func makeTestTemplate(id, name string, kind model.TemplateKind, current bool, createdOffset time.Duration) model.Template {
	return model.Template{
		ID:        id,
		ProfileID: "p-1",
		Name:      name,
		Kind:      kind,
		Content:   "hello",
		IsCurrent: current,
		CreatedAt: testBase.Add(createdOffset),
	}
}

func makeTestFollowUp(id string, seq int, current bool, createdOffset time.Duration) model.Template {
	t := makeTestTemplate(id, "Step", model.KindFollowUp, current, createdOffset)
	t.SequenceNumber = &seq
	return t
}

func TestResolveCurrent_PicksCurrentOfKind(t *testing.T) {
	tmpls := []model.Template{
		makeTestTemplate("t-1", "Old note", model.KindConnectionNote, false, 0),
		makeTestTemplate("t-2", "Note", model.KindConnectionNote, true, time.Hour),
		makeTestTemplate("t-3", "InMail", model.KindInMail, true, time.Hour),
	}

	got, ok := ResolveCurrent(tmpls, model.KindConnectionNote)
	require.True(t, ok)
	assert.Equal(t, "t-2", got.ID)
}

func TestResolveCurrent_MultipleCurrentPicksMostRecent(t *testing.T) {
	// The store permits duplicate is_current rows; the newest wins.
	tmpls := []model.Template{
		makeTestTemplate("t-1", "Note v1", model.KindConnectionNote, true, 0),
		makeTestTemplate("t-2", "Note v2", model.KindConnectionNote, true, 2*time.Hour),
		makeTestTemplate("t-3", "Note v1b", model.KindConnectionNote, true, time.Hour),
	}

	got, ok := ResolveCurrent(tmpls, model.KindConnectionNote)
	require.True(t, ok)
	assert.Equal(t, "t-2", got.ID)
}

func TestResolveCurrent_CreationTimeTieBreaksOnID(t *testing.T) {
	tmpls := []model.Template{
		makeTestTemplate("t-1", "A", model.KindMessage, true, 0),
		makeTestTemplate("t-2", "B", model.KindMessage, true, 0),
	}

	got, ok := ResolveCurrent(tmpls, model.KindMessage)
	require.True(t, ok)
	assert.Equal(t, "t-2", got.ID, "equal timestamps fall back to the larger time-sortable ID")
}

func TestResolveCurrent_NoneQualifies(t *testing.T) {
	tmpls := []model.Template{
		makeTestTemplate("t-1", "Retired", model.KindConnectionNote, false, 0),
	}

	_, ok := ResolveCurrent(tmpls, model.KindConnectionNote)
	assert.False(t, ok)

	_, ok = ResolveCurrent(nil, model.KindConnectionNote)
	assert.False(t, ok)
}

func TestResolveFollowUp_SequenceWalk(t *testing.T) {
	tmpls := []model.Template{
		makeTestFollowUp("t-1", 1, true, 0),
		makeTestFollowUp("t-2", 2, true, 0),
	}

	testCases := []struct {
		name      string
		completed int
		wantID    string
	}{
		{"zero completed targets seq 1", 0, "t-1"},
		{"one completed targets seq 2", 1, "t-2"},
		{"past the end reuses the last step", 5, "t-2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveFollowUp(tmpls, tc.completed)
			require.True(t, ok)
			assert.Equal(t, tc.wantID, got.ID)
		})
	}
}

func TestResolveFollowUp_SkipsNonCurrentAndWrongKind(t *testing.T) {
	tmpls := []model.Template{
		makeTestFollowUp("t-1", 1, false, 0),
		makeTestTemplate("t-2", "Note", model.KindConnectionNote, true, 0),
	}

	_, ok := ResolveFollowUp(tmpls, 0)
	assert.False(t, ok)
}

func TestResolveFollowUp_GapFallsBackToHighestBelowTarget(t *testing.T) {
	// Sequence has steps 1 and 3. Target 2 falls back to step 1;
	// step 3 is never reached early.
	tmpls := []model.Template{
		makeTestFollowUp("t-1", 1, true, 0),
		makeTestFollowUp("t-3", 3, true, 0),
	}

	got, ok := ResolveFollowUp(tmpls, 1)
	require.True(t, ok)
	assert.Equal(t, "t-1", got.ID)

	got, ok = ResolveFollowUp(tmpls, 2)
	require.True(t, ok)
	assert.Equal(t, "t-3", got.ID)
}

func TestResolveFollowUp_DuplicateSequencePicksMostRecent(t *testing.T) {
	tmpls := []model.Template{
		makeTestFollowUp("t-1", 1, true, 0),
		makeTestFollowUp("t-2", 1, true, time.Hour),
	}

	got, ok := ResolveFollowUp(tmpls, 0)
	require.True(t, ok)
	assert.Equal(t, "t-2", got.ID)
}

func TestResolveFollowUp_NegativeCountClampsToFirstStep(t *testing.T) {
	tmpls := []model.Template{makeTestFollowUp("t-1", 1, true, 0)}

	got, ok := ResolveFollowUp(tmpls, -3)
	require.True(t, ok)
	assert.Equal(t, "t-1", got.ID)
}
