package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfaua/papooga-reach/internal/model"
)

func makeTestVersioner(ids ...string) *Versioner {
	return &Versioner{
		IDs: model.NewFixedIDGenerator(ids...),
		Now: func() time.Time { return testBase.Add(24 * time.Hour) },
	}
}

func TestVersioner_IterateBumpsName(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		want     string
	}{
		{"unversioned gets v2", "Cold Intro", "Cold Intro v2"},
		{"v2 becomes v3", "Cold Intro v2", "Cold Intro v3"},
		{"case-insensitive marker", "COLD INTRO V2", "COLD INTRO v3"},
		{"trailing whitespace", "Cold Intro v4  ", "Cold Intro v5"},
		{"multi digit", "Nurture v12", "Nurture v13"},
		{"embedded v is not a marker", "Improv2", "Improv2 v2"},
		{"bare marker", "v2", "v3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := makeTestVersioner("t-new")
			old := model.Template{ID: "t-old", Name: tc.template, Kind: model.KindConnectionNote, IsCurrent: true}

			_, created := v.Iterate(old)
			assert.Equal(t, tc.want, created.Name)
		})
	}
}

func TestVersioner_IterateEffects(t *testing.T) {
	seq := 2
	v := makeTestVersioner("t-new")
	old := model.Template{
		ID:             "t-old",
		ProfileID:      "p-1",
		Name:           "Nudge v2",
		Kind:           model.KindFollowUp,
		Content:        "Still there?",
		Notes:          "tone: casual",
		IsCurrent:      true,
		SequenceNumber: &seq,
		CreatedAt:      testBase,
	}

	deactivated, created := v.Iterate(old)

	assert.Equal(t, "t-old", deactivated.ID, "identity preserved through deactivation")
	assert.False(t, deactivated.IsCurrent)
	assert.Equal(t, "Nudge v2", deactivated.Name, "deactivation does not rename")

	assert.Equal(t, "t-new", created.ID)
	assert.True(t, created.IsCurrent)
	assert.Equal(t, "Nudge v3", created.Name)
	assert.Equal(t, old.ProfileID, created.ProfileID)
	assert.Equal(t, old.Kind, created.Kind)
	assert.Equal(t, old.Content, created.Content)
	assert.Equal(t, old.Notes, created.Notes)
	require.NotNil(t, created.SequenceNumber)
	assert.Equal(t, 2, *created.SequenceNumber)

	// The copy owns its own sequence pointer.
	*created.SequenceNumber = 9
	assert.Equal(t, 2, *old.SequenceNumber)
}

func TestVersioner_IterateRepeatedlyNeverCollides(t *testing.T) {
	v := makeTestVersioner("t-2", "t-3", "t-4")
	cur := model.Template{ID: "t-1", Name: "Outreach", Kind: model.KindMessage, IsCurrent: true}

	seen := map[string]bool{cur.Name: true}
	for i := 0; i < 3; i++ {
		_, next := v.Iterate(cur)
		assert.False(t, seen[next.Name], "name %q repeated", next.Name)
		seen[next.Name] = true
		cur = next
	}
	assert.Equal(t, "Outreach v4", cur.Name)
}

func TestVersioner_ToggleCurrent(t *testing.T) {
	v := makeTestVersioner()
	tmpl := model.Template{ID: "t-1", Name: "Note", Kind: model.KindConnectionNote, IsCurrent: true}

	off := v.ToggleCurrent(tmpl)
	assert.False(t, off.IsCurrent)
	assert.Equal(t, tmpl.Name, off.Name, "toggle flips the flag and nothing else")

	on := v.ToggleCurrent(off)
	assert.True(t, on.IsCurrent)
}
