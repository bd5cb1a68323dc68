package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfaua/papooga-reach/internal/model"
)

func makeTestProfile(id, name string, roles ...string) model.Profile {
	return model.Profile{ID: id, Name: name, Roles: roles}
}

func TestMatch_ExactBeatsEverything(t *testing.T) {
	profiles := []model.Profile{
		makeTestProfile("p-1", "Executives", "CEO", "Chief Executive Officer"),
		makeTestProfile("p-2", "Product", "CPO"),
	}

	testCases := []struct {
		name  string
		title string
		role  string
	}{
		{"verbatim", "CEO", "CEO"},
		{"lowercase", "ceo", "CEO"},
		{"mixed case spelled out", "chief executive officer", "Chief Executive Officer"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, ok := Match(tc.title, profiles)
			require.True(t, ok)
			assert.Equal(t, "p-1", r.Profile.ID)
			assert.Equal(t, tc.role, r.MatchedRole, "role keeps its authored casing")
			assert.Equal(t, TierExact, r.Tier, "exact hits never fall through to alias matching")
		})
	}
}

func TestMatch_SubstringPrefersLongestRole(t *testing.T) {
	profiles := []model.Profile{
		makeTestProfile("p-1", "Delivery", "Project Manager", "Manager"),
	}

	r, ok := Match("Senior Project Manager", profiles)
	require.True(t, ok)
	assert.Equal(t, "Project Manager", r.MatchedRole)
	assert.Equal(t, TierSubstring, r.Tier)
}

func TestMatch_SubstringLongestAcrossProfiles(t *testing.T) {
	// The longer role wins even when it lives in a later profile.
	profiles := []model.Profile{
		makeTestProfile("p-1", "Generic", "Manager"),
		makeTestProfile("p-2", "Delivery", "Project Manager"),
	}

	r, ok := Match("Senior Project Manager", profiles)
	require.True(t, ok)
	assert.Equal(t, "p-2", r.Profile.ID)
	assert.Equal(t, "Project Manager", r.MatchedRole)
}

func TestMatch_SubstringTieBreaksByProfileOrder(t *testing.T) {
	profiles := []model.Profile{
		makeTestProfile("p-1", "A", "Manager"),
		makeTestProfile("p-2", "B", "Manager"),
	}

	r, ok := Match("Engineering Manager", profiles)
	require.True(t, ok)
	assert.Equal(t, "p-1", r.Profile.ID)
}

func TestMatch_SubstringIsWordBoundaryOnly(t *testing.T) {
	profiles := []model.Profile{
		makeTestProfile("p-1", "Ops", "COO"),
	}

	_, ok := Match("Coordinator", profiles)
	assert.False(t, ok, "COO must not fire inside Coordinator at the substring tier")

	r, ok := Match("COO of Operations", profiles)
	require.True(t, ok)
	assert.Equal(t, TierSubstring, r.Tier)
	assert.Equal(t, "COO", r.MatchedRole)
}

func TestMatch_AliasFallback(t *testing.T) {
	profiles := []model.Profile{
		makeTestProfile("p-1", "Executives", "CEO"),
	}

	testCases := []struct {
		name  string
		title string
	}{
		{"spelled out", "Chief Executive Officer at Acme"},
		{"standalone token", "Acme ceo"},
		{"punctuated", "CEO, Acme Corp"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, ok := Match(tc.title, profiles)
			require.True(t, ok)
			assert.Equal(t, "CEO", r.MatchedRole)
		})
	}
}

func TestMatch_AliasIsWordBoundaryOnly(t *testing.T) {
	profiles := []model.Profile{
		makeTestProfile("p-1", "Ops", "COO"),
	}

	_, ok := Match("Coordinator", profiles)
	assert.False(t, ok, "COO alias must not fire inside Coordinator")
}

func TestMatch_EmptyTitle(t *testing.T) {
	profiles := []model.Profile{makeTestProfile("p-1", "Executives", "CEO")}

	_, ok := Match("", profiles)
	assert.False(t, ok)

	_, ok = Match("   ", profiles)
	assert.False(t, ok)
}

func TestMatch_NoProfiles(t *testing.T) {
	_, ok := Match("CEO", nil)
	assert.False(t, ok)
}

func TestMatch_NoTierMatches(t *testing.T) {
	profiles := []model.Profile{makeTestProfile("p-1", "Executives", "CEO")}

	_, ok := Match("Staff Accountant", profiles)
	assert.False(t, ok)
}

func TestMatch_Deterministic(t *testing.T) {
	profiles := []model.Profile{
		makeTestProfile("p-1", "A", "Head of Engineering", "Engineer"),
		makeTestProfile("p-2", "B", "Engineering Manager"),
	}

	first, ok := Match("Head of Engineering Management", profiles)
	require.True(t, ok)
	for i := 0; i < 20; i++ {
		again, ok := Match("Head of Engineering Management", profiles)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestCanonicalRole(t *testing.T) {
	testCases := []struct {
		name  string
		title string
		want  string
		ok    bool
	}{
		{"spelled out ceo", "chief executive officer", "CEO", true},
		{"bare cto", "cto", "CTO", true},
		{"vp long form", "Vice President of Sales", "VP", true},
		{"cofounder hyphen", "Co-Founder", "Founder", true},
		{"abbreviation outranks founder", "Co-Founder & CTO", "CTO", true},
		{"no alias", "Software Engineer", "", false},
		{"coordinator is not coo", "Program Coordinator", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CanonicalRole(tc.title)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
