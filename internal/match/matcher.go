package match

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dfaua/papooga-reach/internal/model"
)

// Tier identifies which matching tier produced a result.
type Tier string

const (
	TierExact     Tier = "exact"
	TierSubstring Tier = "substring"
	TierAlias     Tier = "alias"
)

// Result is a successful title match.
type Result struct {
	Profile     model.Profile
	MatchedRole string
	Tier        Tier
}

// Match resolves a free-text title to a profile.
//
// Returns (Result, true) on a hit, (Result{}, false) when no tier matches.
// A nil-equivalent (empty or whitespace-only) title never matches.
//
// Determinism: profiles are tried in the order given; within the substring
// tier, roles are ordered longest-first with profile order breaking length
// ties. Two calls with the same inputs always return the same result.
func Match(title string, profiles []model.Profile) (Result, bool) {
	title = normalizeTitle(title)
	if title == "" {
		return Result{}, false
	}

	if r, ok := matchExact(title, profiles); ok {
		return r, true
	}
	if r, ok := matchSubstring(title, profiles); ok {
		return r, true
	}
	if r, ok := matchAlias(title, profiles); ok {
		return r, true
	}
	return Result{}, false
}

// normalizeTitle prepares a title for comparison: NFC normalization so
// visually identical titles compare equal, then whitespace trimming.
// Case folding happens per-comparison, not here, so matched roles keep
// their authored casing.
func normalizeTitle(title string) string {
	return strings.TrimSpace(norm.NFC.String(title))
}

// matchExact returns the first profile with a role equal to the title,
// case-insensitively.
func matchExact(title string, profiles []model.Profile) (Result, bool) {
	for _, p := range profiles {
		for _, role := range p.Roles {
			if strings.EqualFold(title, strings.TrimSpace(role)) {
				return Result{Profile: p, MatchedRole: role, Tier: TierExact}, true
			}
		}
	}
	return Result{}, false
}

// roleRef ties a role string back to its profile for cross-profile sorting.
type roleRef struct {
	role       string
	profileIdx int
	roleIdx    int
}

// matchSubstring returns the profile whose role is the longest word-bounded
// occurrence in the title: "Project Manager" hits "Senior Project Manager",
// but "COO" never fires inside "Coordinator". Candidates are gathered across
// all profiles and sorted by role length descending; profile order then role
// order break ties, keeping the result stable across calls.
func matchSubstring(title string, profiles []model.Profile) (Result, bool) {
	lowerTitle := strings.ToLower(title)

	var refs []roleRef
	for pi, p := range profiles {
		for ri, role := range p.Roles {
			refs = append(refs, roleRef{role: strings.TrimSpace(role), profileIdx: pi, roleIdx: ri})
		}
	}

	sort.SliceStable(refs, func(i, j int) bool {
		if len(refs[i].role) != len(refs[j].role) {
			return len(refs[i].role) > len(refs[j].role)
		}
		if refs[i].profileIdx != refs[j].profileIdx {
			return refs[i].profileIdx < refs[j].profileIdx
		}
		return refs[i].roleIdx < refs[j].roleIdx
	})

	for _, ref := range refs {
		if ref.role == "" {
			continue
		}
		if roleOccursIn(lowerTitle, strings.ToLower(ref.role)) {
			p := profiles[ref.profileIdx]
			return Result{Profile: p, MatchedRole: ref.role, Tier: TierSubstring}, true
		}
	}
	return Result{}, false
}

// roleOccursIn reports whether role appears in title bounded by word edges.
// Both inputs are lowercased by the caller.
func roleOccursIn(title, role string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(role) + `\b`)
	return re.MatchString(title)
}

// matchAlias canonicalizes the title through the alias table and looks the
// canonical role up in the profiles' role lists, case-insensitively.
func matchAlias(title string, profiles []model.Profile) (Result, bool) {
	canonical, ok := CanonicalRole(title)
	if !ok {
		return Result{}, false
	}
	for _, p := range profiles {
		for _, role := range p.Roles {
			if strings.EqualFold(canonical, strings.TrimSpace(role)) {
				return Result{Profile: p, MatchedRole: canonical, Tier: TierAlias}, true
			}
		}
	}
	return Result{}, false
}
