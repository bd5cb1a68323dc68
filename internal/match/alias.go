package match

import "regexp"

// aliasRule recognizes one canonical role via a word-boundary pattern.
// Patterns must never fire on incidental substrings: "Coordinator" must
// not canonicalize to "COO".
type aliasRule struct {
	pattern   *regexp.Regexp
	canonical string
}

// aliasRules is the fixed canonicalization table for common C-level and VP
// titles. Rules are evaluated in declaration order; the first pattern that
// fires wins, so longer spelled-out forms sit above bare abbreviations.
var aliasRules = []aliasRule{
	{regexp.MustCompile(`(?i)\bchief\s+executive\s+officer\b`), "CEO"},
	{regexp.MustCompile(`(?i)\bchief\s+technology\s+officer\b`), "CTO"},
	{regexp.MustCompile(`(?i)\bchief\s+technical\s+officer\b`), "CTO"},
	{regexp.MustCompile(`(?i)\bchief\s+financial\s+officer\b`), "CFO"},
	{regexp.MustCompile(`(?i)\bchief\s+operating\s+officer\b`), "COO"},
	{regexp.MustCompile(`(?i)\bchief\s+operations\s+officer\b`), "COO"},
	{regexp.MustCompile(`(?i)\bchief\s+marketing\s+officer\b`), "CMO"},
	{regexp.MustCompile(`(?i)\bchief\s+information\s+officer\b`), "CIO"},
	{regexp.MustCompile(`(?i)\bchief\s+product\s+officer\b`), "CPO"},
	{regexp.MustCompile(`(?i)\bchief\s+revenue\s+officer\b`), "CRO"},
	{regexp.MustCompile(`(?i)\bchief\s+people\s+officer\b`), "CHRO"},
	{regexp.MustCompile(`(?i)\bchief\s+human\s+resources\s+officer\b`), "CHRO"},
	{regexp.MustCompile(`(?i)\bceo\b`), "CEO"},
	{regexp.MustCompile(`(?i)\bcto\b`), "CTO"},
	{regexp.MustCompile(`(?i)\bcfo\b`), "CFO"},
	{regexp.MustCompile(`(?i)\bcoo\b`), "COO"},
	{regexp.MustCompile(`(?i)\bcmo\b`), "CMO"},
	{regexp.MustCompile(`(?i)\bcio\b`), "CIO"},
	{regexp.MustCompile(`(?i)\bcpo\b`), "CPO"},
	{regexp.MustCompile(`(?i)\bcro\b`), "CRO"},
	{regexp.MustCompile(`(?i)\bchro\b`), "CHRO"},
	{regexp.MustCompile(`(?i)\bvice\s+president\b`), "VP"},
	{regexp.MustCompile(`(?i)\bvp\b`), "VP"},
	{regexp.MustCompile(`(?i)\bco[\s-]?founder\b`), "Founder"},
	{regexp.MustCompile(`(?i)\bfounder\b`), "Founder"},
}

// CanonicalRole maps a free-text title to its canonical role name, if any
// alias rule fires. Exposed so callers can canonicalize titles for display
// without running a full profile match.
func CanonicalRole(title string) (string, bool) {
	for _, rule := range aliasRules {
		if rule.pattern.MatchString(title) {
			return rule.canonical, true
		}
	}
	return "", false
}
