package templates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dfaua/papooga-reach/internal/model"
)

// Versioner spawns new template versions and flips the is_current flag.
// IDs and timestamps are injected so tests stay deterministic.
type Versioner struct {
	IDs model.IDGenerator
	Now func() time.Time
}

// NewVersioner creates a Versioner with production defaults.
func NewVersioner(ids model.IDGenerator) *Versioner {
	return &Versioner{IDs: ids, Now: time.Now}
}

// Iterate deactivates the given template and returns a fresh version of it:
// same profile, kind, sequence, content, and notes, is_current true, and a
// name with the trailing version marker bumped.
//
// Both returned records must be persisted by the caller; Iterate itself
// mutates nothing. Identity is preserved: the old row keeps its ID, the new
// row gets a new one.
func (v *Versioner) Iterate(t model.Template) (deactivated, created model.Template) {
	deactivated = t
	deactivated.IsCurrent = false

	created = t
	created.ID = v.IDs.NewID()
	created.Name = bumpVersion(t.Name)
	created.IsCurrent = true
	created.CreatedAt = v.Now()
	if t.SequenceNumber != nil {
		seq := *t.SequenceNumber
		created.SequenceNumber = &seq
	}
	return deactivated, created
}

// ToggleCurrent flips is_current and nothing else. Deliberately no
// cascading deactivation of sibling templates: operators may legitimately
// hold more than one current row, and resolution handles that (see
// package doc).
func (v *Versioner) ToggleCurrent(t model.Template) model.Template {
	t.IsCurrent = !t.IsCurrent
	return t
}

// versionSuffix matches a trailing version marker: "v" plus digits at the
// end of the name, case-insensitive, tolerant of surrounding whitespace.
// The word boundary keeps names like "Improv2" from being treated as
// versioned.
var versionSuffix = regexp.MustCompile(`(?i)\bv(\d+)\s*$`)

// bumpVersion increments a trailing v<N> marker, or appends " v2" when the
// name carries none. Pure string transformation, no numeric ceiling, and
// stable under repeated application: bumping "X v2" always yields "X v3".
func bumpVersion(name string) string {
	loc := versionSuffix.FindStringSubmatchIndex(name)
	if loc == nil {
		base := strings.TrimRight(name, " \t")
		if base == "" {
			return "v2"
		}
		return base + " v2"
	}

	n, err := strconv.Atoi(name[loc[2]:loc[3]])
	if err != nil {
		// Digits too large for int; extremely unlikely, treat as unversioned.
		return strings.TrimRight(name, " \t") + " v2"
	}

	base := strings.TrimRight(name[:loc[0]], " \t")
	if base == "" {
		return fmt.Sprintf("v%d", n+1)
	}
	return fmt.Sprintf("%s v%d", base, n+1)
}
