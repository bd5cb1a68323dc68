package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, yaml string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(yaml))
	require.NoError(t, err)
	return s
}

func TestRun_SendAcceptFlow(t *testing.T) {
	s := mustParse(t, `
name: send-accept
description: draft, send, accept against a fresh store
profiles:
  - name: Executives
    roles:
      - CEO
    templates:
      - name: note
        kind: connection_note
        content: "Hi {first_name}, greetings from us."
contacts:
  - id: c-01
    first: Jane
    last: Doe
    title: CEO
    company: Acme
steps:
  - op: draft
    contact: c-01
  - op: send
    contact: c-01
  - op: accept
    contact: c-01
assertions:
  - type: state
    contact: c-01
    expect: CONNECTION_ACCEPTED_AWAITING_REPLY
  - type: queue
    contacts:
      - c-01
  - type: outcome
    contact: c-01
    expect: accepted
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Passed(), "unexpected failures: %v", result.Errors)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, "Hi Jane, greetings from us.", result.Trace[0].Content)
	assert.Equal(t, "requested", result.Trace[1].Status)
	assert.True(t, result.Trace[2].Advanced)
}

func TestRun_SequentialIDsAreStable(t *testing.T) {
	s := mustParse(t, `
name: stable-ids
description: two runs of the same scenario produce identical traces
profiles:
  - name: Executives
    roles:
      - CEO
    templates:
      - name: note
        kind: connection_note
        content: hello
contacts:
  - id: c-01
    title: CEO
    company: Acme
steps:
  - op: draft
    contact: c-01
  - op: send
    contact: c-01
assertions:
  - type: state
    contact: c-01
    expect: CONNECTION_SENT
`)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, "id-003", first.Trace[1].EventID)
	assert.Equal(t, "id-004", first.Trace[1].MessageID)
}

func TestRun_ExpectMismatchFailsResult(t *testing.T) {
	s := mustParse(t, `
name: expect-mismatch
description: a wrong tier expectation is reported, not fatal
profiles:
  - name: Executives
    roles:
      - CEO
    templates:
      - name: note
        kind: connection_note
        content: hello
contacts:
  - id: c-01
    title: CEO
    company: Acme
steps:
  - op: draft
    contact: c-01
    expect:
      tier: alias
assertions:
  - type: state
    contact: c-01
    expect: NOT_CONTACTED
`)

	result, err := Run(s)
	require.NoError(t, err)
	require.False(t, result.Passed())
	assert.Contains(t, result.Errors[0], `expected tier "alias"`)
}

func TestRun_UnexpectedDraftFailureFailsResult(t *testing.T) {
	s := mustParse(t, `
name: unexpected-failure
description: a draft failure without a matching expect fails the run
profiles:
  - name: Executives
    roles:
      - CEO
    templates:
      - name: note
        kind: connection_note
        content: hello
contacts:
  - id: c-02
    title: Gardener
    company: Acme
steps:
  - op: draft
    contact: c-02
assertions:
  - type: state
    contact: c-02
    expect: NOT_CONTACTED
`)

	result, err := Run(s)
	require.NoError(t, err)
	require.False(t, result.Passed())
	assert.Contains(t, result.Errors[0], "draft failed")

	require.Len(t, result.Trace, 1)
	assert.Equal(t, "no_profile_match", result.Trace[0].Error)
}

func TestRun_ExpectedDraftFailurePasses(t *testing.T) {
	s := mustParse(t, `
name: expected-failure
description: an expected draft failure is part of the flow
profiles:
  - name: Executives
    roles:
      - CEO
    templates:
      - name: note
        kind: connection_note
        content: hello
contacts:
  - id: c-02
    title: Gardener
    company: Acme
steps:
  - op: draft
    contact: c-02
    expect:
      error: no_profile_match
assertions:
  - type: state
    contact: c-02
    expect: NOT_CONTACTED
`)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Passed(), "unexpected failures: %v", result.Errors)
}

func TestRun_FailedAssertionReported(t *testing.T) {
	s := mustParse(t, `
name: failed-assertion
description: final-state assertions catch wrong expectations
profiles:
  - name: Executives
    roles:
      - CEO
    templates:
      - name: note
        kind: connection_note
        content: hello
contacts:
  - id: c-01
    title: CEO
    company: Acme
steps:
  - op: draft
    contact: c-01
assertions:
  - type: state
    contact: c-01
    expect: ENGAGED
`)

	result, err := Run(s)
	require.NoError(t, err)
	require.False(t, result.Passed())
	assert.Contains(t, result.Errors[0], "expected state ENGAGED")
}

func TestRun_SendWithoutDraftNeedsContent(t *testing.T) {
	s := mustParse(t, `
name: send-no-draft
description: sending with neither a prior draft nor explicit content is fatal
profiles:
  - name: Executives
    roles:
      - CEO
    templates:
      - name: note
        kind: connection_note
        content: hello
contacts:
  - id: c-01
    title: CEO
    company: Acme
steps:
  - op: send
    contact: c-01
assertions:
  - type: state
    contact: c-01
    expect: NOT_CONTACTED
`)

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no content")
}
