package driver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommandRespectsQuotes(t *testing.T) {
	got := splitCommand(`/usr/bin/env "arg with spaces" plain`)
	assert.Equal(t, []string{"/usr/bin/env", "arg with spaces", "plain"}, got)
}

func TestSplitCommandRespectsSingleQuotes(t *testing.T) {
	got := splitCommand(`sh -c 'echo hi'`)
	assert.Equal(t, []string{"sh", "-c", "echo hi"}, got)
}

func TestSplitCommandEmptyString(t *testing.T) {
	assert.Empty(t, splitCommand(""))
	assert.Empty(t, splitCommand("   "))
}

func TestProcessWriteLineReadLineRoundTrip(t *testing.T) {
	var out strings.Builder
	p, cancel, err := Start(context.Background(), "/bin/cat", 2*time.Second, &out)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, p.WriteLine("hello"))
	got, err := p.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	result := p.Wait(context.Background())
	assert.Equal(t, OutcomeOK, result.Outcome)
	assert.Equal(t, 0, result.ExitCode)
}

func TestProcessPrintAndPrintln(t *testing.T) {
	var out strings.Builder
	p, cancel, err := Start(context.Background(), "/bin/cat", 2*time.Second, &out)
	require.NoError(t, err)
	defer cancel()

	p.Print("a")
	p.Println("b")
	assert.Equal(t, "ab\n", out.String())

	p.Wait(context.Background())
}

func TestStartCommandNotFound(t *testing.T) {
	var out strings.Builder
	_, cancel, err := Start(context.Background(), "/no/such/executable-xyz", time.Second, &out)
	require.Error(t, err)
	if cancel != nil {
		cancel()
	}
	assert.Equal(t, OutcomeCommandNotFound, StartOutcome(err))
}

func TestStartEmptyCommand(t *testing.T) {
	var out strings.Builder
	_, cancel, err := Start(context.Background(), "", time.Second, &out)
	require.Error(t, err)
	if cancel != nil {
		cancel()
	}
}

func TestProcessNonZeroExit(t *testing.T) {
	var out strings.Builder
	p, cancel, err := Start(context.Background(), "/bin/false", 2*time.Second, &out)
	require.NoError(t, err)
	defer cancel()

	result := p.Wait(context.Background())
	assert.Equal(t, OutcomeNonZeroExit, result.Outcome)
	assert.NotEqual(t, 0, result.ExitCode)
}

func TestProcessTimeout(t *testing.T) {
	var out strings.Builder
	p, cancel, err := Start(context.Background(), "/bin/sleep 5", 50*time.Millisecond, &out)
	require.NoError(t, err)
	defer cancel()

	result := p.Wait(context.Background())
	assert.Equal(t, OutcomeTimeout, result.Outcome)
}

func TestOutcomeStringsAreHumanReadable(t *testing.T) {
	cases := map[Outcome]string{
		OutcomeOK:              "ok",
		OutcomeCommandNotFound: "command not found",
		OutcomePermissionDenied: "permission denied",
		OutcomeNonZeroExit:     "non-zero exit",
		OutcomeTimeout:         "timeout",
		OutcomeIOMismatch:      "input/output mismatch",
	}
	for outcome, want := range cases {
		assert.Equal(t, want, outcome.String())
	}
}
