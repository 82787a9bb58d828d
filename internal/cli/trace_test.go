package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_TextOutput(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "!foo\tbar\n")

	out, err := execute(t, nil, "trace", ruleFile, "foo baz")
	require.NoError(t, err)

	assert.Contains(t, out, "=== Timeline ===")
	assert.Contains(t, out, "=== Result ===")
	assert.Contains(t, out, "=== Stats ===")
	assert.Contains(t, out, `"bar baz"`)
	assert.Contains(t, out, "!foo")
}

func TestTrace_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "!foo\tbar\n")

	out, err := execute(t, nil, "trace", ruleFile, "foo", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "foo", resp.Data.Input)
	assert.Equal(t, "bar", resp.Data.Output)
	require.NotEmpty(t, resp.Data.Timeline)
	assert.True(t, resp.Data.Timeline[0].Applied)
	assert.Equal(t, "foo", resp.Data.Timeline[0].Input)
	assert.Equal(t, "bar", resp.Data.Timeline[0].Output)
	assert.Equal(t, resp.Data.Stats.TotalSteps, resp.Data.Stats.Applied+resp.Data.Stats.Skipped)
}

func TestTrace_SkippedStepsHiddenByDefault(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "!foo\tbar\n!xyz\tabc\n")

	out, err := execute(t, nil, "trace", ruleFile, "foo", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Zero(t, resp.Data.Stats.Skipped)

	out, err = execute(t, nil, "trace", ruleFile, "foo", "--all", "--format", "json")
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotZero(t, resp.Data.Stats.Skipped)
}

func TestTrace_NoMatch(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "!foo\tbar\n")

	out, err := execute(t, nil, "trace", ruleFile, "nothing here", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "nothing here", resp.Data.Output)
	assert.Zero(t, resp.Data.Stats.Applied)
}

func TestTrace_BadRuleFileIsCommandError(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "!(\tx\n")

	_, err := execute(t, nil, "trace", ruleFile, "text")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
