package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanFile(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", bracketRules)

	out, err := execute(t, nil, "validate", ruleFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All rules valid")
}

func TestValidate_CleanFileJSON(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", bracketRules)

	out, err := execute(t, nil, "validate", ruleFile, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidate_BadPattern(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "!(\tx\n")

	out, err := execute(t, nil, "validate", ruleFile)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "R101")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	rules := "!(\tx\n" + // bad pattern
		"garbage line\n" + // malformed declaration
		"!a\t\\2\n" // undefined group reference
	ruleFile := writeFile(t, dir, "rules.rpp", rules)

	out, err := execute(t, nil, "validate", ruleFile, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 3)

	codes := make([]string, 0, len(resp.Data.Errors))
	for _, issue := range resp.Data.Errors {
		codes = append(codes, issue.Code)
	}
	assert.Equal(t, []string{"R101", "R103", "R102"}, codes)

	require.NotNil(t, resp.Error)
	assert.Equal(t, "R101", resp.Error.Code)
}

func TestValidate_ReportsFileAndLine(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "; comment\n!(\tx\n")

	out, err := execute(t, nil, "validate", ruleFile)
	require.Error(t, err)
	assert.Contains(t, out, ruleFile+":2")
}

func TestValidate_MissingFile(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, nil, "validate", dir+"/no-such.rpp")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, strings.Contains(out, "✗ Validation failed"))
}
