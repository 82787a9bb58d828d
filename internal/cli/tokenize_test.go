package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/repp/internal/store"
)

func TestTokenize_TextOutput(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "!,\t , \n")

	out, err := execute(t, strings.NewReader("a,b\n"), "tokenize", ruleFile)
	require.NoError(t, err)

	assert.Contains(t, out, "a,b")
	assert.Contains(t, out, `(0, 0, 1, "a")`)
	assert.Contains(t, out, `(1, 1, 2, ",")`)
	assert.Contains(t, out, `(2, 2, 3, "b")`)
}

func TestTokenize_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "!,\t , \n")

	out, err := execute(t, strings.NewReader("a,b\n"), "tokenize", ruleFile, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   TokenizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Items, 1)

	item := resp.Data.Items[0]
	assert.Equal(t, "a,b", item.Input)
	assert.Equal(t, "a , b", item.Output)
	require.Len(t, item.Tokens, 3)
	assert.Equal(t, ",", item.Tokens[1].Form)
	assert.Equal(t, 1, item.Tokens[1].Span.From)
	assert.Equal(t, 2, item.Tokens[1].Span.To)
}

func TestTokenize_CustomSeparator(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "; identity\n")

	out, err := execute(t, strings.NewReader("a-b c\n"), "tokenize", ruleFile,
		"--separator", "-", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data TokenizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, []string{"a", "b c"}, resp.Data.Items[0].Tokens.Forms())
}

func TestTokenize_BadSeparatorIsCommandError(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "; identity\n")

	_, err := execute(t, strings.NewReader("a\n"), "tokenize", ruleFile, "--separator", "(")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTokenize_RecordsRun(t *testing.T) {
	dir := t.TempDir()
	ruleFile := writeFile(t, dir, "rules.rpp", "@test cascade\n!,\t , \n")
	dbPath := filepath.Join(dir, "runs.db")

	out, err := execute(t, strings.NewReader("a,b\nc\n"), "tokenize", ruleFile,
		"--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data TokenizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.RunID)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	run, err := st.ReadRun(ctx, resp.Data.RunID)
	require.NoError(t, err)
	assert.Equal(t, ruleFile, run.RuleFile)
	assert.Equal(t, "test cascade", run.Info)

	items, err := st.ReadItems(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a,b", items[0].Input)
	assert.Equal(t, "a , b", items[0].Output)
	assert.Equal(t, "c", items[1].Input)

	lattice, err := st.ReadTokens(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", ",", "b"}, lattice.Forms())
}
