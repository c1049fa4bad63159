package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckValidConfigWithSelection(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := check(strings.NewReader(`[{"quantity":5,"discount":10},{"quantity":10,"discount":20}]`), &stdout, &stderr, 7)
	require.Equal(t, 0, code)
	require.Empty(t, stderr.String())

	var out struct {
		Tiers     []map[string]any `json:"tiers"`
		Selection []struct {
			Policy string         `json:"policy"`
			Tier   map[string]any `json:"tier"`
		} `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out.Tiers, 2)
	require.Len(t, out.Selection, 2)
	require.Equal(t, "exact", out.Selection[0].Policy)
	require.Nil(t, out.Selection[0].Tier)
	require.Equal(t, "best_match", out.Selection[1].Policy)
	require.Equal(t, "10", out.Selection[1].Tier["discount"])
}

func TestCheckInvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := check(strings.NewReader(`[{"quantity":0,"discount":10}]`), &stdout, &stderr, 0)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "INVALID")
	require.Empty(t, stdout.String())
}

func TestRunReadsFileArgument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"quantity":2,"discount":5}]`), 0o600))
	require.Equal(t, 0, run(path, 0))

	require.Equal(t, 2, run(filepath.Join(t.TempDir(), "missing.json"), 0))
}
