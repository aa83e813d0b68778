package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditor_SaveJSON(t *testing.T) {
	dir := t.TempDir()
	auditor := NewAuditor(dir)

	filename, err := auditor.SaveJSON(map[string]any{
		"title":  "Dune",
		"author": "Frank Herbert",
	})
	require.NoError(t, err)
	assert.Contains(t, filename, ".json")

	data, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Dune", decoded["title"])
}

func TestAuditor_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audit")
	auditor := NewAuditor(dir)

	_, err := auditor.SaveJSON([]string{"snapshot"})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestAuditor_UniqueFilenames(t *testing.T) {
	auditor := NewAuditor(t.TempDir())

	a, err := auditor.SaveJSON("one")
	require.NoError(t, err)
	b, err := auditor.SaveJSON("two")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
