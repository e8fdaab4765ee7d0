package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("{}"), 0o644))
	}
}

func TestPickFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, "b.yaml", "a.json", "notes.txt", "c.toml")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	var out bytes.Buffer
	got, err := pickFile(strings.NewReader("2\n"), &out, dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.yaml"), got)
	assert.Contains(t, out.String(), "1) a.json")
	assert.Contains(t, out.String(), "3) c.toml")
	assert.NotContains(t, out.String(), "notes.txt")
	assert.NotContains(t, out.String(), "nested.json")
}

func TestPickFile_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, "a.json")

	tests := []struct {
		name  string
		input string
	}{
		{"out of range", "2\n"},
		{"not a number", "first\n"},
		{"zero", "0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pickFile(strings.NewReader(tt.input), &bytes.Buffer{}, dir)
			assert.Error(t, err)
		})
	}

	_, err := pickFile(strings.NewReader(""), &bytes.Buffer{}, dir)
	assert.ErrorIs(t, err, errNoSelection)

	_, err = pickFile(strings.NewReader("1\n"), &bytes.Buffer{}, t.TempDir())
	assert.Error(t, err, "empty directory")
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	got := renderTable(&buf, []string{"Lesson", "Items"}, [][]string{{"101", "4"}, {"102"}}, []columnAlignment{alignRight, alignRight})

	assert.Contains(t, got, "LESSON")
	assert.Contains(t, got, "101")
	assert.True(t, strings.HasPrefix(got, "+"), "plain style off a terminal")
	assert.Empty(t, renderTable(&buf, nil, nil, nil))
}
