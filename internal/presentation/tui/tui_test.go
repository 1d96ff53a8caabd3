package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(0)
	out, err := render("Is **12/05/1990** your date of birth?")
	require.NoError(t, err)
	assert.Contains(t, out, "12/05/1990")
}

func TestIsInteractive(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsInteractive(f))
	assert.False(t, IsInteractive(nil))
	assert.Equal(t, defaultWidth, Width(f))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v0.1.0")
	assert.Contains(t, buf.String(), "v0.1.0")
}
