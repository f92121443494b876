package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugGatedByMode(t *testing.T) {
	var file, stderr bytes.Buffer
	SetOutput(&file, &stderr)
	t.Cleanup(func() { SetOutput(nil, os.Stderr); SetDebugMode(false) })

	SetDebugMode(false)
	Debug("hidden")
	assert.Empty(t, file.String())

	SetDebugMode(true)
	assert.True(t, IsDebugMode())
	Debug("branch lookup timed out")
	assert.Contains(t, file.String(), "[DEBUG] branch lookup timed out")
	assert.Empty(t, stderr.String())
}

func TestErrorMirrorsToStderr(t *testing.T) {
	var file, stderr bytes.Buffer
	SetOutput(&file, &stderr)
	t.Cleanup(func() { SetOutput(nil, os.Stderr) })

	Error("bad payload")
	assert.Contains(t, file.String(), "[ERROR] bad payload")
	assert.Contains(t, stderr.String(), "[ERROR] bad payload")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cc-statusline.log")
	Init(path, false)
	t.Cleanup(func() { SetOutput(nil, os.Stderr) })

	Info("started")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] started")
}
