package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/locvowork/billgen/internal/bootstrap"
	"github.com/locvowork/billgen/internal/config"
	"github.com/locvowork/billgen/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_FirstRunExitsWithPrompt(t *testing.T) {
	t.Cleanup(logger.Close)
	path := filepath.Join(t.TempDir(), config.DefaultFileName)

	var out bytes.Buffer
	err := run(context.Background(), &out, path, "", false)
	require.ErrorIs(t, err, errFirstRun)
	assert.Contains(t, out.String(), bootstrap.MsgInitialized)
	assert.FileExists(t, path)

	var prompt bytes.Buffer
	code := finish(err, false, strings.NewReader("\n"), &prompt)
	assert.Equal(t, 1, code)
	assert.Equal(t, msgPressKey+"\n", prompt.String())
}

func TestRun_BadSettingsShowsUserMessage(t *testing.T) {
	t.Cleanup(logger.Close)
	path := filepath.Join(t.TempDir(), config.DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("FIRST_ROW=десять\n"), 0o644))

	var out bytes.Buffer
	err := run(context.Background(), &out, path, "", false)
	require.Error(t, err)
	assert.Equal(t, fmt.Sprintf(bootstrap.MsgBadSettings, path)+"\n", out.String())
	assert.NotContains(t, out.String(), "FIRST_ROW")
}

func TestFinish(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		noWait     bool
		wantCode   int
		wantPrompt bool
	}{
		{"success", nil, false, 0, false},
		{"failure waits", errors.New("boom"), false, 1, true},
		{"failure without wait", errors.New("boom"), true, 1, false},
		{"first run waits", errFirstRun, false, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			code := finish(tt.err, tt.noWait, strings.NewReader(""), &out)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantPrompt, strings.Contains(out.String(), msgPressKey))
		})
	}
}
