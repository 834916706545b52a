package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ipguard/pkg/domain-errors"
	"ipguard/pkg/secrets"
	"ipguard/pkg/testutil"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := "log_level: error\n" +
		"storage:\n  type: file\n  file:\n    path: " + filepath.Join(dir, "trusted.yml") + "\n" +
		"notifications:\n  log: false\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTrustCommands(t *testing.T) {
	cfg := writeConfig(t)
	p := testutil.TestIDs.Principal1.String()

	out, err := run(t, "--config", cfg, "trust", "set", p, testutil.TrustedAddr)
	require.NoError(t, err)
	assert.Equal(t, p+"\t"+testutil.TrustedAddr+"\n", out)

	out, err = run(t, "--config", cfg, "trust", "get", p)
	require.NoError(t, err)
	assert.Contains(t, out, testutil.TrustedAddr)

	_, err = run(t, "--config", cfg, "trust", "remove", p)
	require.NoError(t, err)

	_, err = run(t, "--config", cfg, "trust", "get", p)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = run(t, "--config", cfg, "trust", "set", p, "not-an-ip")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestConfigShow(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "config", "show", "--json")
	require.NoError(t, err)

	var body struct {
		Path       string `json:"path"`
		Attributes []struct {
			Name   string `json:"name"`
			Value  string `json:"value"`
			Source string `json:"source"`
		} `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, cfg, body.Path)

	values := map[string]string{}
	for _, a := range body.Attributes {
		values[a.Name] = a.Value
	}
	assert.Equal(t, "file", values["storage.type"])
	assert.Equal(t, "error", values["log_level"])
}

func TestSecretCommand(t *testing.T) {
	out, err := run(t, "secret", "--hash")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.NoError(t, secrets.Verify(lines[0], lines[1]))
}

func TestCloseAfter(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("closers wait for the engine", func(t *testing.T) {
		done := make(chan struct{})
		var order []string
		var mu sync.Mutex
		record := func(name string) func(context.Context) error {
			return func(context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			}
		}

		result := make(chan error, 1)
		go func() {
			result <- closeAfter(context.Background(), done, log, record("dispatcher"), record("sinks"))
		}()

		go func() {
			mu.Lock()
			order = append(order, "engine")
			mu.Unlock()
			close(done)
		}()

		require.NoError(t, <-result)
		assert.Equal(t, []string{"engine", "dispatcher", "sinks"}, order)
	})

	t.Run("deadline closes anyway and joins errors", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		boom := errors.New("boom")

		err := closeAfter(ctx, make(chan struct{}), log,
			func(context.Context) error { return boom },
			func(context.Context) error { return nil },
		)
		assert.ErrorIs(t, err, boom)
	})
}
