package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	o := newOptions()
	cmd := newRootCmd(o)
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := execute(context.Background(), o, cmd)
	return out.String(), err
}

func writeConfig(t *testing.T, content string) string {
	filename := filepath.Join(t.TempDir(), "breedcache.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0644))
	return filename
}

func TestCountDefaultBreeds(t *testing.T) {
	out, err := run(t, "count", "--local")
	require.NoError(t, err)
	assert.Equal(t, "hound has 7 sub breeds\ncat has 0 sub breeds\n", out)
}

func TestCountWithSQLiteStore(t *testing.T) {
	out, err := run(t, "count", "--local", "--store", "sqlite", "Hound", "hound", "pug")
	require.NoError(t, err)
	assert.Equal(t, "Hound has 7 sub breeds\nhound has 7 sub breeds\npug has 0 sub breeds\n", out)
}

func TestCountFromAPI(t *testing.T) {
	var requests atomic.Int64
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/breed/terrier/list" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"message":["irish","welsh"],"status":"success"}`))
	}))
	defer api.Close()

	out, err := run(t, "count", "--base-url", api.URL, "terrier", "TERRIER", "cat")
	require.NoError(t, err)
	assert.Equal(t, "terrier has 2 sub breeds\nTERRIER has 2 sub breeds\ncat has 0 sub breeds\n", out)
	assert.EqualValues(t, 2, requests.Load())
}

func TestCountFromConfigFile(t *testing.T) {
	config := writeConfig(t, `
local: true
store: sqlite
breeds:
  - hound
  - terrier
`)
	out, err := run(t, "count", "--config", config)
	require.NoError(t, err)
	assert.Equal(t, "hound has 7 sub breeds\nterrier has 0 sub breeds\n", out)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	config := writeConfig(t, "store: nosuchstore\n")
	_, err := run(t, "count", "--config", config, "--local")
	assert.ErrorContains(t, err, "unsupported cache store")

	_, err = run(t, "count", "--config", config, "--local", "--store", "memory")
	assert.NoError(t, err)
}

func TestLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "breedcache.log")
	_, err := run(t, "count", "--local", "--vv", "--log-file", logFile, "hound")
	require.NoError(t, err)

	logs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "Cache miss, delegating")
	assert.Contains(t, string(logs), "Done counting")
}

func TestLogFileClosedWhenCommandFails(t *testing.T) {
	// keep the port busy so serve cannot listen on it
	l, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	logFile := filepath.Join(t.TempDir(), "breedcache.log")
	o := newOptions()
	cmd := newRootCmd(o)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"serve", "--local", "--port", strconv.Itoa(port), "--log-file", logFile})

	err = execute(context.Background(), o, cmd)
	require.Error(t, err)
	require.NotNil(t, o.logFile)
	_, err = o.logFile.WriteString("late write\n")
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "breedcache version:")
}
