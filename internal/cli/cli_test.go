package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/course-plan/internal/logger"
)

func fixtureServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	page, err := os.ReadFile("../../testdata/fixtures/programplan.html")
	require.NoError(t, err, "failed to load test fixture")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page) // nolint:errcheck
	}))
	t.Cleanup(server.Close)
	return server
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	previous := logger.Default()
	t.Cleanup(func() { logger.SetDefault(previous) })

	var stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stderr.String(), err
}

func TestRun_EndToEnd(t *testing.T) {
	var hits int32
	server := fixtureServer(t, &hits)
	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "courses.html")
	output := filepath.Join(dir, "courses.csv")

	logs, err := runCmd(t, "--cache-file", cacheFile, "--output", output, server.URL)
	require.NoError(t, err, logs)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.FileExists(t, cacheFile)
	assert.Contains(t, logs, `"Phase finished"`)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\r\n"), "\r\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "Kurskod\tNamn\tHp"))
	assert.True(t, strings.HasPrefix(lines[1], "TATA24\t"))
	assert.True(t, strings.HasPrefix(lines[2], "TDDE10\t"))
	assert.Contains(t, lines[3], "\tAI och maskininlärning,Datorsystem\t")
	assert.True(t, strings.HasPrefix(lines[5], "TSEA44\t"))

	// A second run reuses the cache.
	_, err = runCmd(t, "--cache-file", cacheFile, "--output", output, server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	// --refresh downloads again.
	_, err = runCmd(t, "--cache-file", cacheFile, "--output", output, "--refresh", server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRun_ConfigFile(t *testing.T) {
	var hits int32
	server := fixtureServer(t, &hits)
	dir := t.TempDir()

	configPath := filepath.Join(dir, "course-plan.yaml")
	config := "cache:\n  file: " + filepath.Join(dir, "page.html") + "\n" +
		"output:\n  file: " + filepath.Join(dir, "from-config.json") + "\n  format: json\n"
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0644))

	override := filepath.Join(dir, "from-flag.json")
	logs, err := runCmd(t, "--config", configPath, "--output", override, server.URL)
	require.NoError(t, err, logs)

	assert.FileExists(t, filepath.Join(dir, "page.html"))
	assert.NoFileExists(t, filepath.Join(dir, "from-config.json"))

	data, err := os.ReadFile(override)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(data)), "["))
	assert.Contains(t, string(data), `"code": "TDDE01"`)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		setup   func(t *testing.T)
		wantErr string
	}{
		{
			name:    "no url",
			args:    []string{},
			wantErr: "accepts 1 arg",
		},
		{
			name:    "too many args",
			args:    []string{"https://a.example", "https://b.example"},
			wantErr: "accepts 1 arg",
		},
		{
			name:    "invalid format",
			args:    []string{"--format", "xlsx", "https://a.example"},
			wantErr: "invalid output.format",
		},
		{
			name:    "missing config file",
			args:    []string{"--config", filepath.Join(dir, "nope.yaml"), "https://a.example"},
			wantErr: "failed to read config file",
		},
		{
			name: "page without program plan",
			args: []string{
				"--cache-file", filepath.Join(dir, "broken.html"),
				"--output", filepath.Join(dir, "broken.csv"),
				"https://a.example",
			},
			setup: func(t *testing.T) {
				page := `<html><body><select class="field-of-study-filter"></select></body></html>`
				require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.html"), []byte(page), 0644))
			},
			wantErr: "extracting course plan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup(t)
			}
			_, err := runCmd(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.NoFileExists(t, filepath.Join(dir, "broken.csv"), "no partial output on structural errors")
}

func TestRun_DownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	dir := t.TempDir()
	_, err := runCmd(t,
		"--cache-file", filepath.Join(dir, "courses.html"),
		"--output", filepath.Join(dir, "courses.csv"),
		server.URL,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 410")
	assert.NoFileExists(t, filepath.Join(dir, "courses.html"))
}

func TestReportError(t *testing.T) {
	previous := logger.Default()
	defer logger.SetDefault(previous)

	var buf bytes.Buffer
	logger.SetDefault(logger.New(logger.LevelInfo, &buf))

	reportError(errors.New("extracting course plan: no div.programplan element"))

	var entry logger.LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "Run failed", entry.Message)
	assert.Equal(t, "extracting course plan: no div.programplan element", entry.Error)
}

func TestRun_RefreshWithFailedDownloadRemovesCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dir := t.TempDir()
	cacheFile := filepath.Join(dir, "courses.html")
	require.NoError(t, os.WriteFile(cacheFile, []byte("<html></html>"), 0644))

	logs, err := runCmd(t, "--cache-file", cacheFile, "--output", filepath.Join(dir, "courses.csv"), "--refresh", server.URL)
	require.Error(t, err)
	assert.Contains(t, logs, `"Discarding cached page"`)
	assert.NoFileExists(t, cacheFile)
}
