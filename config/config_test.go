package config

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 4000, config.Summarize.ChunkSize)
	assert.Equal(t, 8, config.Summarize.MaxPasses)
	assert.Equal(t, 3000, config.Scan.SnippetLimit)
	assert.Equal(t, 30*time.Second, config.Browser.ConnectTimeout)
	assert.Contains(t, config.Pages.RestrictedSchemes, "chrome")
	assert.Contains(t, config.Pages.RestrictedSchemes, "about")
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "zero chunk size",
			mutate:  func(c *Config) { c.Summarize.ChunkSize = 0 },
			wantErr: "chunk_size",
		},
		{
			name:    "negative max passes",
			mutate:  func(c *Config) { c.Summarize.MaxPasses = -1 },
			wantErr: "max_passes",
		},
		{
			name:    "zero snippet limit",
			mutate:  func(c *Config) { c.Scan.SnippetLimit = 0 },
			wantErr: "snippet_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{
		Browser: BrowserConfig{
			DebuggerURL: "ws://127.0.0.1:9222/devtools/browser/abc",
		},
		Summarize: SummarizeConfig{
			ChunkSize: 2000,
		},
		Pages: PagesConfig{
			Deny: []string{"https://bank.example.com/**"},
		},
	}

	base.Merge(overlay)

	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", base.Browser.DebuggerURL)
	assert.Equal(t, 2000, base.Summarize.ChunkSize)
	assert.Equal(t, []string{"https://bank.example.com/**"}, base.Pages.Deny)

	// Zero-valued overlay fields keep the base values.
	assert.Equal(t, 8, base.Summarize.MaxPasses)
	assert.Equal(t, 3000, base.Scan.SnippetLimit)
	assert.NotEmpty(t, base.Pages.RestrictedSchemes)
}

func TestMergeNil(t *testing.T) {
	base := DefaultConfig()
	base.Merge(nil)
	assert.Equal(t, DefaultConfig(), base)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panelprobe.yaml")
	content := `browser:
  headless: true
summarize:
  chunk_size: 1000
  max_passes: 3
pages:
  allow:
    - "https://example.com/**"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 1000, config.Summarize.ChunkSize)
	assert.Equal(t, 3, config.Summarize.MaxPasses)
	assert.Equal(t, []string{"https://example.com/**"}, config.Pages.Allow)

	// Unset fields fall back to defaults.
	assert.Equal(t, 3000, config.Scan.SnippetLimit)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	// The loader distinguishes an absent file from a broken one through the
	// wrapped error, so the sentinel must survive the wrapping.
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	loader := NewLoader(nil)
	require.NoError(t, loader.EnsureUserConfig())

	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	written, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), written)

	// An existing config is left alone.
	require.NoError(t, os.WriteFile(path, []byte("summarize:\n  chunk_size: 1234\n"), 0o644))
	require.NoError(t, loader.EnsureUserConfig())
	kept, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1234, kept.Summarize.ChunkSize)
}

func TestLoadFromFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("summarize: [not a map"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestSaveToFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	config := DefaultConfig()
	config.Browser.DebuggerURL = "ws://localhost:9222"
	config.Summarize.ChunkSize = 1234

	require.NoError(t, config.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:9222", loaded.Browser.DebuggerURL)
	assert.Equal(t, 1234, loaded.Summarize.ChunkSize)
}

func TestLoaderExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  snippet_limit: 500\n"), 0o644))

	loader := NewLoader(nil)
	config, err := loader.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, config.Scan.SnippetLimit)
}

func TestLoaderExplicitPathMissing(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panelprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("summarize:\n  chunk_size: 1000\n"), 0o644))

	watcher, err := NewWatcher(path, NewLoader(nil), WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("summarize:\n  chunk_size: 2000\n"), 0o644))

	select {
	case config := <-watcher.Reloads():
		assert.Equal(t, 2000, config.Summarize.ChunkSize)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcherKeepsPreviousOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panelprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("summarize:\n  chunk_size: 1000\n"), 0o644))

	watcher, err := NewWatcher(path, NewLoader(nil), WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte("summarize: [broken"), 0o644))

	select {
	case config := <-watcher.Reloads():
		t.Fatalf("unexpected reload with config %+v", config)
	case <-time.After(500 * time.Millisecond):
		// Invalid config is dropped, no event emitted.
	}
}
