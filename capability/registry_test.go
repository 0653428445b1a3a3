package capability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/panelprobe/host"
)

// fakeBinding is a host environment with a fixed set of bound paths.
type fakeBinding struct {
	paths   map[string]host.Handle
	lookups []string
}

func (b *fakeBinding) Lookup(_ context.Context, path string) (host.Handle, bool) {
	b.lookups = append(b.lookups, path)
	h, ok := b.paths[path]
	return h, ok
}

func TestResolve_NamespaceWins(t *testing.T) {
	nested := &fakeHandle{}
	top := &fakeHandle{}
	binding := &fakeBinding{paths: map[string]host.Handle{
		"ai.summarizer": nested,
		"Summarizer":    top,
	}}

	r := NewRegistry()
	d, ok := DescriptorByName("Summarizer")
	require.True(t, ok)

	got := r.Resolve(context.Background(), binding, d)
	require.True(t, got.Found())
	assert.Same(t, nested, got.Handle.(*fakeHandle))
	assert.Equal(t, "ai.summarizer", got.LocationPath)
}

func TestResolve_FallbackLocation(t *testing.T) {
	top := &fakeHandle{}
	binding := &fakeBinding{paths: map[string]host.Handle{
		"Summarizer": top,
	}}

	r := NewRegistry()
	d, _ := DescriptorByName("Summarizer")

	got := r.Resolve(context.Background(), binding, d)
	require.True(t, got.Found())
	assert.Equal(t, "Summarizer", got.LocationPath)
	// The namespaced location is tried first; a namespaced descriptor's key
	// is never probed top-level.
	assert.Equal(t, []string{"ai.summarizer", "Summarizer"}, binding.lookups)
}

func TestResolve_TopLevelForPlainDescriptor(t *testing.T) {
	binding := &fakeBinding{paths: map[string]host.Handle{
		"Translator": &fakeHandle{},
	}}

	r := NewRegistry()
	d, _ := DescriptorByName("Translator")

	got := r.Resolve(context.Background(), binding, d)
	require.True(t, got.Found())
	assert.Equal(t, "Translator", got.LocationPath)
	// No "ai" namespace rule applies to Translator.
	assert.Equal(t, []string{"Translator"}, binding.lookups)
}

func TestResolve_NotFound(t *testing.T) {
	binding := &fakeBinding{paths: map[string]host.Handle{}}

	r := NewRegistry()
	d, _ := DescriptorByName("Writer")

	got := r.Resolve(context.Background(), binding, d)
	assert.False(t, got.Found())
	assert.Equal(t, "", got.LocationPath)
}

func TestDescriptors_CoverAllCapabilities(t *testing.T) {
	names := make(map[string]bool)
	for _, d := range Descriptors() {
		names[d.Name] = true
		assert.NotEmpty(t, d.Key)
	}
	for _, want := range []string{"Prompt", "Summarizer", "Translator", "Language Detector", "Writer", "Rewriter"} {
		assert.True(t, names[want], "missing descriptor %s", want)
	}
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status        Status
		usable        bool
		needsDownload bool
	}{
		{StatusReadily, true, false},
		{StatusAvailable, true, false},
		{StatusAvailableObject, true, false},
		{StatusUnknownMethods, true, false},
		{StatusDownloadable, false, true},
		{StatusAfterDownload, false, true},
		{StatusUnavailable, false, false},
		{StatusNoHandle, false, false},
		{StatusError, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.usable, tt.status.Usable())
			assert.Equal(t, tt.needsDownload, tt.status.NeedsDownload())
		})
	}
}
