// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/spotfetch/spotfetch/internal/models"
	"github.com/spotfetch/spotfetch/internal/shared"
)

// FakeCatalog is a test double for services.Catalog backed by fixed maps.
// IDs absent from the maps yield [shared.ErrInvalidID]; a non-nil Err takes
// precedence over everything.
type FakeCatalog struct {
	Playlists map[string]*models.Snapshot
	Albums    map[string]*models.Snapshot
	Tracks    map[string]*models.Track
	Err       error
}

func (f *FakeCatalog) Playlist(_ context.Context, id string) (*models.Snapshot, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if snapshot, ok := f.Playlists[id]; ok {
		return snapshot, nil
	}
	return nil, shared.ErrInvalidID
}

func (f *FakeCatalog) Album(_ context.Context, id string) (*models.Snapshot, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if snapshot, ok := f.Albums[id]; ok {
		return snapshot, nil
	}
	return nil, shared.ErrInvalidID
}

func (f *FakeCatalog) Track(_ context.Context, id string) (*models.Track, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if track, ok := f.Tracks[id]; ok {
		return track, nil
	}
	return nil, shared.ErrInvalidID
}

// FakeResolver is a test double for services.TrackResolver. URLs maps a track
// name to its resolved URL; names absent from it yield [shared.ErrNoMatch].
// Downloads are recorded and materialized as small real files.
type FakeResolver struct {
	mu           sync.Mutex
	URLs         map[string]string
	ResolveCalls int
	Downloads    []string
	ResolveErr   error
	DownloadErr  error
}

func (f *FakeResolver) Resolve(_ context.Context, name, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResolveCalls++
	if f.ResolveErr != nil {
		return "", f.ResolveErr
	}
	if url, ok := f.URLs[name]; ok {
		return url, nil
	}
	return "", shared.ErrNoMatch
}

func (f *FakeResolver) Download(_ context.Context, url, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DownloadErr != nil {
		return f.DownloadErr
	}
	if err := os.WriteFile(dest, []byte("audio:"+url), 0644); err != nil {
		return err
	}
	f.Downloads = append(f.Downloads, dest)
	return nil
}

// SentText is one recorded outbound text reply.
type SentText struct {
	ChatID int64
	Text   string
}

// SentFile is one recorded outbound file attachment. Content is captured at
// send time because workflows delete the file afterwards.
type SentFile struct {
	ChatID      int64
	Path        string
	DisplayName string
	Content     []byte
}

// FakeSender records outbound traffic for assertions.
type FakeSender struct {
	mu    sync.Mutex
	Texts []SentText
	Files []SentFile
	Err   error
}

func (f *FakeSender) SendText(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Texts = append(f.Texts, SentText{ChatID: chatID, Text: text})
	return nil
}

func (f *FakeSender) SendFile(_ context.Context, chatID int64, path, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.Files = append(f.Files, SentFile{ChatID: chatID, Path: path, DisplayName: displayName, Content: content})
	return nil
}

// LastText returns the most recent text reply, or nil.
func (f *FakeSender) LastText() *SentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Texts) == 0 {
		return nil
	}
	return &f.Texts[len(f.Texts)-1]
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// ErrTransient is a reusable stand-in for a transient collaborator failure.
var ErrTransient = errors.New("transient failure")

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileGone(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File still exists: %s", path)
	}
}
