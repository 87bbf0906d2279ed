package attach

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// fakeFetcher serves attachments from a map and records which IDs were
// actually fetched.
type fakeFetcher struct {
	content map[string][]byte
	media   map[string]string
	fail    map[string]bool
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, _, attachmentID string) (string, []byte, error) {
	f.fetched = append(f.fetched, attachmentID)
	if f.fail[attachmentID] {
		return "", nil, errors.New("storage unavailable")
	}
	content, ok := f.content[attachmentID]
	if !ok {
		return "", nil, ErrNotFound
	}
	return f.media[attachmentID], content, nil
}

func TestResolveReplacesAllOccurrences(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		content: map[string][]byte{"att1": []byte("pngbytes")},
		media:   map[string]string{"att1": "image/png"},
	}
	r := NewResolver(fetcher, zap.NewNop())

	body := `<img src="cid:logo.png"> and again <img src="cid:logo.png"> plus <img src="cid:missing.png">`
	manifest := []ManifestEntry{{ID: "att1", Filename: "logo.png", MediaType: "image/png"}}

	got := r.Resolve(context.Background(), "m1", body, manifest)

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pngbytes"))
	if strings.Contains(got, "cid:logo.png") {
		t.Errorf("unresolved logo reference left in body: %q", got)
	}
	if n := strings.Count(got, want); n != 2 {
		t.Errorf("inline references: got %d, want 2", n)
	}
	if !strings.Contains(got, "cid:missing.png") {
		t.Error("unmatched reference should be left untouched")
	}
	if len(fetcher.fetched) != 1 {
		t.Errorf("fetches: got %v, want one fetch of att1", fetcher.fetched)
	}
}

func TestResolveSkipsUnreferencedAttachments(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		content: map[string][]byte{"att1": []byte("huge download")},
		media:   map[string]string{"att1": "application/zip"},
	}
	r := NewResolver(fetcher, zap.NewNop())

	body := "<p>no inline references here</p>"
	manifest := []ManifestEntry{{ID: "att1", Filename: "archive.zip", MediaType: "application/zip"}}

	if got := r.Resolve(context.Background(), "m1", body, manifest); got != body {
		t.Errorf("body changed: %q", got)
	}
	if len(fetcher.fetched) != 0 {
		t.Errorf("unreferenced attachment was fetched: %v", fetcher.fetched)
	}
}

func TestResolveFetchFailureLeavesReference(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		content: map[string][]byte{"ok": []byte("x")},
		media:   map[string]string{"ok": "image/gif"},
		fail:    map[string]bool{"bad": true},
	}
	r := NewResolver(fetcher, zap.NewNop())

	body := `<img src="cid:bad.png"><img src="cid:ok.gif">`
	manifest := []ManifestEntry{
		{ID: "bad", Filename: "bad.png", MediaType: "image/png"},
		{ID: "ok", Filename: "ok.gif", MediaType: "image/gif"},
	}

	got := r.Resolve(context.Background(), "m1", body, manifest)
	if !strings.Contains(got, "cid:bad.png") {
		t.Error("failed fetch should leave its reference untouched")
	}
	if strings.Contains(got, "cid:ok.gif") {
		t.Error("other attachments should still resolve")
	}
}

func TestResolveSkipsNamelessEntries(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	r := NewResolver(fetcher, zap.NewNop())

	body := "cid:"
	manifest := []ManifestEntry{{ID: "att1", Filename: "", MediaType: "image/png"}}

	if got := r.Resolve(context.Background(), "m1", body, manifest); got != body {
		t.Errorf("body changed: %q", got)
	}
	if len(fetcher.fetched) != 0 {
		t.Errorf("nameless entry was fetched: %v", fetcher.fetched)
	}
}

func TestResolveDeterministic(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		content: map[string][]byte{"a": []byte("aaa"), "b": []byte("bbb")},
		media:   map[string]string{"a": "image/png", "b": "image/jpeg"},
	}
	r := NewResolver(fetcher, zap.NewNop())

	body := `cid:a.png cid:b.jpg`
	manifest := []ManifestEntry{
		{ID: "a", Filename: "a.png", MediaType: "image/png"},
		{ID: "b", Filename: "b.jpg", MediaType: "image/jpeg"},
	}

	first := r.Resolve(context.Background(), "m1", body, manifest)
	second := r.Resolve(context.Background(), "m1", body, manifest)
	if first != second {
		t.Errorf("resolution not deterministic:\n%q\n%q", first, second)
	}
}
