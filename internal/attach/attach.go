// Package attach resolves cid: references in a stored message body to
// inline data URIs, fetching attachment bytes on demand.
package attach

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrNotFound is returned by a Fetcher when the requested attachment does
// not exist.
var ErrNotFound = errors.New("attachment not found")

// ManifestEntry identifies one attachment of a message without its bytes.
type ManifestEntry struct {
	ID        string
	Filename  string
	MediaType string
}

// Fetcher retrieves the bytes of a single attachment. Implementations
// return ErrNotFound when the (messageID, attachmentID) pair is unknown.
type Fetcher interface {
	Fetch(ctx context.Context, messageID, attachmentID string) (mediaType string, content []byte, err error)
}

// Resolver rewrites cid: references against an attachment manifest.
type Resolver struct {
	fetcher Fetcher
	log     *zap.Logger
}

func NewResolver(fetcher Fetcher, log *zap.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, log: log}
}

// Resolve replaces every occurrence of "cid:<filename>" in body with a data
// URI carrying the attachment's bytes, for each manifest entry whose
// filename is referenced. Attachments that are not referenced are never
// fetched; a failed fetch leaves that entry's references untouched and does
// not affect the others.
func (r *Resolver) Resolve(ctx context.Context, messageID, body string, manifest []ManifestEntry) string {
	for _, entry := range manifest {
		if entry.Filename == "" {
			continue
		}
		token := "cid:" + entry.Filename
		if !strings.Contains(body, token) {
			continue
		}

		mediaType, content, err := r.fetcher.Fetch(ctx, messageID, entry.ID)
		if err != nil {
			r.log.Warn("failed to fetch inline attachment, leaving reference unresolved",
				zap.String("message_id", messageID),
				zap.String("attachment_id", entry.ID),
				zap.Error(err))
			continue
		}

		uri := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(content)
		body = strings.ReplaceAll(body, token, uri)
	}
	return body
}
