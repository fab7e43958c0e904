package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// Package storage wraps an S3-compatible object store (Cloudflare R2, MinIO)
// behind a gateway that derives deterministic keys from document ids, issues
// time-limited presigned URLs, and returns stable public URLs for stored
// objects.

// Error taxonomy for storage operations. Failures wrap these sentinels and
// carry the operation plus key for diagnostics; provider credentials are
// never included.
var (
	ErrUploadFailed  = errors.New("upload failed")
	ErrPresignFailed = errors.New("presign failed")
	ErrDeleteFailed  = errors.New("delete failed")
)

// DefaultPrefix is the key prefix used when callers do not supply one.
const DefaultPrefix = "documents"

// DefaultPresignTTL bounds presigned URLs when no TTL is configured.
const DefaultPresignTTL = time.Hour

// StoreOptions are optional parameters for Store.
type StoreOptions struct {
	Prefix   string            // key prefix, DefaultPrefix when empty
	Filename string            // original client filename, recorded as metadata
	Metadata map[string]string // extra user metadata
}

// PresignOptions are optional parameters for PresignUpload.
type PresignOptions struct {
	Prefix string
	TTL    time.Duration // DefaultPresignTTL when zero
}

// StoredObject is the single result shape for a completed upload.
type StoredObject struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// PresignedUpload describes a capability URL the client can PUT bytes to,
// along with where the object will be publicly reachable afterwards.
type PresignedUpload struct {
	SignedURL string        `json:"signed_url"`
	PublicURL string        `json:"public_url"`
	Key       string        `json:"key"`
	ExpiresIn time.Duration `json:"expires_in"`
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Gateway is the object storage interface the rest of the system depends on.
// Implementations must be safe for concurrent use and constructed once per
// process. No operation retries automatically; retrying is the caller's
// responsibility.
type Gateway interface {
	// Store uploads content under a key derived from the document id and MIME
	// type. A single PUT is atomic from the caller's perspective; partial
	// uploads are never visible.
	Store(ctx context.Context, content []byte, docID, mimeType string, opt StoreOptions) (*StoredObject, error)

	// PresignUpload computes a time-limited PUT URL without touching storage.
	PresignUpload(ctx context.Context, docID, mimeType string, opt PresignOptions) (*PresignedUpload, error)

	// PresignDownload returns a time-limited GET URL for an existing key or
	// public URL. Object existence is deliberately not checked; the URL will
	// 404 when used if the key was never created.
	PresignDownload(ctx context.Context, urlOrKey string, ttl time.Duration) (string, error)

	// Delete removes an object by key or public URL. Deleting an absent key
	// is success, not an error.
	Delete(ctx context.Context, urlOrKey string) error

	// List returns up to max objects under the given prefix.
	List(ctx context.Context, prefix string, max int) ([]ObjectInfo, error)

	// Head returns stored metadata for a key.
	Head(ctx context.Context, key string) (*ObjectInfo, error)
}

// mimeExtensions maps MIME types to storage key extensions. Anything outside
// this table falls back to "bin" rather than trusting arbitrary subtypes in
// a path segment.
var mimeExtensions = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"text/plain": "txt",
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// ExtensionForMime returns the key extension for a MIME type, "bin" when
// unrecognized.
func ExtensionForMime(mimeType string) string {
	if ext, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return "bin"
}

// DeriveKey builds the deterministic object key {prefix}/{docID}.{ext}.
// The document id must be globally unique (a UUID); keys never embed
// timestamps, so concurrent uploads cannot collide.
func DeriveKey(prefix, docID, mimeType string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "/" + docID + "." + ExtensionForMime(mimeType)
}

// NormalizeKey turns either a public object URL or a raw key into a key. A
// known public base URL prefix is stripped first; any other absolute URL
// falls back to its path with the leading slash removed.
func NormalizeKey(urlOrKey, publicBaseURL string) string {
	if base := strings.TrimRight(publicBaseURL, "/"); base != "" {
		if rest, ok := strings.CutPrefix(urlOrKey, base+"/"); ok {
			return rest
		}
	}
	if strings.HasPrefix(urlOrKey, "http://") || strings.HasPrefix(urlOrKey, "https://") {
		if u, err := url.Parse(urlOrKey); err == nil {
			return strings.TrimPrefix(u.Path, "/")
		}
	}
	return urlOrKey
}
