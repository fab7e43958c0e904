package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docuvault/internal/config"
)

// r2Gateway implements the Gateway interface against any S3-compatible
// backend (Cloudflare R2, MinIO, AWS S3). It is safe for concurrent use by
// multiple goroutines.
type r2Gateway struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	presignTTL    time.Duration
}

// NewR2 creates the object storage gateway. It validates configuration,
// checks connectivity, and ensures the bucket exists (creates it if missing).
func NewR2(cfg config.StorageConfig) (Gateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: "auto", // R2 only knows the "auto" region
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	ttl := DefaultPresignTTL
	if cfg.PresignTTLSec > 0 {
		ttl = time.Duration(cfg.PresignTTLSec) * time.Second
	}

	g := &r2Gateway{
		client:        cli,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		presignTTL:    ttl,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Ensure bucket exists.
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return g, nil
}

func (g *r2Gateway) publicURL(key string) string {
	return g.publicBaseURL + "/" + key
}

// Store uploads the buffer in a single PUT with content type and user
// metadata attached.
func (g *r2Gateway) Store(ctx context.Context, content []byte, docID, mimeType string, opt StoreOptions) (*StoredObject, error) {
	key := DeriveKey(opt.Prefix, docID, mimeType)

	meta := map[string]string{
		"uploaded-at": time.Now().UTC().Format(time.RFC3339),
		"document-id": docID,
	}
	if opt.Filename != "" {
		meta["original-filename"] = opt.Filename
	}
	for k, v := range opt.Metadata {
		meta[k] = v
	}

	_, err := g.client.PutObject(ctx, g.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:  mimeType,
		UserMetadata: meta,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put %q: %v", ErrUploadFailed, key, err)
	}

	return &StoredObject{
		URL:      g.publicURL(key),
		Key:      key,
		Size:     int64(len(content)),
		MimeType: mimeType,
	}, nil
}

// PresignUpload is a pure signed-capability computation; it never touches
// the bucket.
func (g *r2Gateway) PresignUpload(ctx context.Context, docID, mimeType string, opt PresignOptions) (*PresignedUpload, error) {
	key := DeriveKey(opt.Prefix, docID, mimeType)

	ttl := opt.TTL
	if ttl <= 0 {
		ttl = g.presignTTL
	}

	u, err := g.client.PresignedPutObject(ctx, g.bucket, key, ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: put %q: %v", ErrPresignFailed, key, err)
	}

	return &PresignedUpload{
		SignedURL: u.String(),
		PublicURL: g.publicURL(key),
		Key:       key,
		ExpiresIn: ttl,
	}, nil
}

// PresignDownload signs a GET URL for the key without checking that the
// object exists.
func (g *r2Gateway) PresignDownload(ctx context.Context, urlOrKey string, ttl time.Duration) (string, error) {
	key := NormalizeKey(urlOrKey, g.publicBaseURL)
	if ttl <= 0 {
		ttl = g.presignTTL
	}

	u, err := g.client.PresignedGetObject(ctx, g.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: get %q: %v", ErrPresignFailed, key, err)
	}
	return u.String(), nil
}

// Delete removes an object; an already-absent key is treated as success.
func (g *r2Gateway) Delete(ctx context.Context, urlOrKey string) error {
	key := NormalizeKey(urlOrKey, g.publicBaseURL)
	if err := g.client.RemoveObject(ctx, g.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("%w: delete %q: %v", ErrDeleteFailed, key, err)
	}
	return nil
}

// List returns up to max objects under prefix.
func (g *r2Gateway) List(ctx context.Context, prefix string, max int) ([]ObjectInfo, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	opts := minio.ListObjectsOptions{Prefix: prefix, Recursive: true}

	var out []ObjectInfo
	for obj := range g.client.ListObjects(ctx, g.bucket, opts) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, nil
}

// Head returns the stored metadata for a key.
func (g *r2Gateway) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	st, err := g.client.StatObject(ctx, g.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, err
	}
	return &ObjectInfo{
		Key:          key,
		Size:         st.Size,
		ETag:         st.ETag,
		ContentType:  st.ContentType,
		LastModified: st.LastModified,
		Metadata:     st.UserMetadata,
	}, nil
}
