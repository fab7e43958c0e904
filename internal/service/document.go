package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"docuvault/internal/model"
	"docuvault/internal/repository"
	"docuvault/internal/storage"
)

var (
	ErrIDRequired      = errors.New("id is required")
	ErrNotFound        = errors.New("document not found")
	ErrNameRequired    = errors.New("name is required")
	ErrBrandRequired   = errors.New("brand is required")
	ErrModelRequired   = errors.New("model is required")
	ErrFileRequired    = errors.New("file is required")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedMIME = errors.New("unsupported file type: allowed types are application/pdf, application/msword, application/vnd.openxmlformats-officedocument.wordprocessingml.document")
)

// MaxUploadBytes is the inclusive upper bound on uploaded file size.
const MaxUploadBytes = 250 * 1024 * 1024

// allowedMIMETypes are the document formats accepted for upload.
var allowedMIMETypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// DocumentInput carries caller-supplied document metadata.
type DocumentInput struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Description string `json:"description"`

	// Set on the JSON create path, where the file was already uploaded
	// through a presigned URL.
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// UploadTicket is a presigned PUT URL bound to a freshly minted document id.
// The client uploads the bytes, then creates the document record with the
// public URL.
type UploadTicket struct {
	DocumentID string `json:"document_id"`
	SignedURL  string `json:"signed_url"`
	PublicURL  string `json:"public_url"`
	Key        string `json:"key"`
	ExpiresIn  int64  `json:"expires_in_seconds"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the content in object storage, saves metadata to the DB,
	// and rolls back the stored object if the DB save fails. Metadata and
	// file constraints are validated before any network call.
	Upload(ctx context.Context, in DocumentInput, content []byte, filename, contentType, uploadedBy string) (*model.Document, error)

	// Create records a document whose file was already uploaded through a
	// presigned URL; in.FileURL must be set.
	Create(ctx context.Context, in DocumentInput, uploadedBy string) (*model.Document, error)

	// Get returns a single live document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Search matches name, brand, or model case-insensitively.
	Search(ctx context.Context, term string, limit, offset int) (*DocumentListResult, error)

	// Update persists mutable metadata fields.
	Update(ctx context.Context, id string, in DocumentInput) (*model.Document, error)

	// Delete soft-deletes the record and best-effort deletes the object.
	Delete(ctx context.Context, id string) error

	// DownloadURL returns a time-limited GET URL for a document's file.
	DownloadURL(ctx context.Context, id string) (string, error)

	// UploadURL mints a document id and a time-limited PUT URL for it.
	UploadURL(ctx context.Context, contentType string) (*UploadTicket, error)
}

type documentService struct {
	store storage.Gateway
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(store storage.Gateway, repo repository.DocumentRepository) DocumentService {
	return &documentService{store: store, repo: repo}
}

func validateInput(in DocumentInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(in.Brand) == "" {
		return ErrBrandRequired
	}
	if strings.TrimSpace(in.Model) == "" {
		return ErrModelRequired
	}
	return nil
}

func validateFile(size int64, contentType string) error {
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	if !allowedMIMETypes[strings.ToLower(strings.TrimSpace(contentType))] {
		return ErrUnsupportedMIME
	}
	return nil
}

func (s *documentService) Upload(ctx context.Context, in DocumentInput, content []byte, filename, contentType, uploadedBy string) (*model.Document, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, ErrFileRequired
	}
	if err := validateFile(int64(len(content)), contentType); err != nil {
		return nil, err
	}
	if contentType == "application/pdf" && !bytes.HasPrefix(content, []byte("%PDF")) {
		// Declared type and magic bytes disagree; accept but record it.
		logEvent("documents", "pdf_magic_mismatch", map[string]any{
			"filename": filename,
		})
	}

	docID := uuid.New().String()
	obj, err := s.store.Store(ctx, content, docID, contentType, storage.StoreOptions{
		Filename: filename,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:          docID,
		Name:        strings.TrimSpace(in.Name),
		Brand:       strings.TrimSpace(in.Brand),
		Model:       strings.TrimSpace(in.Model),
		Description: strings.TrimSpace(in.Description),
		FileURL:     obj.URL,
		FileName:    filename,
		FileSize:    obj.Size,
		FileType:    obj.MimeType,
		UploadedBy:  uploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: remove the object so storage and DB stay consistent.
		if delErr := s.store.Delete(ctx, obj.Key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) Create(ctx context.Context, in DocumentInput, uploadedBy string) (*model.Document, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return nil, ErrFileRequired
	}
	if in.FileSize > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if in.FileType != "" {
		if !allowedMIMETypes[strings.ToLower(strings.TrimSpace(in.FileType))] {
			return nil, ErrUnsupportedMIME
		}
	}

	doc := &model.Document{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Brand:       strings.TrimSpace(in.Brand),
		Model:       strings.TrimSpace(in.Model),
		Description: strings.TrimSpace(in.Description),
		FileURL:     strings.TrimSpace(in.FileURL),
		FileName:    in.FileName,
		FileSize:    in.FileSize,
		FileType:    in.FileType,
		UploadedBy:  uploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Search(ctx context.Context, term string, limit, offset int) (*DocumentListResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx, limit, offset)
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.Search(ctx, term, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Update(ctx context.Context, id string, in DocumentInput) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	current.Name = strings.TrimSpace(in.Name)
	current.Brand = strings.TrimSpace(in.Brand)
	current.Model = strings.TrimSpace(in.Model)
	current.Description = strings.TrimSpace(in.Description)

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	// Soft delete first so the record disappears even when the object
	// delete fails; storage cleanup is best effort.
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if doc.FileURL != "" {
		if err := s.store.Delete(ctx, doc.FileURL); err != nil {
			logEvent("documents", "object_delete_failed", map[string]any{
				"document_id":   id,
				"error_message": err.Error(),
			})
		}
	}
	return nil
}

func (s *documentService) DownloadURL(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if doc.FileURL == "" {
		return "", ErrFileRequired
	}
	return s.store.PresignDownload(ctx, doc.FileURL, 0)
}

func (s *documentService) UploadURL(ctx context.Context, contentType string) (*UploadTicket, error) {
	if !allowedMIMETypes[strings.ToLower(strings.TrimSpace(contentType))] {
		return nil, ErrUnsupportedMIME
	}

	docID := uuid.New().String()
	presigned, err := s.store.PresignUpload(ctx, docID, contentType, storage.PresignOptions{})
	if err != nil {
		return nil, err
	}
	return &UploadTicket{
		DocumentID: docID,
		SignedURL:  presigned.SignedURL,
		PublicURL:  presigned.PublicURL,
		Key:        presigned.Key,
		ExpiresIn:  int64(presigned.ExpiresIn.Seconds()),
	}, nil
}
