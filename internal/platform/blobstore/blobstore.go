// Package blobstore stores uploaded patient files and serves them back by
// public URL. It defines the Store interface, an in-memory implementation
// used in development and tests, and an Echo handler for downloads.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var (
	ErrFileNotFound       = errors.New("file not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrMissingFileName    = errors.New("file name is required")
)

// DefaultMaxFileSize is the fallback blob size cap (10 MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// AllowedContentTypes lists the file MIME types a clinic can attach to a
// patient record.
var AllowedContentTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"application/pdf": true,
	"text/plain":      true,
}

// FileMetadata describes a stored file.
type FileMetadata struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	PatientID   string    `json:"patient_id,omitempty"`
	Hash        string    `json:"hash"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Store is the contract for blob storage backends. Put returns the stored
// metadata with the public URL filled in.
type Store interface {
	Put(ctx context.Context, meta FileMetadata, content io.Reader) (*FileMetadata, error)
	Open(ctx context.Context, id string) (io.ReadCloser, *FileMetadata, error)
	Stat(ctx context.Context, id string) (*FileMetadata, error)
	Delete(ctx context.Context, id string) error
}

type storedFile struct {
	metadata FileMetadata
	content  []byte
}

// InMemoryStore is a thread-safe, in-memory Store.
type InMemoryStore struct {
	baseURL string
	maxSize int64

	mu    sync.RWMutex
	files map[string]*storedFile
}

// NewInMemoryStore returns a store that builds public URLs under baseURL.
// maxSize <= 0 uses DefaultMaxFileSize.
func NewInMemoryStore(baseURL string, maxSize int64) *InMemoryStore {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &InMemoryStore{
		baseURL: baseURL,
		maxSize: maxSize,
		files:   make(map[string]*storedFile),
	}
}

// Put validates the upload, reads the content, computes a SHA-256 hash and
// stores the file. The file name is made unique with a timestamp prefix so
// repeated uploads of the same name never collide.
func (s *InMemoryStore) Put(_ context.Context, meta FileMetadata, content io.Reader) (*FileMetadata, error) {
	if meta.FileName == "" {
		return nil, ErrMissingFileName
	}
	if meta.ContentType != "" && !AllowedContentTypes[meta.ContentType] {
		return nil, ErrInvalidContentType
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}

	h := sha256.Sum256(data)

	meta.ID = uuid.New().String()
	meta.Size = int64(len(data))
	meta.Hash = fmt.Sprintf("%x", h)
	meta.UploadedAt = time.Now().UTC()
	meta.FileName = fmt.Sprintf("%d_%s", meta.UploadedAt.UnixMilli(), meta.FileName)
	meta.URL = fmt.Sprintf("%s/files/%s", s.baseURL, meta.ID)

	s.mu.Lock()
	s.files[meta.ID] = &storedFile{metadata: meta, content: data}
	s.mu.Unlock()

	out := meta // copy
	return &out, nil
}

// Open returns a reader over the file content and its metadata.
func (s *InMemoryStore) Open(_ context.Context, id string) (io.ReadCloser, *FileMetadata, error) {
	s.mu.RLock()
	f, ok := s.files[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrFileNotFound
	}

	meta := f.metadata // copy
	return io.NopCloser(bytes.NewReader(f.content)), &meta, nil
}

// Stat returns file metadata without content.
func (s *InMemoryStore) Stat(_ context.Context, id string) (*FileMetadata, error) {
	s.mu.RLock()
	f, ok := s.files[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrFileNotFound
	}

	meta := f.metadata // copy
	return &meta, nil
}

// Delete removes a file by ID.
func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return ErrFileNotFound
	}
	delete(s.files, id)
	return nil
}

// Handler serves stored files over HTTP.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the download endpoint on the supplied group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/files/:id", h.handleDownload)
}

func (h *Handler) handleDownload(c echo.Context) error {
	rc, meta, err := h.store.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "file not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer rc.Close()

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, meta.FileName))
	return c.Stream(http.StatusOK, meta.ContentType, rc)
}
