package documents

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/odontosys/odontosys/internal/platform/blobstore"
)

// Service coordinates document records and their stored blobs. The record in
// the repository carries the public URL; the content lives in the blob store.
type Service struct {
	repo  Repository
	store blobstore.Store
}

func NewService(repo Repository, store blobstore.Store) *Service {
	return &Service{repo: repo, store: store}
}

// Upload stores the file content and records the document against the
// patient. doc_type defaults to "outros" when omitted.
func (s *Service) Upload(ctx context.Context, d *Document, content io.Reader) error {
	if d.DocType == "" {
		d.DocType = "outros"
	}
	if err := d.Validate(); err != nil {
		return err
	}
	meta, err := s.store.Put(ctx, blobstore.FileMetadata{
		FileName:    d.FileName,
		ContentType: d.ContentType,
		PatientID:   d.PatientID.String(),
	}, content)
	if err != nil {
		return fmt.Errorf("storing file: %w", err)
	}
	d.FileName = meta.FileName
	d.URL = meta.URL
	d.SizeBytes = meta.Size
	d.UploadedAt = meta.UploadedAt
	return s.repo.Create(ctx, d)
}

// UploadBatch pushes every file through the store sequentially and reports
// per-file progress on the returned channel. A failed file does not stop the
// rest of the batch.
func (s *Service) UploadBatch(ctx context.Context, patientID uuid.UUID, docType string, uploads []blobstore.Upload) <-chan blobstore.Progress {
	if docType == "" {
		docType = "outros"
	}
	in := blobstore.PutBatch(ctx, s.store, uploads)
	out := make(chan blobstore.Progress, len(uploads))
	go func() {
		defer close(out)
		for p := range in {
			if p.Result != nil {
				d := &Document{
					PatientID:   patientID,
					FileName:    p.Result.FileName,
					ContentType: p.Result.ContentType,
					DocType:     docType,
					URL:         p.Result.URL,
					SizeBytes:   p.Result.Size,
					UploadedAt:  p.Result.UploadedAt,
				}
				if err := s.repo.Create(ctx, d); err != nil {
					p.Result = nil
					p.Error = err.Error()
				}
			}
			out <- p
		}
	}()
	return out
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Document, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// Delete removes the record and its blob. A missing blob is not an error;
// the record may have been imported without content.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if blobID := blobIDFromURL(d.URL); blobID != "" {
		if err := s.store.Delete(ctx, blobID); err != nil && err != blobstore.ErrFileNotFound {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

// PurgeByPatient removes all documents and blobs for a patient. Used when a
// patient record is deleted.
func (s *Service) PurgeByPatient(ctx context.Context, patientID uuid.UUID) error {
	items, _, err := s.repo.ListByPatient(ctx, patientID, 10000, 0)
	if err != nil {
		return err
	}
	for _, d := range items {
		if err := s.Delete(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) All(ctx context.Context) ([]*Document, error) {
	return s.repo.All(ctx)
}

// Import upserts document records without touching the blob store. Restored
// URLs may point at blobs that no longer exist.
func (s *Service) Import(ctx context.Context, items []*Document) (int, error) {
	count := 0
	for _, d := range items {
		if d.DocType == "" {
			d.DocType = "outros"
		}
		if err := d.Validate(); err != nil {
			return count, err
		}
		if err := s.repo.Upsert(ctx, d); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func blobIDFromURL(url string) string {
	i := strings.LastIndex(url, "/files/")
	if i < 0 {
		return ""
	}
	return url[i+len("/files/"):]
}
