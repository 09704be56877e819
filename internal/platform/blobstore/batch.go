package blobstore

import (
	"context"
	"io"
)

// Upload pairs metadata with its content for batch processing.
type Upload struct {
	Meta    FileMetadata
	Content io.Reader
}

// Progress is emitted after each file in a batch finishes, success or not.
type Progress struct {
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	Percent  int           `json:"percent"`
	FileName string        `json:"file_name"`
	Result   *FileMetadata `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// PutBatch uploads files one at a time and emits a Progress event per file on
// the returned channel. Failures are reported per file and do not stop the
// batch. The channel closes when the batch is done or ctx is canceled.
func PutBatch(ctx context.Context, store Store, uploads []Upload) <-chan Progress {
	out := make(chan Progress, len(uploads))

	go func() {
		defer close(out)
		total := len(uploads)
		for i, up := range uploads {
			if ctx.Err() != nil {
				return
			}

			p := Progress{
				Index:    i,
				Total:    total,
				Percent:  (i + 1) * 100 / total,
				FileName: up.Meta.FileName,
			}

			meta, err := store.Put(ctx, up.Meta, up.Content)
			if err != nil {
				p.Error = err.Error()
			} else {
				p.Result = meta
			}

			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
