package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
)

func seedFile(t *testing.T, store Store, patientID, fileName, contentType, content string) *FileMetadata {
	t.Helper()
	meta := FileMetadata{
		FileName:    fileName,
		ContentType: contentType,
		PatientID:   patientID,
	}
	result, err := store.Put(context.Background(), meta, strings.NewReader(content))
	if err != nil {
		t.Fatalf("seedFile: %v", err)
	}
	return result
}

func TestInMemoryStore_Put(t *testing.T) {
	store := NewInMemoryStore("http://localhost:8080/api/v1", 0)
	content := "radiografia-bytes"

	result := seedFile(t, store, "patient-1", "raiox.jpg", "image/jpeg", content)

	if result.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if !strings.HasSuffix(result.FileName, "_raiox.jpg") {
		t.Errorf("expected timestamp-prefixed file name, got %s", result.FileName)
	}
	if result.Size != int64(len(content)) {
		t.Errorf("expected Size=%d, got %d", len(content), result.Size)
	}
	if result.URL != "http://localhost:8080/api/v1/files/"+result.ID {
		t.Errorf("unexpected URL: %s", result.URL)
	}
	if result.UploadedAt.IsZero() {
		t.Error("expected non-zero UploadedAt")
	}

	h := sha256.Sum256([]byte(content))
	if result.Hash != fmt.Sprintf("%x", h) {
		t.Errorf("unexpected hash: %s", result.Hash)
	}
}

func TestInMemoryStore_Put_MissingFileName(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)

	_, err := store.Put(context.Background(), FileMetadata{ContentType: "text/plain"}, strings.NewReader("data"))
	if !errors.Is(err, ErrMissingFileName) {
		t.Errorf("expected ErrMissingFileName, got %v", err)
	}
}

func TestInMemoryStore_Put_InvalidContentType(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)

	meta := FileMetadata{FileName: "script.sh", ContentType: "application/x-sh"}
	_, err := store.Put(context.Background(), meta, strings.NewReader("#!/bin/sh"))
	if !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("expected ErrInvalidContentType, got %v", err)
	}
}

func TestInMemoryStore_Put_FileTooLarge(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 16)

	meta := FileMetadata{FileName: "big.txt", ContentType: "text/plain"}
	_, err := store.Put(context.Background(), meta, bytes.NewReader(make([]byte, 17)))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestInMemoryStore_OpenRoundTrip(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	uploaded := seedFile(t, store, "p1", "exame.pdf", "application/pdf", "pdf-bytes")

	rc, meta, err := store.Open(context.Background(), uploaded.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Errorf("unexpected content: %q", data)
	}
	if meta.ContentType != "application/pdf" {
		t.Errorf("unexpected content type: %s", meta.ContentType)
	}
}

func TestInMemoryStore_OpenNotFound(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)

	if _, _, err := store.Open(context.Background(), "missing"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestInMemoryStore_Stat(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	uploaded := seedFile(t, store, "p1", "foto.png", "image/png", "png-bytes")

	meta, err := store.Stat(context.Background(), uploaded.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.ID != uploaded.ID || meta.PatientID != "p1" {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	uploaded := seedFile(t, store, "p1", "apagar.txt", "text/plain", "bye")

	if err := store.Delete(context.Background(), uploaded.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := store.Open(context.Background(), uploaded.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound after delete, got %v", err)
	}
	if err := store.Delete(context.Background(), uploaded.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound on second delete, got %v", err)
	}
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	var wg sync.WaitGroup
	const goroutines = 50

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(n int) {
			defer wg.Done()
			meta := FileMetadata{
				FileName:    fmt.Sprintf("file-%d.txt", n),
				ContentType: "text/plain",
				PatientID:   "p1",
			}
			result, err := store.Put(context.Background(), meta, strings.NewReader(fmt.Sprintf("content-%d", n)))
			if err != nil {
				t.Errorf("put goroutine %d: %v", n, err)
				return
			}
			rc, _, err := store.Open(context.Background(), result.ID)
			if err != nil {
				t.Errorf("open goroutine %d: %v", n, err)
				return
			}
			rc.Close()
			if _, err := store.Stat(context.Background(), result.ID); err != nil {
				t.Errorf("stat goroutine %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestHandler_Download(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	e := echo.New()
	NewHandler(store).RegisterRoutes(e.Group(""))

	uploaded := seedFile(t, store, "p1", "baixar.txt", "text/plain", "download-me")

	req := httptest.NewRequest(http.MethodGet, "/files/"+uploaded.ID, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "download-me" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "baixar.txt") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
}

func TestHandler_DownloadNotFound(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	e := echo.New()
	NewHandler(store).RegisterRoutes(e.Group(""))

	req := httptest.NewRequest(http.MethodGet, "/files/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}
