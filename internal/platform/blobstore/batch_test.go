package blobstore

import (
	"context"
	"strings"
	"testing"
)

func collect(ch <-chan Progress) []Progress {
	var out []Progress
	for p := range ch {
		out = append(out, p)
	}
	return out
}

func TestPutBatch(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	uploads := []Upload{
		{Meta: FileMetadata{FileName: "a.txt", ContentType: "text/plain"}, Content: strings.NewReader("a")},
		{Meta: FileMetadata{FileName: "b.txt", ContentType: "text/plain"}, Content: strings.NewReader("b")},
		{Meta: FileMetadata{FileName: "c.txt", ContentType: "text/plain"}, Content: strings.NewReader("c")},
	}

	events := collect(PutBatch(context.Background(), store, uploads))

	if len(events) != 3 {
		t.Fatalf("expected 3 progress events, got %d", len(events))
	}
	wantPercent := []int{33, 66, 100}
	for i, ev := range events {
		if ev.Index != i || ev.Total != 3 {
			t.Errorf("event %d: unexpected index/total: %+v", i, ev)
		}
		if ev.Percent != wantPercent[i] {
			t.Errorf("event %d: expected percent %d, got %d", i, wantPercent[i], ev.Percent)
		}
		if ev.Result == nil || ev.Error != "" {
			t.Errorf("event %d: expected success, got %+v", i, ev)
		}
	}
}

func TestPutBatch_FailureDoesNotStopBatch(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	uploads := []Upload{
		{Meta: FileMetadata{FileName: "", ContentType: "text/plain"}, Content: strings.NewReader("x")},
		{Meta: FileMetadata{FileName: "ok.txt", ContentType: "text/plain"}, Content: strings.NewReader("y")},
	}

	events := collect(PutBatch(context.Background(), store, uploads))

	if len(events) != 2 {
		t.Fatalf("expected 2 progress events, got %d", len(events))
	}
	if events[0].Error == "" || events[0].Result != nil {
		t.Errorf("expected first event to carry the error, got %+v", events[0])
	}
	if events[1].Error != "" || events[1].Result == nil {
		t.Errorf("expected second event to succeed, got %+v", events[1])
	}
}

func TestPutBatch_CanceledContext(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uploads := []Upload{
		{Meta: FileMetadata{FileName: "a.txt", ContentType: "text/plain"}, Content: strings.NewReader("a")},
	}

	if events := collect(PutBatch(ctx, store, uploads)); len(events) != 0 {
		t.Errorf("expected no events after cancellation, got %d", len(events))
	}
}

func TestPutBatch_Empty(t *testing.T) {
	store := NewInMemoryStore("http://localhost", 0)

	if events := collect(PutBatch(context.Background(), store, nil)); len(events) != 0 {
		t.Errorf("expected no events for empty batch, got %d", len(events))
	}
}
