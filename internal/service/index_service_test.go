package service

import (
	"context"
	"errors"
	"testing"

	"github.com/openmatchhq/open-match/server/internal/notify"
)

func TestIndexRepositoryLoadsAllChunks(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{files: map[string]string{
		"README.md": "# readme",
		"main.go":   "package main",
	}}
	svc := NewIndexService(gateway, store, &fakeLLM{}, notify.Nop{})

	if err := svc.IndexRepository(context.Background(), "org/repo"); err != nil {
		t.Fatalf("IndexRepository() error = %v", err)
	}

	if len(store.chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(store.chunks))
	}
	for _, chunk := range store.chunks {
		if chunk.RepoFullName != "org/repo" {
			t.Errorf("chunk %s tagged %q, want org/repo", chunk.File, chunk.RepoFullName)
		}
		if len(chunk.Embedding) == 0 {
			t.Errorf("chunk %s has no embedding", chunk.File)
		}
	}
}

func TestIndexRepositoryEmbedFailureIsAllOrNothing(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{files: map[string]string{"main.go": "package main"}}
	svc := NewIndexService(gateway, store, &fakeLLM{embedErr: errors.New("embeddings down")}, notify.Nop{})

	if err := svc.IndexRepository(context.Background(), "org/repo"); err == nil {
		t.Fatal("expected an error when embedding fails")
	}
	if len(store.chunks) != 0 {
		t.Errorf("chunks = %d, want 0 (failed run must not leave partial state)", len(store.chunks))
	}
}

func TestIndexRepositoryInsertFailureSweepsPartialState(t *testing.T) {
	store := newMemStore()
	store.failInsertChunks = true
	gateway := &fakeGateway{files: map[string]string{"main.go": "package main"}}
	svc := NewIndexService(gateway, store, &fakeLLM{}, notify.Nop{})

	if err := svc.IndexRepository(context.Background(), "org/repo"); err == nil {
		t.Fatal("expected an error when the bulk insert fails")
	}
	if len(store.chunks) != 0 {
		t.Errorf("chunks = %d, want 0 after sweep", len(store.chunks))
	}
}

func TestIndexRepositoryListFailureAborts(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{listErr: errors.New("tree listing failed")}
	svc := NewIndexService(gateway, store, &fakeLLM{}, notify.Nop{})

	if err := svc.IndexRepository(context.Background(), "org/repo"); err == nil {
		t.Fatal("expected an error when file listing fails")
	}
	if len(store.chunks) != 0 {
		t.Errorf("chunks = %d, want 0", len(store.chunks))
	}
}
