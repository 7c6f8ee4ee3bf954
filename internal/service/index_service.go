package service

import (
	"context"
	"fmt"

	"github.com/openmatchhq/open-match/server/internal/llm"
	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/notify"
)

// Chunks longer than this are truncated before embedding to stay inside
// the provider's input limits.
const maxChunkChars = 8000

// Embedding requests are batched so one huge repository does not produce a
// single oversized call.
const embedBatchSize = 64

// SourceReader lists and fetches a repository's indexable files.
type SourceReader interface {
	ListSourceFiles(ctx context.Context, fullName string) ([]string, error)
	GetFileContent(ctx context.Context, fullName, path string) (string, error)
}

// ChunkStore persists vector chunks. Chunks for a repository are
// all-or-nothing: a failed run is swept, never left half-populated.
type ChunkStore interface {
	BulkInsertChunks(ctx context.Context, chunks []models.CodeChunk) error
	DeleteChunksForRepo(ctx context.Context, repoFullName string) (int64, error)
}

// IndexService converts a repository's source files into embedded chunks
// and loads them into the repository-scoped vector index. It runs only when
// a repository is first tracked.
type IndexService struct {
	source SourceReader
	store  ChunkStore
	llm    llm.Client
	notif  notify.Notifier
}

// NewIndexService wires dependencies.
func NewIndexService(source SourceReader, store ChunkStore, client llm.Client, notif notify.Notifier) *IndexService {
	return &IndexService{
		source: source,
		store:  store,
		llm:    client,
		notif:  notif,
	}
}

// IndexRepository enumerates allow-listed files, embeds one chunk per file
// and bulk-loads them. On any failure the whole run is abandoned: partial
// chunks are swept and the failure is reported as severe. There is no
// automatic retry; a repository with a failed index is remediated
// out-of-band.
func (s *IndexService) IndexRepository(ctx context.Context, repoFullName string) error {
	chunks, err := s.collectChunks(ctx, repoFullName)
	if err == nil && len(chunks) > 0 {
		err = s.embedChunks(ctx, chunks)
	}
	if err == nil {
		err = s.store.BulkInsertChunks(ctx, chunks)
	}
	if err != nil {
		s.sweep(ctx, repoFullName)
		s.notif.Severe(fmt.Sprintf("unable to load documents to vector store for repo %s: %v", repoFullName, err))
		return err
	}

	s.notif.Info(fmt.Sprintf("successfully loaded %d chunks to vector store for repo %s", len(chunks), repoFullName))
	return nil
}

func (s *IndexService) collectChunks(ctx context.Context, repoFullName string) ([]models.CodeChunk, error) {
	paths, err := s.source.ListSourceFiles(ctx, repoFullName)
	if err != nil {
		return nil, fmt.Errorf("list source files: %w", err)
	}

	chunks := make([]models.CodeChunk, 0, len(paths))
	for _, path := range paths {
		text, err := s.source.GetFileContent(ctx, repoFullName, path)
		if err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}
		if len(text) > maxChunkChars {
			text = text[:maxChunkChars]
		}
		chunks = append(chunks, models.CodeChunk{
			RepoFullName: repoFullName,
			File:         path,
			Text:         text,
		})
	}
	return chunks, nil
}

func (s *IndexService) embedChunks(ctx context.Context, chunks []models.CodeChunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Text)
		}
		vectors, err := s.llm.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunk batch: %w", err)
		}
		for i, vec := range vectors {
			chunks[start+i].Embedding = vec
		}
	}
	return nil
}

// sweep drops whatever the failed run managed to write so the repository is
// never left looking indexed when it is not.
func (s *IndexService) sweep(ctx context.Context, repoFullName string) {
	if _, err := s.store.DeleteChunksForRepo(ctx, repoFullName); err != nil {
		s.notif.Severe(fmt.Sprintf("failed to sweep partial chunks for repo %s: %v", repoFullName, err))
	}
}
