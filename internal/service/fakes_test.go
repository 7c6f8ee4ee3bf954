package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/repository"
)

// memStore is an in-memory stand-in for the Mongo catalog, honouring the
// same per-operation contracts (upsert outcomes, matched/deleted counts).
type memStore struct {
	repos  map[string]models.Repository
	issues map[string]models.Issue
	chunks []models.CodeChunk

	failInsertChunks bool
	searchErr        error
}

func newMemStore() *memStore {
	return &memStore{
		repos:  make(map[string]models.Repository),
		issues: make(map[string]models.Issue),
	}
}

func issueKey(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}

func (m *memStore) UpsertRepository(_ context.Context, rec models.Repository) (repository.UpsertOutcome, error) {
	_, existed := m.repos[rec.FullName]
	m.repos[rec.FullName] = rec
	if existed {
		return repository.UpsertReplaced, nil
	}
	return repository.UpsertInserted, nil
}

func (m *memStore) RemoveRepository(_ context.Context, fullName string) (int64, error) {
	var deleted int64
	if _, ok := m.repos[fullName]; ok {
		delete(m.repos, fullName)
		deleted = 1
	}
	for key, issue := range m.issues {
		if issue.RepoFullName == fullName {
			delete(m.issues, key)
		}
	}
	kept := m.chunks[:0]
	for _, chunk := range m.chunks {
		if chunk.RepoFullName != fullName {
			kept = append(kept, chunk)
		}
	}
	m.chunks = kept
	return deleted, nil
}

func (m *memStore) InsertIssue(_ context.Context, issue models.Issue) error {
	m.issues[issueKey(issue.RepoFullName, issue.IssueNumber)] = issue
	return nil
}

func (m *memStore) DeleteIssue(_ context.Context, repo string, number int) (int64, error) {
	key := issueKey(repo, number)
	if _, ok := m.issues[key]; !ok {
		return 0, nil
	}
	delete(m.issues, key)
	return 1, nil
}

func (m *memStore) DeleteAllIssuesForRepo(_ context.Context, repo string) (int64, error) {
	var deleted int64
	for key, issue := range m.issues {
		if issue.RepoFullName == repo {
			delete(m.issues, key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memStore) ReplaceIssueFields(_ context.Context, repo string, number int, title, htmlURL string, labels []string) (int64, error) {
	key := issueKey(repo, number)
	issue, ok := m.issues[key]
	if !ok {
		return 0, nil
	}
	issue.IssueTitle = title
	issue.IssueHTMLURL = htmlURL
	issue.Labels = labels
	m.issues[key] = issue
	return 1, nil
}

func (m *memStore) BulkInsertChunks(_ context.Context, chunks []models.CodeChunk) error {
	if m.failInsertChunks {
		return errors.New("bulk insert failed")
	}
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *memStore) DeleteChunksForRepo(_ context.Context, repo string) (int64, error) {
	var deleted int64
	kept := m.chunks[:0]
	for _, chunk := range m.chunks {
		if chunk.RepoFullName == repo {
			deleted++
			continue
		}
		kept = append(kept, chunk)
	}
	m.chunks = kept
	return deleted, nil
}

func (m *memStore) SearchChunks(_ context.Context, repo string, _ []float32, k int) ([]string, error) {
	var texts []string
	for _, chunk := range m.chunks {
		if chunk.RepoFullName == repo && len(texts) < k {
			texts = append(texts, chunk.Text)
		}
	}
	return texts, nil
}

func (m *memStore) VectorSearchIssues(_ context.Context, _ []float32, k int) ([]models.Issue, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	keys := make([]string, 0, len(m.issues))
	for key := range m.issues {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var hits []models.Issue
	for _, key := range keys {
		if len(hits) == k {
			break
		}
		hits = append(hits, m.issues[key])
	}
	return hits, nil
}

func (m *memStore) ListIssues(_ context.Context) ([]models.Issue, error) {
	out := make([]models.Issue, 0, len(m.issues))
	for _, issue := range m.issues {
		out = append(out, issue)
	}
	return out, nil
}

// fakeGateway serves canned repository details and file contents.
type fakeGateway struct {
	repos      map[string]models.Repository
	files      map[string]string
	issueState string
	listErr    error
}

func (f *fakeGateway) FetchRepo(_ context.Context, fullName string) models.Repository {
	return f.repos[fullName]
}

func (f *fakeGateway) FetchIssue(_ context.Context, _ string, number int) (models.IssueEvent, error) {
	if f.issueState == "" {
		return models.IssueEvent{}, errors.New("issue not found")
	}
	return models.IssueEvent{Number: number, State: f.issueState}, nil
}

func (f *fakeGateway) ListSourceFiles(_ context.Context, _ string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	paths := make([]string, 0, len(f.files))
	for path := range f.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

func (f *fakeGateway) GetFileContent(_ context.Context, _, path string) (string, error) {
	content, ok := f.files[path]
	if !ok {
		return "", errors.New("file not found")
	}
	return content, nil
}

// fakeLLM is a controllable completion/embedding provider.
type fakeLLM struct {
	completion  string
	completeErr error
	embedErr    error

	lastUserInput string
	embedCalls    int
}

func (f *fakeLLM) Complete(_ context.Context, _, user string) (string, error) {
	f.lastUserInput = user
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completion, nil
}

func (f *fakeLLM) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls++
	f.lastUserInput = text
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeLLM) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.embedCalls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeLLM) Close() error { return nil }

// countingIndexer records how often vectorization was triggered.
type countingIndexer struct {
	calls []string
	err   error
}

func (c *countingIndexer) IndexRepository(_ context.Context, repoFullName string) error {
	c.calls = append(c.calls, repoFullName)
	return c.err
}

// staticSummarizer returns a fixed summary.
type staticSummarizer struct {
	summary string
}

func (s staticSummarizer) Summarize(_ context.Context, _ models.IssueEvent, _ string) string {
	return s.summary
}

// hasLabels reports whether got matches want exactly, in order.
func hasLabels(got, want []string) bool {
	return strings.Join(got, "|") == strings.Join(want, "|")
}
