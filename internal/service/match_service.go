package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/openmatchhq/open-match/server/internal/models"
)

// DefaultMatchK is how many catalog entries a match request returns.
const DefaultMatchK = 4

// IssueSearcher exposes the catalog reads the matcher needs.
type IssueSearcher interface {
	VectorSearchIssues(ctx context.Context, queryVec []float32, k int) ([]models.Issue, error)
	ListIssues(ctx context.Context) ([]models.Issue, error)
}

// MatchService ranks catalog entries against a profile embedding.
type MatchService struct {
	store  IssueSearcher
	scorer Scorer
}

// NewMatchService wires the catalog and the relevance scorer.
func NewMatchService(store IssueSearcher, scorer Scorer) *MatchService {
	return &MatchService{store: store, scorer: scorer}
}

// Match runs a k-NN query over the issue embedding index and formats the
// hits. An empty query embedding (the profile embedder's failure fallback)
// yields empty results, not an error.
func (m *MatchService) Match(ctx context.Context, queryVec []float32, k int) ([]models.MatchResult, error) {
	if len(queryVec) == 0 {
		return []models.MatchResult{}, nil
	}
	if k <= 0 {
		k = DefaultMatchK
	}

	hits, err := m.store.VectorSearchIssues(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]models.MatchResult, len(hits))
	for i, hit := range hits {
		results[i] = m.format(hit)
	}
	return results, nil
}

// ListCatalog returns every issue in the catalog, embeddings stripped.
func (m *MatchService) ListCatalog(ctx context.Context) ([]models.Issue, error) {
	issues, err := m.store.ListIssues(ctx)
	if err != nil {
		return nil, err
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	return issues, nil
}

// format maps a raw hit into the fixed response shape. Missing source fields
// degrade to sentinel values instead of raising.
func (m *MatchService) format(hit models.Issue) models.MatchResult {
	return models.MatchResult{
		IssueTitle:   orNA(hit.IssueTitle),
		RepoFullName: orNA(hit.RepoFullName),
		IssueNumber:  strconv.Itoa(hit.IssueNumber),
		IssueHTMLURL: orNA(hit.IssueHTMLURL),
		Description:  orNA(hit.RepoDescription),
		Tags:         mergeTags(hit.RepoTopics, hit.Languages),
		Relevance:    m.scorer.Score(hit),
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// mergeTags unions topics and languages, preserving order and dropping
// duplicates.
func mergeTags(topics, languages []string) []string {
	seen := make(map[string]bool, len(topics)+len(languages))
	tags := make([]string, 0, len(topics)+len(languages))
	for _, t := range append(append([]string{}, topics...), languages...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}
