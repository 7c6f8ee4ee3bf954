package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openmatchhq/open-match/server/internal/llm"
	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/notify"
)

const summarySystemPrompt = `You are an AI assistant tasked with providing a comprehensive summary of an issue. You will be given documents from a vector store that has the code base, these documents might be of use.
Using the information provided to you come up with a summary on what the issue is and how one can solve this issue if they were to put a PR to fix it.
If you have enough information to solve this for the user please reply with just the solution. Keep your summary less than 200 words.`

// Number of context chunks retrieved per summary.
const summaryContextK = 5

// ChunkSearcher retrieves the nearest source chunks for one repository.
type ChunkSearcher interface {
	SearchChunks(ctx context.Context, repoFullName string, queryVec []float32, k int) ([]string, error)
}

// SummaryService generates retrieval-augmented, fix-oriented issue
// summaries. Summaries are best-effort: every failure degrades to an empty
// string so issue creation is never blocked.
type SummaryService struct {
	chunks ChunkSearcher
	llm    llm.Client
	notif  notify.Notifier
}

// NewSummaryService wires dependencies.
func NewSummaryService(chunks ChunkSearcher, client llm.Client, notif notify.Notifier) *SummaryService {
	return &SummaryService{
		chunks: chunks,
		llm:    client,
		notif:  notif,
	}
}

// Summarize retrieves the repository's nearest source chunks for the issue
// and asks the completion service for a fix-oriented summary. The retrieval
// query is the issue title.
func (s *SummaryService) Summarize(ctx context.Context, issue models.IssueEvent, repoFullName string) string {
	queryVec, err := s.llm.Embed(ctx, issue.Title)
	if err != nil {
		s.notif.Warning(fmt.Sprintf("failed to embed issue #%d for summary: %v", issue.Number, err))
		return ""
	}

	docs, err := s.chunks.SearchChunks(ctx, repoFullName, queryVec, summaryContextK)
	if err != nil {
		s.notif.Warning(fmt.Sprintf("chunk retrieval failed for %s#%d: %v", repoFullName, issue.Number, err))
		docs = nil
	}

	user := fmt.Sprintf("Issue Description:\n%s\n\nRelevant Documents:\n%s",
		issue.Title, strings.Join(docs, "\n\n---\n\n"))
	summary, err := s.llm.Complete(ctx, summarySystemPrompt, user)
	if err != nil {
		s.notif.Warning(fmt.Sprintf("summary generation failed for %s#%d: %v", repoFullName, issue.Number, err))
		return ""
	}
	return summary
}
