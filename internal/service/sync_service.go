package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/openmatchhq/open-match/server/internal/llm"
	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/notify"
	"github.com/openmatchhq/open-match/server/internal/repository"
)

// ---- Collaborator contracts -------------------------------------------------

// CatalogStore is the slice of the Mongo catalog the sync controller mutates.
type CatalogStore interface {
	UpsertRepository(ctx context.Context, rec models.Repository) (repository.UpsertOutcome, error)
	RemoveRepository(ctx context.Context, fullName string) (int64, error)
	InsertIssue(ctx context.Context, issue models.Issue) error
	DeleteIssue(ctx context.Context, repoFullName string, issueNumber int) (int64, error)
	ReplaceIssueFields(ctx context.Context, repoFullName string, issueNumber int, title, htmlURL string, labels []string) (int64, error)
}

// RepoFetcher reads repository and issue details from the source-control API.
type RepoFetcher interface {
	FetchRepo(ctx context.Context, fullName string) models.Repository
	FetchIssue(ctx context.Context, fullName string, number int) (models.IssueEvent, error)
}

// Indexer runs the vectorization pipeline for a newly tracked repository.
type Indexer interface {
	IndexRepository(ctx context.Context, repoFullName string) error
}

// Summarizer produces the best-effort RAG summary attached to new issues.
type Summarizer interface {
	Summarize(ctx context.Context, issue models.IssueEvent, repoFullName string) string
}

// ---- Action classification --------------------------------------------------

type actionClass int

const (
	classUnknown actionClass = iota
	classInstall
	classUninstall
	classCreate
	classUpdate
	classRemove
)

// The five disjoint action classes. Anything outside their union is
// accepted but mutates nothing.
var actionClasses = map[string]actionClass{
	"added":    classInstall,
	"removed":  classUninstall,
	"opened":   classCreate,
	"reopened": classCreate,
	"unlocked": classCreate,
	"labeled":  classUpdate,
	"unlabeled": classUpdate,
	"edited":   classUpdate,
	"closed":   classRemove,
	"locked":   classRemove,
}

// ---- Controller --------------------------------------------------------------

// SyncService maps webhook deliveries onto idempotent catalog mutations.
// One delivery produces at most one mutation sequence; concurrent deliveries
// for the same key rely on the store's per-operation atomicity.
type SyncService struct {
	store      CatalogStore
	gateway    RepoFetcher
	indexer    Indexer
	summarizer Summarizer
	embedder   llm.Client
	notif      notify.Notifier
}

// NewSyncService wires dependencies.
func NewSyncService(store CatalogStore, gateway RepoFetcher, indexer Indexer, summarizer Summarizer, embedder llm.Client, notif notify.Notifier) *SyncService {
	return &SyncService{
		store:      store,
		gateway:    gateway,
		indexer:    indexer,
		summarizer: summarizer,
		embedder:   embedder,
		notif:      notif,
	}
}

// HandleEvent dispatches one verified webhook payload. The returned message
// is surfaced in the 2xx response body; a non-nil error means the delivery
// failed and should be answered with a generic failure.
func (s *SyncService) HandleEvent(ctx context.Context, payload models.WebhookPayload) (string, error) {
	switch actionClasses[payload.Action] {
	case classInstall:
		return s.handleInstall(ctx, payload.RepositoriesAdded)
	case classUninstall:
		return s.handleUninstall(ctx, payload.RepositoriesRemoved)
	case classCreate:
		return s.handleIssueEvent(ctx, payload, true)
	case classUpdate:
		return s.handleIssueEvent(ctx, payload, false)
	case classRemove:
		return s.handleRemove(ctx, payload)
	default:
		log.Printf("action %q is not useful, ignoring", payload.Action)
		return "event ignored", nil
	}
}

// handleInstall upserts every repository added to the installation and kicks
// off vectorization for the ones the catalog has never seen.
func (s *SyncService) handleInstall(ctx context.Context, added []models.RepoRef) (string, error) {
	for _, ref := range added {
		if _, err := s.trackRepository(ctx, ref.FullName); err != nil {
			return "", err
		}
	}
	s.notif.Info(fmt.Sprintf("installation added %d repositories", len(added)))
	return "installation repositories tracked", nil
}

// handleUninstall cascades removal of every repository dropped from the
// installation: repo record, its issues and its vector chunks.
func (s *SyncService) handleUninstall(ctx context.Context, removed []models.RepoRef) (string, error) {
	for _, ref := range removed {
		deleted, err := s.store.RemoveRepository(ctx, ref.FullName)
		if err != nil {
			return "", fmt.Errorf("remove repository %s: %w", ref.FullName, err)
		}
		if deleted == 0 {
			s.notif.Warning(fmt.Sprintf("repo %s not found, no action taken", ref.FullName))
			continue
		}
		s.notif.Info(fmt.Sprintf("removed %s from the catalog", ref.FullName))
	}
	return "installation repositories untracked", nil
}

// handleIssueEvent covers the create and update classes. Both require the
// issue to still be open; stale payloads describing a since-closed issue are
// logged and dropped.
func (s *SyncService) handleIssueEvent(ctx context.Context, payload models.WebhookPayload, create bool) (string, error) {
	if payload.Issue == nil || payload.Repository == nil {
		return "payload missing issue or repository, ignoring", nil
	}
	repoName := payload.Repository.FullName
	issue := *payload.Issue

	if issue.State == "" {
		// Some redeliveries arrive without the state token; recheck live.
		live, err := s.gateway.FetchIssue(ctx, repoName, issue.Number)
		if err != nil {
			s.notif.Warning(fmt.Sprintf("could not confirm state of %s#%d: %v", repoName, issue.Number, err))
			return "issue state unknown, ignoring", nil
		}
		issue.State = live.State
	}
	if issue.State != "open" && issue.State != "reopened" {
		log.Printf("issue %s#%d is %q, skipping stale payload", repoName, issue.Number, issue.State)
		return "issue not open, ignoring", nil
	}

	details, err := s.trackRepository(ctx, repoName)
	if err != nil {
		return "", err
	}
	if details.IsZero() {
		return "repository details unavailable, ignoring", nil
	}

	if create {
		record := s.buildIssueRecord(ctx, details, issue)
		if err := s.store.InsertIssue(ctx, record); err != nil {
			return "", fmt.Errorf("insert issue %s#%d: %w", repoName, issue.Number, err)
		}
		s.notif.Info(fmt.Sprintf("added issue #%d from %s to the catalog", issue.Number, repoName))
		return "issue added", nil
	}

	matched, err := s.store.ReplaceIssueFields(ctx, repoName, issue.Number, issue.Title, issue.HTMLURL, issue.LabelNames())
	if err != nil {
		return "", fmt.Errorf("update issue %s#%d: %w", repoName, issue.Number, err)
	}
	if matched == 0 {
		s.notif.Warning(fmt.Sprintf("issue #%d not found in %s, no action taken", issue.Number, repoName))
		return "issue not found, ignoring", nil
	}
	return "issue updated", nil
}

// handleRemove deletes the single issue record by key; the repository record
// is untouched.
func (s *SyncService) handleRemove(ctx context.Context, payload models.WebhookPayload) (string, error) {
	if payload.Issue == nil || payload.Repository == nil {
		return "payload missing issue or repository, ignoring", nil
	}
	repoName := payload.Repository.FullName

	deleted, err := s.store.DeleteIssue(ctx, repoName, payload.Issue.Number)
	if err != nil {
		return "", fmt.Errorf("delete issue %s#%d: %w", repoName, payload.Issue.Number, err)
	}
	if deleted == 0 {
		s.notif.Warning(fmt.Sprintf("issue #%d not found in %s, no action taken", payload.Issue.Number, repoName))
		return "issue not found, ignoring", nil
	}
	s.notif.Info(fmt.Sprintf("removed issue #%d from %s", payload.Issue.Number, repoName))
	return "issue removed", nil
}

// trackRepository fetches the repository's current attributes and upserts
// them. Vectorization runs only when the upsert actually inserted, so
// metadata refreshes never re-index. An unfetchable repository degrades to a
// zero record the caller skips.
func (s *SyncService) trackRepository(ctx context.Context, fullName string) (models.Repository, error) {
	details := s.gateway.FetchRepo(ctx, fullName)
	if details.IsZero() {
		s.notif.Warning(fmt.Sprintf("failed to fetch details for repository %s", fullName))
		return models.Repository{}, nil
	}

	outcome, err := s.store.UpsertRepository(ctx, details)
	if err != nil {
		return models.Repository{}, fmt.Errorf("upsert repository %s: %w", fullName, err)
	}

	if outcome == repository.UpsertInserted {
		s.notif.Info(fmt.Sprintf("added new repository %s to the catalog", fullName))
		if err := s.indexer.IndexRepository(ctx, fullName); err != nil {
			// Indexing failure is remediated out-of-band; catalog writes proceed.
			log.Printf("vectorization failed for %s: %v", fullName, err)
		}
	}
	return details, nil
}

// buildIssueRecord denormalizes the repository attributes into the issue
// document and attaches the best-effort summary and embedding.
func (s *SyncService) buildIssueRecord(ctx context.Context, repo models.Repository, issue models.IssueEvent) models.Issue {
	record := models.Issue{
		RepoName:        repo.Name,
		RepoFullName:    repo.FullName,
		RepoHTMLURL:     repo.HTMLURL,
		RepoDescription: repo.Description,
		RepoStars:       repo.Stars,
		RepoWatchers:    repo.Watchers,
		Languages:       repo.Languages,
		RepoTopics:      repo.Topics,
		IssueHTMLURL:    issue.HTMLURL,
		IssueNumber:     issue.Number,
		IssueTitle:      issue.Title,
		Labels:          issue.LabelNames(),
	}

	record.Summary = s.summarizer.Summarize(ctx, issue, repo.FullName)

	text := strings.Join([]string{
		"Title: " + issue.Title,
		"Labels: " + strings.Join(record.Labels, ", "),
		"Topics: " + strings.Join(repo.Topics, ", "),
		"Languages: " + strings.Join(repo.Languages, ", "),
	}, "\n")
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.notif.Warning(fmt.Sprintf("failed to embed issue %s#%d: %v", repo.FullName, issue.Number, err))
	} else {
		record.Embedding = vec
	}
	return record
}
