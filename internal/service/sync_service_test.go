package service

import (
	"context"
	"errors"
	"testing"

	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/notify"
)

func testRepo() models.Repository {
	return models.Repository{
		Name:        "repo",
		FullName:    "org/repo",
		HTMLURL:     "https://github.com/org/repo",
		Description: "a test repository",
		Stars:       42,
		Watchers:    40,
		Languages:   []string{"Go"},
		Topics:      []string{"tools"},
	}
}

func newTestSync(store *memStore, gateway *fakeGateway, indexer *countingIndexer) *SyncService {
	return NewSyncService(store, gateway, indexer, staticSummarizer{summary: "fix it"}, &fakeLLM{}, notify.Nop{})
}

func openedPayload(number int, title string, labels ...string) models.WebhookPayload {
	issue := models.IssueEvent{
		Number:  number,
		Title:   title,
		State:   "open",
		HTMLURL: "https://github.com/org/repo/issues/42",
	}
	for _, l := range labels {
		issue.Labels = append(issue.Labels, models.Label{Name: l})
	}
	return models.WebhookPayload{
		Action:     "opened",
		Issue:      &issue,
		Repository: &models.RepoRef{FullName: "org/repo"},
	}
}

func TestHandleEventUnknownActionMutatesNothing(t *testing.T) {
	for _, action := range []string{"assigned", "milestoned", "pinned", ""} {
		t.Run("action "+action, func(t *testing.T) {
			store := newMemStore()
			gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
			svc := newTestSync(store, gateway, &countingIndexer{})

			payload := openedPayload(42, "Bug X")
			payload.Action = action

			msg, err := svc.HandleEvent(context.Background(), payload)
			if err != nil {
				t.Fatalf("HandleEvent() error = %v", err)
			}
			if msg != "event ignored" {
				t.Errorf("message = %q, want %q", msg, "event ignored")
			}
			if len(store.repos) != 0 || len(store.issues) != 0 {
				t.Errorf("catalog mutated: %d repos, %d issues", len(store.repos), len(store.issues))
			}
		})
	}
}

func TestHandleEventCreateUpsertsRepoAndIssue(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	indexer := &countingIndexer{}
	svc := newTestSync(store, gateway, indexer)

	if _, err := svc.HandleEvent(context.Background(), openedPayload(42, "Bug X")); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if _, ok := store.repos["org/repo"]; !ok {
		t.Fatal("repository was not upserted")
	}
	issue, ok := store.issues[issueKey("org/repo", 42)]
	if !ok {
		t.Fatal("issue was not created")
	}
	if issue.IssueTitle != "Bug X" {
		t.Errorf("issue title = %q, want %q", issue.IssueTitle, "Bug X")
	}
	if issue.Summary != "fix it" {
		t.Errorf("summary = %q, want %q", issue.Summary, "fix it")
	}
	if issue.RepoDescription != "a test repository" {
		t.Errorf("denormalized description = %q", issue.RepoDescription)
	}
	if len(indexer.calls) != 1 {
		t.Errorf("indexer triggered %d times, want 1", len(indexer.calls))
	}
}

func TestHandleEventRepeatedUpsertIndexesOnce(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	indexer := &countingIndexer{}
	svc := newTestSync(store, gateway, indexer)

	for i := 0; i < 3; i++ {
		if _, err := svc.HandleEvent(context.Background(), openedPayload(42, "Bug X")); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	if len(store.repos) != 1 {
		t.Errorf("repo records = %d, want 1", len(store.repos))
	}
	if len(store.issues) != 1 {
		t.Errorf("issue records = %d, want 1 (creation must be idempotent)", len(store.issues))
	}
	if len(indexer.calls) != 1 {
		t.Errorf("indexer triggered %d times, want 1 (first insert only)", len(indexer.calls))
	}
}

func TestHandleEventCreateSkipsClosedIssue(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	svc := newTestSync(store, gateway, &countingIndexer{})

	payload := openedPayload(42, "Bug X")
	payload.Issue.State = "closed"

	if _, err := svc.HandleEvent(context.Background(), payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(store.issues) != 0 {
		t.Error("stale payload for a closed issue must not create a record")
	}
}

func TestHandleEventCreateWithFailingSummaryStillInserts(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	// A summarizer backed by an unreachable LLM degrades to "".
	svc := NewSyncService(store, gateway, &countingIndexer{},
		NewSummaryService(store, &fakeLLM{completeErr: errors.New("llm down"), embedErr: errors.New("llm down")}, notify.Nop{}),
		&fakeLLM{embedErr: errors.New("llm down")}, notify.Nop{})

	if _, err := svc.HandleEvent(context.Background(), openedPayload(42, "Bug X")); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	issue, ok := store.issues[issueKey("org/repo", 42)]
	if !ok {
		t.Fatal("issue creation must not be blocked by a failed summary")
	}
	if issue.Summary != "" {
		t.Errorf("summary = %q, want empty fallback", issue.Summary)
	}
	if len(issue.Embedding) != 0 {
		t.Errorf("embedding should be empty when the embedder fails")
	}
}

func TestHandleEventUpdateReplacesLabels(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	svc := newTestSync(store, gateway, &countingIndexer{})

	if _, err := svc.HandleEvent(context.Background(), openedPayload(42, "Bug X", "a", "b")); err != nil {
		t.Fatalf("create: %v", err)
	}

	update := openedPayload(42, "Bug X", "c")
	update.Action = "labeled"
	if _, err := svc.HandleEvent(context.Background(), update); err != nil {
		t.Fatalf("update: %v", err)
	}

	issue := store.issues[issueKey("org/repo", 42)]
	if !hasLabels(issue.Labels, []string{"c"}) {
		t.Errorf("labels = %v, want full replacement with [c]", issue.Labels)
	}
}

func TestHandleEventUpdateZeroMatchedIsNotAnError(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	svc := newTestSync(store, gateway, &countingIndexer{})

	update := openedPayload(7, "Nothing here")
	update.Action = "edited"
	msg, err := svc.HandleEvent(context.Background(), update)
	if err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if msg != "issue not found, ignoring" {
		t.Errorf("message = %q", msg)
	}
}

func TestHandleEventRemoveDeletesIssue(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	svc := newTestSync(store, gateway, &countingIndexer{})

	if _, err := svc.HandleEvent(context.Background(), openedPayload(42, "Bug X")); err != nil {
		t.Fatalf("create: %v", err)
	}

	remove := openedPayload(42, "Bug X")
	remove.Action = "closed"
	if _, err := svc.HandleEvent(context.Background(), remove); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(store.issues) != 0 {
		t.Error("issue record should be deleted on close")
	}
	if _, ok := store.repos["org/repo"]; !ok {
		t.Error("repository record must be untouched by issue removal")
	}

	// Deleting again reports zero matches but raises no error.
	if _, err := svc.HandleEvent(context.Background(), remove); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestHandleEventUninstallCascades(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	svc := newTestSync(store, gateway, &countingIndexer{})

	if _, err := svc.HandleEvent(context.Background(), openedPayload(42, "Bug X")); err != nil {
		t.Fatalf("create: %v", err)
	}
	store.chunks = append(store.chunks, models.CodeChunk{RepoFullName: "org/repo", File: "main.go", Text: "package main"})

	removed := models.WebhookPayload{
		Action:              "removed",
		RepositoriesRemoved: []models.RepoRef{{FullName: "org/repo"}},
	}
	if _, err := svc.HandleEvent(context.Background(), removed); err != nil {
		t.Fatalf("uninstall: %v", err)
	}

	if len(store.repos) != 0 {
		t.Error("repository record should be removed")
	}
	if len(store.issues) != 0 {
		t.Error("issue records should be removed with their repository")
	}
	if len(store.chunks) != 0 {
		t.Error("vector chunks should be removed with their repository")
	}
}

func TestHandleEventInstallTracksRepositories(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{repos: map[string]models.Repository{"org/repo": testRepo()}}
	indexer := &countingIndexer{}
	svc := newTestSync(store, gateway, indexer)

	added := models.WebhookPayload{
		Action:            "added",
		RepositoriesAdded: []models.RepoRef{{FullName: "org/repo"}, {FullName: "org/ghost"}},
	}
	if _, err := svc.HandleEvent(context.Background(), added); err != nil {
		t.Fatalf("install: %v", err)
	}

	if _, ok := store.repos["org/repo"]; !ok {
		t.Error("fetchable repository should be tracked")
	}
	if _, ok := store.repos["org/ghost"]; ok {
		t.Error("unfetchable repository must be skipped, not inserted empty")
	}
	if len(indexer.calls) != 1 || indexer.calls[0] != "org/repo" {
		t.Errorf("indexer calls = %v, want exactly [org/repo]", indexer.calls)
	}
}

func TestHandleEventMissingStateRechecksLive(t *testing.T) {
	store := newMemStore()
	gateway := &fakeGateway{
		repos:      map[string]models.Repository{"org/repo": testRepo()},
		issueState: "closed",
	}
	svc := newTestSync(store, gateway, &countingIndexer{})

	payload := openedPayload(42, "Bug X")
	payload.Issue.State = ""

	if _, err := svc.HandleEvent(context.Background(), payload); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(store.issues) != 0 {
		t.Error("live recheck reported closed; no record should be created")
	}
}
