package models

// WebhookPayload is the subset of a GitHub event body the sync controller
// acts on. Fields absent from a given event type stay nil.
type WebhookPayload struct {
	Action              string      `json:"action"`
	Issue               *IssueEvent `json:"issue,omitempty"`
	Repository          *RepoRef    `json:"repository,omitempty"`
	RepositoriesAdded   []RepoRef   `json:"repositories_added,omitempty"`
	RepositoriesRemoved []RepoRef   `json:"repositories_removed,omitempty"`
}

// IssueEvent mirrors the issue object GitHub embeds in issue webhooks.
type IssueEvent struct {
	Number  int     `json:"number"`
	Title   string  `json:"title"`
	State   string  `json:"state"`
	HTMLURL string  `json:"html_url"`
	Labels  []Label `json:"labels"`
}

// Label is a GitHub issue label. Labels are a set at the source, so the
// name list carries no duplicates.
type Label struct {
	Name string `json:"name"`
}

// LabelNames flattens the label objects into their names, preserving
// GitHub's order.
func (e IssueEvent) LabelNames() []string {
	names := make([]string, 0, len(e.Labels))
	for _, l := range e.Labels {
		names = append(names, l.Name)
	}
	return names
}

// RepoRef identifies a repository inside a webhook payload.
type RepoRef struct {
	FullName string `json:"full_name"`
}
