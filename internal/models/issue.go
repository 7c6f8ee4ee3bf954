package models

// Issue is the catalog record for an open issue, keyed by
// (RepoFullName, IssueNumber). Repository attributes are denormalized at
// write time and not kept live-synced.
type Issue struct {
	RepoName        string    `bson:"repo_name" json:"repo_name"`
	RepoFullName    string    `bson:"repo_full_name" json:"repo_full_name"`
	RepoHTMLURL     string    `bson:"repo_html_url" json:"repo_html_url"`
	RepoDescription string    `bson:"repo_description" json:"repo_description"`
	RepoStars       int       `bson:"repo_stars" json:"repo_stars"`
	RepoWatchers    int       `bson:"repo_watchers" json:"repo_watchers"`
	Languages       []string  `bson:"languages" json:"languages"`
	RepoTopics      []string  `bson:"repo_topics" json:"repo_topics"`
	IssueHTMLURL    string    `bson:"issue_html_url" json:"issue_html_url"`
	IssueNumber     int       `bson:"issue_number" json:"issue_number"`
	IssueTitle      string    `bson:"issue_title" json:"issue_title"`
	Labels          []string  `bson:"labels" json:"labels"`
	Summary         string    `bson:"summary,omitempty" json:"summary,omitempty"`
	Embedding       []float32 `bson:"embedding,omitempty" json:"-"`
	Score           float64   `bson:"score,omitempty" json:"-"`
}
