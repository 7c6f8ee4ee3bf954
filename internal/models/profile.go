package models

// UserProfile is the transient match-request payload. It is never
// persisted; it only exists long enough to derive a query embedding.
type UserProfile struct {
	FirstName string   `json:"firstName" validate:"required,min=1,max=50"`
	LastName  string   `json:"lastName" validate:"required,min=1,max=50"`
	Email     string   `json:"email" validate:"required,email"`
	URLs      []string `json:"urls" validate:"omitempty,dive,url"`
	Resume    string   `json:"resume" validate:"omitempty,datauri"`
	Interests []string `json:"interests" validate:"required,min=1"`
}

// MatchResult is one formatted hit from the issue k-NN search.
type MatchResult struct {
	IssueTitle   string   `json:"issue_title"`
	RepoFullName string   `json:"repo_full_name"`
	IssueNumber  string   `json:"issue_number"`
	IssueHTMLURL string   `json:"issue_html_url"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Relevance    float64  `json:"relevance"`
}
