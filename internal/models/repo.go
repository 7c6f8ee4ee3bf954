package models

// Repository is the catalog record for a tracked GitHub repository.
// FullName ("owner/name") is the unique key; upserts replace the whole
// document so re-delivery of the same event never duplicates it.
type Repository struct {
	Name        string   `bson:"name" json:"name"`
	FullName    string   `bson:"full_name" json:"full_name"`
	HTMLURL     string   `bson:"html_url" json:"html_url"`
	Description string   `bson:"description" json:"description"`
	Stars       int      `bson:"stargazers_count" json:"stargazers_count"`
	Watchers    int      `bson:"watchers_count" json:"watchers_count"`
	Languages   []string `bson:"languages" json:"languages"`
	Topics      []string `bson:"topics" json:"topics"`
}

// IsZero reports whether the record is the gateway's "could not fetch"
// sentinel. Callers treat a zero record as "skip this operation".
func (r Repository) IsZero() bool {
	return r.FullName == ""
}

// CodeChunk is one embedded unit of repository source text. Chunks are
// scoped by RepoFullName and only ever bulk-created or bulk-deleted;
// reindexing a repository is a full drop-and-reload.
type CodeChunk struct {
	RepoFullName string    `bson:"repo_full_name" json:"repo_full_name"`
	File         string    `bson:"file" json:"file"`
	Text         string    `bson:"text" json:"text"`
	Embedding    []float32 `bson:"embedding" json:"-"`
}
