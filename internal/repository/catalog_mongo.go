// Package repository is the Mongo-backed catalog store. Every operation is a
// single-document (or single delete-many) atomic step; there is no
// multi-document transaction, so callers must tolerate the window between a
// repository upsert and its dependent issue write.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/openmatchhq/open-match/server/internal/models"
)

// UpsertOutcome discriminates what UpsertRepository actually did. The sync
// controller triggers vectorization only on UpsertInserted, which is the
// mechanism that avoids re-indexing on every metadata refresh.
type UpsertOutcome int

const (
	UpsertFailed UpsertOutcome = iota
	UpsertInserted
	UpsertReplaced
)

// CatalogMongo owns the repo, issue and source-chunk collections.
//
// Expected schema:
//
//	repo
//	  { full_name (unique), name, html_url, description, stargazers_count,
//	    watchers_count, languages: [str], topics: [str] }
//
//	issues_bot_gen
//	  { repo_full_name + issue_number (unique pair), issue_title,
//	    issue_html_url, labels: [str], summary, embedding: []float32,
//	    denormalized repo_* fields }
//
//	repo_chunks
//	  { repo_full_name, file, text, embedding: []float32 }
type CatalogMongo struct {
	repoCol  *mongo.Collection
	issueCol *mongo.Collection
	chunkCol *mongo.Collection
	issueIdx string // Atlas Vector Search index on issues_bot_gen.embedding
	chunkIdx string // Atlas Vector Search index on repo_chunks.embedding
}

// NewCatalog wires the collections.
func NewCatalog(db *mongo.Database) *CatalogMongo {
	return &CatalogMongo{
		repoCol:  db.Collection("repo"),
		issueCol: db.Collection("issues_bot_gen"),
		chunkCol: db.Collection("repo_chunks"),
		issueIdx: "issuesSemanticSearch",
		chunkIdx: "code_chunk_index",
	}
}

// UpsertRepository matches by full name, replacing all fields when found and
// inserting when not. It never duplicates a repository record.
func (c *CatalogMongo) UpsertRepository(ctx context.Context, rec models.Repository) (UpsertOutcome, error) {
	result, err := c.repoCol.UpdateOne(ctx,
		bson.M{"full_name": rec.FullName},
		bson.M{"$set": rec},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return UpsertFailed, err
	}
	if result.UpsertedID != nil {
		return UpsertInserted, nil
	}
	return UpsertReplaced, nil
}

// RemoveRepository deletes the repository record by full name and cascades
// to its issues and vector chunks. Returns how many repo records matched.
func (c *CatalogMongo) RemoveRepository(ctx context.Context, fullName string) (int64, error) {
	result, err := c.repoCol.DeleteOne(ctx, bson.M{"full_name": fullName})
	if err != nil {
		return 0, err
	}
	if _, err := c.DeleteAllIssuesForRepo(ctx, fullName); err != nil {
		return result.DeletedCount, err
	}
	if _, err := c.DeleteChunksForRepo(ctx, fullName); err != nil {
		return result.DeletedCount, err
	}
	return result.DeletedCount, nil
}

// InsertIssue writes an issue record keyed by (repo full name, issue number).
// It is deliberately an upsert rather than a bare insert so duplicate or
// out-of-order "opened" deliveries stay idempotent.
func (c *CatalogMongo) InsertIssue(ctx context.Context, issue models.Issue) error {
	_, err := c.issueCol.UpdateOne(ctx,
		bson.M{"repo_full_name": issue.RepoFullName, "issue_number": issue.IssueNumber},
		bson.M{"$set": issue},
		options.Update().SetUpsert(true),
	)
	return err
}

// DeleteIssue removes one issue by key and reports the deleted count.
// A zero count is the caller's signal of a possible duplicate delivery.
func (c *CatalogMongo) DeleteIssue(ctx context.Context, repoFullName string, issueNumber int) (int64, error) {
	result, err := c.issueCol.DeleteOne(ctx,
		bson.M{"repo_full_name": repoFullName, "issue_number": issueNumber})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// DeleteAllIssuesForRepo removes every issue belonging to the repository.
func (c *CatalogMongo) DeleteAllIssuesForRepo(ctx context.Context, repoFullName string) (int64, error) {
	result, err := c.issueCol.DeleteMany(ctx, bson.M{"repo_full_name": repoFullName})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// ReplaceIssueFields overwrites title, url and the full label list of one
// issue. Labels always fully supersede the stored list; the summary and
// denormalized repo fields are untouched. Reports the matched count.
func (c *CatalogMongo) ReplaceIssueFields(ctx context.Context, repoFullName string, issueNumber int, title, htmlURL string, labels []string) (int64, error) {
	result, err := c.issueCol.UpdateOne(ctx,
		bson.M{"repo_full_name": repoFullName, "issue_number": issueNumber},
		bson.M{"$set": bson.M{
			"issue_title":    title,
			"issue_html_url": htmlURL,
			"labels":         labels,
		}},
	)
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

// ListIssues returns the whole catalog.
func (c *CatalogMongo) ListIssues(ctx context.Context) ([]models.Issue, error) {
	cur, err := c.issueCol.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var issues []models.Issue
	if err := cur.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// VectorSearchIssues performs a K-NN search across issue embeddings.
func (c *CatalogMongo) VectorSearchIssues(ctx context.Context, queryVec []float32, k int) ([]models.Issue, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: c.issueIdx},
			{Key: "queryVector", Value: queryVec},
			{Key: "path", Value: "embedding"},
			{Key: "numCandidates", Value: 100},
			{Key: "limit", Value: k},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "embedding", Value: 0}, // omit heavy field
		}}},
	}

	cur, err := c.issueCol.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var issues []models.Issue
	if err := cur.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}
