package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/openmatchhq/open-match/server/internal/models"
)

// BulkInsertChunks loads a repository's embedded chunks in one write.
// The vectorization pipeline treats a failure here as abandoning the whole
// run, so there is no per-chunk retry.
func (c *CatalogMongo) BulkInsertChunks(ctx context.Context, chunks []models.CodeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]interface{}, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chunk
	}
	_, err := c.chunkCol.InsertMany(ctx, docs)
	return err
}

// DeleteChunksForRepo drops every chunk tagged with the repository name.
// Used both on repository removal and to sweep a partially indexed run.
func (c *CatalogMongo) DeleteChunksForRepo(ctx context.Context, repoFullName string) (int64, error) {
	result, err := c.chunkCol.DeleteMany(ctx, bson.M{"repo_full_name": repoFullName})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// SearchChunks grabs the most similar source chunks for one repository,
// for use as RAG context. The repo-name filter is part of the vector query.
func (c *CatalogMongo) SearchChunks(ctx context.Context, repoFullName string, queryVec []float32, k int) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: c.chunkIdx},
			{Key: "queryVector", Value: queryVec},
			{Key: "path", Value: "embedding"},
			{Key: "numCandidates", Value: k * 10},
			{Key: "limit", Value: k},
			{Key: "filter", Value: bson.M{"repo_full_name": repoFullName}},
		}}},
		{{Key: "$project", Value: bson.M{
			"text": 1,
		}}},
	}

	cur, err := c.chunkCol.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	type chunk struct {
		Text string `bson:"text"`
	}
	var out []chunk
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	texts := make([]string, len(out))
	for i, ch := range out {
		texts[i] = ch.Text
	}
	return texts, nil
}
