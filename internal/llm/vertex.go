package llm

import (
	"context"
	"fmt"
	"os"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

const vertexChatModel = "gemini-2.0-flash-lite-001"

// Vertex implements Client on Google Cloud: text-embedding-005 through the
// Vertex AI prediction endpoint and Gemini for completions.
type Vertex struct {
	prediction *aiplatform.PredictionClient
	gen        *genai.Client
	model      *genai.GenerativeModel
	endpoint   string
}

// NewVertex builds a provider for the given project and location.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS when set, otherwise
// application-default credentials.
func NewVertex(ctx context.Context, projectID, location string) (*Vertex, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	predOpts := append([]option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)),
	}, opts...)
	prediction, err := aiplatform.NewPredictionClient(ctx, predOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI prediction client: %w", err)
	}

	gen, err := genai.NewClient(ctx, projectID, location, opts...)
	if err != nil {
		_ = prediction.Close()
		return nil, fmt.Errorf("failed to create Vertex AI genai client: %w", err)
	}

	model := gen.GenerativeModel(vertexChatModel)
	model.SetTemperature(0.7)
	model.SetTopP(0.8)
	model.SetTopK(40)

	return &Vertex{
		prediction: prediction,
		gen:        gen,
		model:      model,
		endpoint: fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/text-embedding-005",
			projectID, location),
	}, nil
}

// Complete runs a Gemini generation. The system instruction is folded into
// the prompt ahead of the user input.
func (v *Vertex) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, genai.Text(system+"\n\n"+user))
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type")
	}
	return string(text), nil
}

// Embed generates an embedding vector for the input text using
// task_type = "RETRIEVAL_QUERY" so it aligns with document embeddings.
func (v *Vertex) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := v.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch sends all texts as instances of a single prediction request.
func (v *Vertex) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	instances := make([]*structpb.Value, 0, len(texts))
	for _, text := range texts {
		instance, err := structpb.NewStruct(map[string]interface{}{
			"content":   text,
			"task_type": "RETRIEVAL_QUERY",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create instance: %w", err)
		}
		instances = append(instances, structpb.NewStructValue(instance))
	}

	resp, err := v.prediction.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:  v.endpoint,
		Instances: instances,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	if len(resp.Predictions) != len(texts) {
		return nil, fmt.Errorf("expected %d predictions, got %d", len(texts), len(resp.Predictions))
	}

	out := make([][]float32, len(resp.Predictions))
	for i, pred := range resp.Predictions {
		embeddings := pred.GetStructValue().GetFields()["embeddings"].GetStructValue()
		values := embeddings.GetFields()["values"].GetListValue().GetValues()

		vec := make([]float32, len(values))
		for j, val := range values {
			vec[j] = float32(val.GetNumberValue())
		}
		out[i] = vec
	}
	return out, nil
}

// Close releases both Vertex AI clients.
func (v *Vertex) Close() error {
	genErr := v.gen.Close()
	if err := v.prediction.Close(); err != nil {
		return err
	}
	return genErr
}
