package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ledongthuc/pdf"

	"github.com/openmatchhq/open-match/server/internal/llm"
	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/notify"
)

const profileSystemPrompt = `You are an AI assistant tasked with providing a comprehensive summary of a user. You are given a user's interests, resume text and/or their GitHub, LinkedIn and project links.
Based on this information emit only search-ready keywords describing the user's interests: languages, frameworks, tools and topics, suitable for a semantic search over a catalog of open-source issues. Keep it under 300 words.`

// fallbackProfileSummary keeps the matcher usable when the completion
// service is down.
const fallbackProfileSummary = `Languages: Python, GoLang, JavaScript, Dart.
Frameworks & Tools: LangChain, Flask, React, Kafka, Redis, MongoDB, Firebase, Docker, Kubernetes.
Topics of Interest: AI-powered applications, microservices, cloud infrastructure, CI/CD pipelines, backend architecture, LLM integrations, tech.`

const pdfDataPrefix = "data:application/pdf;base64,"

// ProfileService validates a submitted profile and converts it into a
// single query embedding.
type ProfileService struct {
	llm      llm.Client
	validate *validator.Validate
	notif    notify.Notifier
}

// NewProfileService wires the completion/embedding provider.
func NewProfileService(client llm.Client, notif notify.Notifier) *ProfileService {
	return &ProfileService{
		llm:      client,
		validate: validator.New(),
		notif:    notif,
	}
}

// Validate checks the profile's shape: name length bounds, email format,
// optional URL list, optional base64-PDF resume, at least one interest.
func (p *ProfileService) Validate(profile models.UserProfile) error {
	return p.validate.Struct(profile)
}

// EmbedProfile summarizes the profile through the completion service and
// embeds the summary. A completion failure falls back to a fixed summary;
// an embedding failure falls back to an empty vector, which the matcher
// treats as "no results".
func (p *ProfileService) EmbedProfile(ctx context.Context, profile models.UserProfile) []float32 {
	summary := p.summarize(ctx, profile)

	vec, err := p.llm.Embed(ctx, summary)
	if err != nil {
		p.notif.Warning(fmt.Sprintf("failed to embed profile summary: %v", err))
		return []float32{}
	}
	return vec
}

func (p *ProfileService) summarize(ctx context.Context, profile models.UserProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Interests: %s\n", strings.Join(profile.Interests, ", "))
	if len(profile.URLs) > 0 {
		fmt.Fprintf(&sb, "URLs: %s\n", strings.Join(profile.URLs, ", "))
	}
	if resume := p.resumeText(profile.Resume); resume != "" {
		fmt.Fprintf(&sb, "Resume Text Extracted from PDF:\n%s\n", resume)
	}

	summary, err := p.llm.Complete(ctx, profileSystemPrompt, sb.String())
	if err != nil {
		p.notif.Warning(fmt.Sprintf("profile summary generation failed: %v", err))
		return fallbackProfileSummary
	}
	return summary
}

// resumeText decodes the optional base64 PDF and extracts its plain text.
// Any decoding or parsing problem degrades to an empty string.
func (p *ProfileService) resumeText(encoded string) string {
	if encoded == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(encoded, pdfDataPrefix))
	if err != nil {
		p.notif.Warning(fmt.Sprintf("failed to decode resume: %v", err))
		return ""
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		p.notif.Warning(fmt.Sprintf("failed to open resume PDF: %v", err))
		return ""
	}
	text, err := reader.GetPlainText()
	if err != nil {
		p.notif.Warning(fmt.Sprintf("failed to extract resume text: %v", err))
		return ""
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, text); err != nil {
		return ""
	}
	return sb.String()
}
