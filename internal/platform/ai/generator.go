// Package ai generates draft clinical notes from session context through an
// external chat-completion API. The output is advisory text a clinician
// edits before signing; it is never validated against a template schema.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned when no API credential is set.
var ErrNotConfigured = errors.New("ai: no API key configured")

// TemplateData describes a custom template's shape for the prompt.
type TemplateData struct {
	Structure string   `json:"structure,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

// NoteRequest is the context a generation call works from.
type NoteRequest struct {
	PatientInfo        string        `json:"patientInfo"`
	SessionType        string        `json:"sessionType"`
	Transcript         string        `json:"transcript,omitempty"`
	TemplateData       *TemplateData `json:"templateData,omitempty"`
	CustomInstructions string        `json:"customInstructions,omitempty"`
}

// Config holds generator settings, sourced from the injected application
// config — never from a literal in code.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float32
	MaxTokens   int
}

type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator builds prompts and calls the completion API.
type Generator struct {
	client completionClient
	cfg    Config
	logger zerolog.Logger
}

// NewGenerator constructs a Generator. A missing API key is not an error
// here: GenerateNote reports it per call, so the rest of the application
// runs without a credential.
func NewGenerator(cfg Config, logger zerolog.Logger) *Generator {
	g := &Generator{cfg: cfg, logger: logger}
	if cfg.APIKey != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			cc.BaseURL = cfg.BaseURL
		}
		g.client = openai.NewClientWithConfig(cc)
	}
	return g
}

// Configured reports whether a credential is set.
func (g *Generator) Configured() bool {
	return g.client != nil
}

// GenerateNote builds the prompt and requests a draft note. Progress is
// reported at fixed milestones through the optional callback; it is UX
// cosmetic only. Upstream errors are surfaced with their message attached,
// never swallowed into an empty result. Cancelling ctx aborts the call.
func (g *Generator) GenerateNote(ctx context.Context, req NoteRequest, progress func(int)) (string, error) {
	if progress == nil {
		progress = func(int) {}
	}
	if !g.Configured() {
		return "", ErrNotConfigured
	}

	progress(10)
	prompt := buildPrompt(req)
	progress(20)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		g.logger.Error().Err(err).Str("session_type", req.SessionType).Msg("note generation failed")
		return "", fmt.Errorf("ai: generation request failed: %w", err)
	}
	progress(80)

	if len(resp.Choices) == 0 {
		return "", errors.New("ai: completion returned no choices")
	}
	progress(100)
	return resp.Choices[0].Message.Content, nil
}

// buildPrompt assembles: fixed preamble, patient info, optional transcript,
// note-type instructions, optional custom instructions, fixed quality
// guidelines — in that order.
func buildPrompt(req NoteRequest) string {
	var b strings.Builder
	b.WriteString(promptPreamble)

	b.WriteString("PATIENT INFORMATION:\n")
	b.WriteString(req.PatientInfo)
	b.WriteString("\n\n")

	if strings.TrimSpace(req.Transcript) != "" {
		b.WriteString("SESSION TRANSCRIPT/AUDIO:\n")
		b.WriteString(req.Transcript)
		b.WriteString("\n\n")
	}

	b.WriteString("Note Type: ")
	b.WriteString(strings.ToUpper(req.SessionType))
	b.WriteString("\n")

	switch {
	case req.SessionType == "soap":
		b.WriteString(soapInstructions)
	case req.SessionType == "dap":
		b.WriteString(dapInstructions)
	case req.TemplateData != nil:
		structure := req.TemplateData.Structure
		if structure == "" {
			structure = "Custom format"
		}
		b.WriteString("Custom Template Structure:\n")
		b.WriteString(structure)
		b.WriteString("\n\nPlease follow this exact template structure while filling in appropriate clinical content based on the patient information and session transcript.\n")
		if len(req.TemplateData.Fields) > 0 {
			b.WriteString("The note must include these specific fields: ")
			b.WriteString(strings.Join(req.TemplateData.Fields, ", "))
			b.WriteString("\n\n")
		}
	default:
		b.WriteString(genericInstructions)
	}

	if req.CustomInstructions != "" {
		b.WriteString("CUSTOM INSTRUCTIONS:\n")
		b.WriteString(req.CustomInstructions)
		b.WriteString("\n\n")
	}

	b.WriteString(qualityGuidelines)
	return b.String()
}
