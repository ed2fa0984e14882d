package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/nexusfind/backend/internal/models"
)

// Advisor produces free-text guidance. Its output never changes stored state.
type Advisor interface {
	OptimizeDescription(ctx context.Context, description string) (*models.ListingOptimization, error)
	VerificationSafeguards(ctx context.Context, req models.VerifyRequest) (*models.VerificationSafeguards, error)
}

// GenAIAdvisor asks Gemini for structured JSON answers.
type GenAIAdvisor struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

type GenAIAdvisorOptions struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint. Empty uses the default.
	BaseURL string
}

func NewGenAIAdvisor(ctx context.Context, opts GenAIAdvisorOptions, logger *zap.Logger) (*GenAIAdvisor, error) {
	if opts.APIKey == "" {
		return nil, ErrAdvisorNotConfigured
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIAdvisor{
		client: client,
		model:  opts.Model,
		logger: logger.Named("advisor"),
	}, nil
}

const optimizeInstruction = `You help people write lost-and-found listings for a campus board.
Given an item description, suggest concrete improvements that make the item easier to
identify: distinguishing marks, colors, brand, where and when it was lost or found.
Do not invent facts. Reply in plain text inside the "suggestions" field.`

const safeguardsInstruction = `You review self-reported affiliation details for a campus
lost-and-found board. Given an institution, an email address and a location, describe
sensible safeguards the user should follow when meeting to hand over items, and list any
warnings about the details provided (for example an email domain that does not look like
the institution's). Reply in plain text inside the "safeguards" and "warnings" fields.`

var optimizeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggestions": {Type: genai.TypeString},
	},
	Required: []string{"suggestions"},
}

var safeguardsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"safeguards": {Type: genai.TypeString},
		"warnings":   {Type: genai.TypeString},
	},
	Required: []string{"safeguards", "warnings"},
}

func (a *GenAIAdvisor) OptimizeDescription(ctx context.Context, description string) (*models.ListingOptimization, error) {
	req := models.OptimizeRequest{Description: description}
	if errs := req.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	var out models.ListingOptimization
	if err := a.generate(ctx, optimizeInstruction, optimizeSchema, "Item description:\n"+description, &out); err != nil {
		return nil, fmt.Errorf("optimize description: %w", err)
	}
	return &out, nil
}

func (a *GenAIAdvisor) VerificationSafeguards(ctx context.Context, req models.VerifyRequest) (*models.VerificationSafeguards, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	prompt := fmt.Sprintf("Institution: %s\nEmail: %s\nLocation: %s",
		req.Institution.DisplayName(), strings.TrimSpace(req.Email), strings.TrimSpace(req.Location))

	var out models.VerificationSafeguards
	if err := a.generate(ctx, safeguardsInstruction, safeguardsSchema, prompt, &out); err != nil {
		return nil, fmt.Errorf("verification safeguards: %w", err)
	}
	return &out, nil
}

func (a *GenAIAdvisor) generate(ctx context.Context, instruction string, schema *genai.Schema, prompt string, out any) error {
	resp, err := a.client.Models.GenerateContent(ctx,
		a.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    schema,
		},
	)
	if err != nil {
		a.logger.Warn("GenAI request failed", zap.String("model", a.model), zap.Error(err))
		return fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fmt.Errorf("GenAI returned no content")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode GenAI response: %w", err)
	}
	return nil
}
