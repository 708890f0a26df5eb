// ABOUTME: Sample record generator for seeding the REST backend.
// ABOUTME: Uses OpenAI when a key is configured, otherwise falls back to schema-driven static data.

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/2389/joinlab/internal/resource"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-5-mini"

// Generator creates sample records using OpenAI or falls back to static data.
type Generator struct {
	client *openai.Client
	useAI  bool
	model  string
}

// NewGenerator creates a generator. An empty apiKey selects static data.
func NewGenerator(apiKey, model string) *Generator {
	if apiKey == "" {
		log.Println("No OpenAI API key configured, using static fallback data")
		return &Generator{model: modelOrDefault(model)}
	}
	return newGeneratorWithConfig(openai.DefaultConfig(apiKey), model)
}

func newGeneratorWithConfig(cfg openai.ClientConfig, model string) *Generator {
	g := &Generator{
		client: openai.NewClientWithConfig(cfg),
		useAI:  true,
		model:  modelOrDefault(model),
	}
	log.Printf("OpenAI API key found, using AI-generated data with model: %s", g.model)
	return g
}

func modelOrDefault(model string) string {
	if model == "" {
		return DefaultModel
	}
	return model
}

// UsesAI reports whether records come from OpenAI.
func (g *Generator) UsesAI() bool {
	return g.useAI
}

// Records returns count sample records for schema. AI failures fall back to
// static records so seeding always has data to send.
func (g *Generator) Records(ctx context.Context, schema resource.Schema, count int) []resource.Record {
	if count <= 0 {
		return nil
	}
	if !g.useAI {
		return StaticRecords(schema, count)
	}

	records, err := g.generate(ctx, schema, count)
	if err != nil {
		log.Printf("  ✗ Failed to generate %s: %v", schema.Name, err)
		return StaticRecords(schema, count)
	}
	if len(records) == 0 {
		return StaticRecords(schema, count)
	}
	return records
}

func (g *Generator) generate(ctx context.Context, schema resource.Schema, count int) ([]resource.Record, error) {
	var fields strings.Builder
	for _, f := range schema.Fields {
		fmt.Fprintf(&fields, "- %s (%s, %s", f.Key, f.Kind, f.Label)
		if f.Min != nil && f.Max != nil {
			fmt.Fprintf(&fields, ", between %g and %g", *f.Min, *f.Max)
		}
		if !f.Required {
			fields.WriteString(", may be null")
		}
		fields.WriteString(")\n")
	}

	prompt := fmt.Sprintf(`Generate %d realistic rows for the "%s" table of a small university database.
Each row has these fields:
%s
Return as JSON array of objects using exactly those keys. Times use HH:MM (24h).
Day names are one of Mon, Tue, Wed, Thu, Fri. Numeric ids referencing other tables
must be between 1 and %d.`, count, schema.Label, fields.String(), count)

	rows, err := callOpenAI[[]map[string]any](ctx, g.client, g.model, prompt)
	if err != nil {
		return nil, err
	}

	records := make([]resource.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, sanitize(schema, row))
	}
	return records, nil
}

// sanitize keeps only the schema's form fields and turns integral JSON
// numbers into int64 so they reach the backend without a fraction.
func sanitize(schema resource.Schema, row map[string]any) resource.Record {
	rec := make(resource.Record, len(schema.Fields))
	for _, f := range schema.Fields {
		v, ok := row[f.Key]
		if !ok {
			continue
		}
		if x, isFloat := v.(float64); isFloat && f.Kind == resource.KindNumber && x == math.Trunc(x) {
			v = int64(x)
		}
		rec[f.Key] = v
	}
	return rec
}

func callOpenAI[T any](ctx context.Context, client *openai.Client, model, prompt string) (T, error) {
	var result T

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a data generator. Always respond with valid JSON only, no markdown or explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return result, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result, nil
}
