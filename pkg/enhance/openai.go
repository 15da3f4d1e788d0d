package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/BrennerSpear/clarity/pkg/errors"
	"github.com/BrennerSpear/clarity/pkg/infra"
)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You are an infrastructure analyst. Given the services of a deployment
and their dependency edges, classify each service and suggest short
descriptions and logical groups.

Respond with a JSON array only, no prose, one object per service:
[{"id": "...", "type": "...", "description": "...", "group": "..."}]

Valid types: service, database, cache, queue, storage, proxy, ui, helper.
Omit any field you are not confident about. Never invent service ids.`

// OpenAI enhances graphs with a chat-completion model.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds an OpenAI enhancer. An empty model selects
// [DefaultModel].
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "OpenAI API key is not configured")
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}, nil
}

// Enhance implements [Enhancer].
func (o *OpenAI) Enhance(ctx context.Context, g *infra.Graph) error {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: describeGraph(g)},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return errors.New(errors.ErrCodeNetwork, "chat completion returned no choices")
	}

	anns, err := ParseAnnotations(resp.Choices[0].Message.Content)
	if err != nil {
		return err
	}
	Apply(g, anns)
	return nil
}

// describeGraph renders the graph as a compact text listing for the prompt.
func describeGraph(g *infra.Graph) string {
	var b strings.Builder
	b.WriteString("Services:\n")
	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "- %s (type: %s)", n.ID, n.Type)
		if n.Description != "" {
			fmt.Fprintf(&b, ": %s", n.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nDependencies:\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "- %s -> %s (%s)\n", e.From, e.To, e.Type)
	}
	return b.String()
}

// ParseAnnotations decodes a model response into annotations. Models wrap
// JSON in markdown fences often enough that stripping them here is cheaper
// than re-prompting.
func ParseAnnotations(content string) ([]Annotation, error) {
	content = strings.TrimSpace(content)
	if after, found := strings.CutPrefix(content, "```json"); found {
		content = after
	} else if after, found := strings.CutPrefix(content, "```"); found {
		content = after
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")

	var anns []Annotation
	if err := json.Unmarshal([]byte(content), &anns); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode enhancement response")
	}
	return anns, nil
}
