package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const bedrockAnthropicVersion = "bedrock-2023-05-31"

// BedrockInvoker is the subset of the Bedrock runtime client used here.
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockConfig configures Claude models hosted on AWS Bedrock.
type BedrockConfig struct {
	Region string
	Model  string // default: "anthropic.claude-3-haiku-20240307-v1:0"
}

// Bedrock invokes Anthropic models through AWS Bedrock.
type Bedrock struct {
	client BedrockInvoker
	model  string
}

// NewBedrock loads the default AWS credential chain for the region.
func NewBedrock(ctx context.Context, cfg BedrockConfig) (*Bedrock, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return NewBedrockWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg.Model), nil
}

// NewBedrockWithClient wraps an existing runtime client.
func NewBedrockWithClient(client BedrockInvoker, model string) *Bedrock {
	if model == "" {
		model = "anthropic.claude-3-haiku-20240307-v1:0"
	}
	return &Bedrock{client: client, model: model}
}

type bedrockClaudeRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float64            `json:"temperature"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

func (b *Bedrock) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = b.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 256
	}
	msgs, primed := toAnthropicMessages(req)

	body, err := json.Marshal(bedrockClaudeRequest{
		AnthropicVersion: bedrockAnthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      req.Temperature,
		System:           req.System,
		Messages:         msgs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling bedrock request: %w", err)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(model),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("invoking bedrock model: %w", err)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return nil, fmt.Errorf("parsing bedrock response: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		text.WriteString(block.Text)
	}
	content := text.String()
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCompletion
	}
	if primed && !strings.HasPrefix(strings.TrimSpace(content), "{") {
		content = "{" + content
	}

	return &ChatResponse{
		Content:      content,
		Model:        model,
		FinishReason: resp.StopReason,
	}, nil
}
