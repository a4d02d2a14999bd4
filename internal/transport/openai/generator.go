package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Ruchi2117/Doc-Chat-bot/internal/domain"
	"github.com/Ruchi2117/Doc-Chat-bot/internal/metrics"
)

const systemPrompt = "You are a helpful AI assistant that answers questions based on " +
	"the provided context. Keep your answers concise and relevant."

const promptTemplate = `Use the following context to answer the question. If you cannot find the answer in the context, say "I cannot find information about that in the provided context."

Context:
%s

Question:
%s

Answer:`

// Generator produces answers through an OpenAI-compatible chat completion
// API (Groq in the default configuration).
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	stream      bool
	provider    string
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Stream      bool
	Provider    string
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		stream:      cfg.Stream,
		provider:    cfg.Provider,
		logger:      cfg.Logger,
	}
}

// Generate implements domain.Generator. In streaming mode chunks arrive as
// the model produces them; otherwise the channel carries one chunk with the
// whole answer. The channel is closed when generation ends.
func (g *Generator) Generate(ctx context.Context, contextText, question string) (<-chan domain.Chunk, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, contextText, question)},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	if g.stream {
		return g.generateStream(ctx, req)
	}
	return g.generateOnce(ctx, req)
}

func (g *Generator) generateStream(ctx context.Context, req openai.ChatCompletionRequest) (<-chan domain.Chunk, error) {
	req.Stream = true

	start := time.Now()
	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return nil, g.wrapError(err)
	}

	out := make(chan domain.Chunk)
	go func() {
		defer close(out)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
				metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(time.Since(start).Seconds())
				return
			}
			if err != nil {
				metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
				g.logger.Warn("Generation stream interrupted", zap.Error(err))
				select {
				case out <- domain.Chunk{Err: g.wrapError(err)}:
				case <-ctx.Done():
				}
				return
			}

			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case out <- domain.Chunk{Text: resp.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (g *Generator) generateOnce(ctx context.Context, req openai.ChatCompletionRequest) (<-chan domain.Chunk, error) {
	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return nil, g.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(time.Since(start).Seconds())

	out := make(chan domain.Chunk, 1)
	out <- domain.Chunk{Text: resp.Choices[0].Message.Content}
	close(out)
	return out, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (g *Generator) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("generation API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrGenerationFailed)
	}
	return fmt.Errorf("generation request failed: %v: %w", err, domain.ErrGenerationFailed)
}
