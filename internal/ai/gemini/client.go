package gemini

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/li-responder/internal/utils"
)

const (
	defaultGenerationModel = "gemini-2.5-flash"
	defaultEmbeddingModel  = "gemini-embedding-001"
	defaultMaxRetries      = 3

	embeddingTaskType = "SEMANTIC_SIMILARITY"
	baseRetryDelay    = time.Second
	maxRetryDelay     = 30 * time.Second
)

// wait is swapped in tests to skip backoff delays.
var wait = utils.WaitFor

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Config describes the Gemini models used by the client.
type Config struct {
	APIKey          string
	GenerationModel string
	EmbeddingModel  string
	MaxRetries      int
}

// Client wraps the Google GenAI models API for text generation and
// embeddings, retrying temporary failures.
type Client struct {
	models          modelsAPI
	generationModel string
	embeddingModel  string
	maxRetries      int
	logger          *zap.Logger
}

// New creates a Client configured for the Gemini API backend.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newClient(client.Models, cfg, logger), nil
}

func newClient(models modelsAPI, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	generation := strings.TrimSpace(cfg.GenerationModel)
	if generation == "" {
		generation = defaultGenerationModel
	}

	embedding := strings.TrimSpace(cfg.EmbeddingModel)
	if embedding == "" {
		embedding = defaultEmbeddingModel
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	return &Client{
		models:          models,
		generationModel: generation,
		embeddingModel:  embedding,
		maxRetries:      retries,
		logger:          logger,
	}
}

// GenerateContent sends the prompt to Gemini and returns the joined textual response.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var resp *genai.GenerateContentResponse
	err := c.withRetry(ctx, "generate content", func() error {
		var err error
		resp, err = c.models.GenerateContent(ctx, c.generationModel, genai.Text(prompt), nil)
		return err
	})
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Embed encodes text with the configured embedding model.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text to embed must not be empty")
	}

	var resp *genai.EmbedContentResponse
	err := c.withRetry(ctx, "embed content", func() error {
		var err error
		resp, err = c.models.EmbedContent(ctx, c.embeddingModel, genai.Text(text), &genai.EmbedContentConfig{
			TaskType: embeddingTaskType,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	return resp.Embeddings[0].Values, nil
}

// Model returns the generation model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.generationModel
}

// EmbeddingModel returns the embedding model name.
func (c *Client) EmbeddingModel() string {
	if c == nil {
		return ""
	}
	return c.embeddingModel
}

func (c *Client) withRetry(ctx context.Context, op string, call func() error) error {
	var err error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err = call()
		if err == nil {
			return nil
		}

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == c.maxRetries {
			break
		}

		c.logger.Warn("gemini request failed, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if werr := wait(ctx, delay); werr != nil {
			return fmt.Errorf("%s: %w", op, werr)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

// retryDelay reports whether err is temporary and how long to back off
// before the next attempt. Quota errors asking for a long pause are not retried.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}

	if apiErr.Code != http.StatusTooManyRequests && apiErr.Code < http.StatusInternalServerError {
		return 0, false
	}

	delay := baseRetryDelay * time.Duration(math.Pow(2, float64(attempt-1)))

	if match := retryAfterPattern.FindStringSubmatch(apiErr.Message); match != nil {
		seconds, perr := strconv.ParseFloat(match[1], 64)
		if perr == nil {
			delay = time.Duration(seconds * float64(time.Second))
		}
	}

	if delay > maxRetryDelay {
		return 0, false
	}

	return delay, true
}
