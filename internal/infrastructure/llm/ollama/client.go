package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/resilience"
	"golang.org/x/time/rate"
)

const (
	operationTags     = "ollama.tags"
	operationGenerate = "ollama.generate"
)

type Config struct {
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	RateBurst int
}

func (c Config) withDefaults() Config {
	out := c
	if out.Timeout <= 0 {
		out.Timeout = 120 * time.Second
	}
	if out.Temperature <= 0 {
		out.Temperature = 0.3
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = 4000
	}
	if out.RateBurst <= 0 {
		out.RateBurst = 1
	}
	return out
}

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	logger     *slog.Logger

	temperature float64
	maxTokens   int
}

func New(cfg Config, executor *resilience.Executor, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		limiter:     limiter,
		executor:    executor,
		logger:      logger,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Classifier asks a local Ollama model for a sentiment judgement and returns
// the raw model text. Interpreting that text is the pipeline's job.
type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// IsReady reports whether the server answers and has the configured model pulled.
func (c *Classifier) IsReady(ctx context.Context) bool {
	var tags tagsResponse
	if err := c.client.getJSON(ctx, "/api/tags", &tags, operationTags); err != nil {
		c.client.logger.Warn("classifier_not_ready", "error", err)
		return false
	}
	for _, m := range tags.Models {
		if modelMatches(c.client.model, m.Name) || modelMatches(c.client.model, m.Model) {
			return true
		}
	}
	c.client.logger.Warn("classifier_model_missing", "model", c.client.model, "available", len(tags.Models))
	return false
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system"`
	Prompt  string          `json:"prompt"`
	Format  string          `json:"format"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (c *Classifier) Classify(ctx context.Context, req domain.ClassifyRequest) (string, error) {
	payload := generateRequest{
		Model:  c.client.model,
		System: systemPrompt,
		Prompt: buildClassificationPrompt(req),
		Format: "json",
		Stream: false,
		Options: generateOptions{
			Temperature: c.client.temperature,
			NumPredict:  c.client.maxTokens,
		},
	}

	out, err := resilience.Run(ctx, c.client.executor, operationGenerate, func(callCtx context.Context) (string, error) {
		var resp generateResponse
		if err := c.client.postJSON(callCtx, "/api/generate", payload, &resp, "generate"); err != nil {
			return "", err
		}
		return strings.TrimSpace(resp.Response), nil
	}, classifyOllamaError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(operationGenerate, err)
	}
	return out, nil
}

// modelMatches treats "llama3" and "llama3:latest" as the same model.
func modelMatches(want, have string) bool {
	if want == "" || have == "" {
		return false
	}
	if want == have {
		return true
	}
	if !strings.Contains(want, ":") {
		return have == want+":latest"
	}
	return false
}
