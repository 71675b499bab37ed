package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/yungbote/meetingscribe-backend/internal/platform/ctxutil"
	"github.com/yungbote/meetingscribe-backend/internal/platform/envutil"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

// Client is the language model surface used by the summarizer.
type Client interface {
	// Complete sends one system + user turn and returns the assistant text.
	Complete(ctx context.Context, system string, user string) (string, error)
}

type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	ByAzure     bool
	APIVersion  string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Provider:    strings.ToLower(envutil.String("LLM_PROVIDER", "openai")),
		Model:       envutil.String("LLM_MODEL", "gpt-4o-mini"),
		APIKey:      envutil.String("LLM_API_KEY", ""),
		BaseURL:     envutil.String("LLM_BASE_URL", ""),
		ByAzure:     envutil.Bool("LLM_AZURE", false),
		APIVersion:  envutil.String("LLM_API_VERSION", ""),
		Temperature: 0.3,
		MaxTokens:   envutil.Int("LLM_MAX_TOKENS", 1024),
		Timeout:     envutil.Duration("LLM_TIMEOUT", 2*time.Minute),
	}
}

// chatModel is the slice of eino's BaseChatModel we call.
type chatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

type client struct {
	log         *logger.Logger
	model       chatModel
	provider    string
	modelName   string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY")
	}
	m, err := newChatModel(ctxutil.Default(ctx), cfg)
	if err != nil {
		return nil, err
	}
	return newClient(log, m, cfg), nil
}

func newClient(log *logger.Logger, m chatModel, cfg Config) *client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &client{
		log:         log.With("service", "LLMClient", "provider", cfg.Provider, "model", cfg.Model),
		model:       m,
		provider:    cfg.Provider,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
}

func newChatModel(ctx context.Context, cfg Config) (chatModel, error) {
	temp := cfg.Temperature
	maxTokens := cfg.MaxTokens
	switch cfg.Provider {
	case "", "openai", "azure":
		m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			APIKey:      cfg.APIKey,
			ByAzure:     cfg.ByAzure || cfg.Provider == "azure",
			APIVersion:  cfg.APIVersion,
			MaxTokens:   &maxTokens,
			Temperature: &temp,
		})
		if err != nil {
			return nil, fmt.Errorf("openai chat model: %w", err)
		}
		return m, nil
	case "claude":
		var baseURL *string
		if cfg.BaseURL != "" {
			baseURL = &cfg.BaseURL
		}
		m, err := claude.NewChatModel(ctx, &claude.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     baseURL,
			MaxTokens:   maxTokens,
			Temperature: &temp,
		})
		if err != nil {
			return nil, fmt.Errorf("claude chat model: %w", err)
		}
		return m, nil
	case "gemini":
		gc, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
		if err != nil {
			return nil, fmt.Errorf("genai client: %w", err)
		}
		m, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client:      gc,
			Model:       cfg.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temp,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini chat model: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s", cfg.Provider)
	}
}

func (c *client) Complete(ctx context.Context, system string, user string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	msgs := make([]*schema.Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		msgs = append(msgs, &schema.Message{Role: schema.System, Content: system})
	}
	msgs = append(msgs, &schema.Message{Role: schema.User, Content: user})

	start := time.Now()
	out, err := c.model.Generate(ctx, msgs,
		model.WithTemperature(c.temperature),
		model.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("%s generate: %w", c.provider, err)
	}
	if out == nil {
		return "", fmt.Errorf("%s generate: empty response", c.provider)
	}
	c.log.Debug("completion finished", "duration_ms", time.Since(start).Milliseconds(), "chars", len(out.Content))
	return out.Content, nil
}
