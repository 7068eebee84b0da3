package generator

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	speechInputLimit = 4096

	textTemperature = 0.7
	textMaxTokens   = 1000
)

type OpenAIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	TextModel string
}

type OpenAIGenerator struct {
	baseURL    string
	httpClient *http.Client
	textModel  string
}

var _ Generator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	model := cfg.TextModel
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		httpClient: &http.Client{Timeout: timeout},
		textModel:  model,
	}
}

func (g *OpenAIGenerator) client(apiKey string) (*openai.Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	cfg := openai.DefaultConfig(apiKey)
	if g.baseURL != "" {
		cfg.BaseURL = g.baseURL
	}
	cfg.HTTPClient = g.httpClient
	return openai.NewClientWithConfig(cfg), nil
}

func (g *OpenAIGenerator) GenerateText(ctx context.Context, topic, channel, systemPrompt, apiKey string) (string, error) {
	client, err := g.client(apiKey)
	if err != nil {
		return "", err
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(topic, channel)},
		},
		Temperature: textTemperature,
		MaxTokens:   textMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *OpenAIGenerator) GenerateImage(ctx context.Context, topic, channel, apiKey string) ([]byte, error) {
	client, err := g.client(apiKey)
	if err != nil {
		return nil, err
	}

	resp, err := client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         imagePrompt(topic, channel),
		Model:          openai.CreateImageModelDallE3,
		Size:           openai.CreateImageSize1024x1024,
		Quality:        openai.CreateImageQualityStandard,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrEmptyResponse
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}

func (g *OpenAIGenerator) GenerateSpeech(ctx context.Context, text, apiKey string) ([]byte, error) {
	client, err := g.client(apiKey)
	if err != nil {
		return nil, err
	}

	resp, err := client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          truncateRunes(text, speechInputLimit),
		Voice:          openai.VoiceAlloy,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyResponse
	}
	return audio, nil
}

func truncateRunes(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
