package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	apperr "github.com/yungbote/skilltrack-backend/internal/pkg/errors"
	"github.com/yungbote/skilltrack-backend/internal/pkg/logger"
	"github.com/yungbote/skilltrack-backend/internal/utils"
)

const generatorSystemPrompt = `You are a learning-path assistant for software engineers returning to the industry.
Given a technology and the learner's background, suggest between 3 and 10 concrete study topics.
Respond with a JSON object of the shape:
{"topics":[{"title":"...","description":"...","practice_links":[{"title":"...","url":"...","difficulty":"Easy|Medium|Hard"}]}]}
Titles must be short and specific. At most 5 practice links per topic. Do not repeat topics the learner has already completed.`

type openAIGenerator struct {
	log     *logger.Logger
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator builds the production TopicGenerator on the
// OpenAI chat-completions API. The timeout bounds each attempt; one
// internal retry is made on transient failures.
func NewOpenAIGenerator(log *logger.Logger, timeout time.Duration) (TopicGenerator, error) {
	apiKey := strings.TrimSpace(utils.GetEnv("OPENAI_API_KEY", "", log))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	model := utils.GetEnv("OPENAI_MODEL", openai.GPT4oMini, log)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(utils.GetEnv("OPENAI_BASE_URL", "", log)); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &openAIGenerator{
		log:     log.With("service", "OpenAIGenerator"),
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}, nil
}

func (g *openAIGenerator) Model() string { return g.model }

type generatorEnvelope struct {
	Topics []CandidateTopic `json:"topics"`
}

func (g *openAIGenerator) GenerateTopics(ctx context.Context, gc GenerationContext) ([]CandidateTopic, error) {
	payload := map[string]any{
		"technology":       gc.Technology,
		"experience_level": gc.ExperienceLevel,
		"years_away":       gc.YearsAway,
	}
	if gc.Hint != "" {
		payload["hint"] = gc.Hint
	}
	if len(gc.CompletedTitles) > 0 {
		payload["completed_titles"] = gc.CompletedTitles
	}
	userMsg, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: generatorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(userMsg)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	content, err := g.callWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	var envelope generatorEnvelope
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		return nil, apperr.NewProviderContract(fmt.Sprintf("unparseable response: %v", err))
	}
	return envelope.Topics, nil
}

// callWithRetry runs one bounded attempt and retries exactly once on a
// transient failure. A canceled parent context is never retried.
func (g *openAIGenerator) callWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if ctx.Err() != nil {
			return "", apperr.NewProviderUnavailable(ctx.Err())
		}
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		resp, err := g.client.CreateChatCompletion(callCtx, req)
		cancel()
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", apperr.NewProviderContract("no choices in response")
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err
		if !isTransientProviderErr(err) {
			break
		}
		g.log.Warn("provider call failed, retrying once", "attempt", attempt+1, "error", err)
	}
	return "", apperr.NewProviderUnavailable(lastErr)
}

func isTransientProviderErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.HTTPStatusCode
		return code == 408 || code == 429 || (code >= 500 && code <= 599)
	}
	return false
}
