package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mvoss/signalbridge/internal/domain"
)

const systemPrompt = `You are a trading-signal extraction engine.
Classify the message as FOREX, BINARY, or NONE.
- FOREX signals carry numeric TP and SL levels.
- BINARY signals carry expiration, PUT/CALL, GALE, or OTC cues.
- Normalize direction: PUT and RED mean SELL; CALL and GREEN mean BUY.
Respond with a single JSON object, no prose, shaped as:
{"type":"FOREX|BINARY|NONE","symbol":"...","action":"BUY|SELL",
"entry":0,"take_profits":[0],"stop_loss":0,"expiry_minutes":0,"gale_steps":0}
Omit fields you cannot extract. Use type NONE when the message is not a trade signal.`

// OpenAIExtractor implements domain.SignalParser over the chat-completions
// API. Model output is parsed strictly as data: anything that is not the
// expected JSON object is an extraction failure, never evaluated further.
type OpenAIExtractor struct {
	api    *resty.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIExtractor(baseURL, apiKey, model string, logger *zap.Logger) *OpenAIExtractor {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	api := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(60 * time.Second)

	return &OpenAIExtractor{api: api, model: model, logger: logger}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// signalPayload is the strict wire shape of the model's answer. Pointers
// distinguish "absent" from "zero" so validation can fail closed.
type signalPayload struct {
	Type          string    `json:"type"`
	Symbol        string    `json:"symbol"`
	Action        string    `json:"action"`
	Entry         *float64  `json:"entry"`
	TakeProfits   []float64 `json:"take_profits"`
	StopLoss      *float64  `json:"stop_loss"`
	ExpiryMinutes *int      `json:"expiry_minutes"`
	GaleSteps     *int      `json:"gale_steps"`
}

func (e *OpenAIExtractor) Parse(ctx context.Context, raw string) (*domain.TradeSignal, error) {
	var result chatResponse
	resp, err := e.api.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: e.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: "Analyze: " + raw},
			},
			Temperature:    0,
			ResponseFormat: &respFormat{Type: "json_object"},
		}).
		SetResult(&result).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("model call failed: %s", resp.Status())
	}
	if result.Error != nil {
		return nil, fmt.Errorf("model call failed: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	return decodePayload(result.Choices[0].Message.Content)
}

// decodePayload parses the model's answer into a TradeSignal. Markdown fences
// are tolerated; everything else must be the documented JSON object.
func decodePayload(content string) (*domain.TradeSignal, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var payload signalPayload
	dec := json.NewDecoder(strings.NewReader(content))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: unparseable model output: %v", domain.ErrInvalidSignal, err)
	}

	switch strings.ToUpper(payload.Type) {
	case "NONE", "":
		return nil, domain.ErrNoSignal
	case "FOREX":
		return buildForex(payload)
	case "BINARY":
		return buildBinary(payload)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidSignal, payload.Type)
	}
}

func buildForex(p signalPayload) (*domain.TradeSignal, error) {
	action, ok := domain.NormalizeAction(p.Action)
	if !ok {
		return nil, fmt.Errorf("%w: action %q", domain.ErrInvalidSignal, p.Action)
	}
	if p.Entry == nil || p.StopLoss == nil || len(p.TakeProfits) == 0 {
		return nil, fmt.Errorf("%w: forex signal missing entry/tp/sl", domain.ErrInvalidSignal)
	}

	return &domain.TradeSignal{
		Class:       domain.ClassForex,
		Symbol:      p.Symbol,
		Action:      action,
		Entry:       *p.Entry,
		TakeProfits: p.TakeProfits,
		StopLoss:    *p.StopLoss,
	}, nil
}

func buildBinary(p signalPayload) (*domain.TradeSignal, error) {
	action, ok := domain.NormalizeAction(p.Action)
	if !ok {
		return nil, fmt.Errorf("%w: action %q", domain.ErrInvalidSignal, p.Action)
	}

	sig := &domain.TradeSignal{
		Class:  domain.ClassBinary,
		Symbol: p.Symbol,
		Action: action,
	}
	if p.ExpiryMinutes != nil {
		sig.ExpiryMinutes = *p.ExpiryMinutes
	}
	if p.GaleSteps != nil {
		sig.GaleSteps = *p.GaleSteps
	}
	return sig, nil
}
