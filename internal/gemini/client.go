// Package gemini implements the prediction capability on Google's Gemini
// API. Prior labeled examples become few-shot chat turns; the model is asked
// for a strict JSON answer.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ailabeldev/ailabel/internal/predict"
)

const DefaultModel = "gemini-1.5-flash"

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, predict.ErrMissingCredential
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Predict implements predict.Capability.
func (c *Client) Predict(ctx context.Context, req predict.Request) (*predict.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction(req))},
	}
	model.ResponseMIMEType = "application/json"
	model.GenerationConfig.Temperature = genai.Ptr[float32](0)

	cs := model.StartChat()
	cs.History = historyTurns(req)

	resp, err := cs.SendMessage(ctx, genai.Text(req.Context.Target))
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part type from gemini")
	}

	reply, err := parseReply(string(text))
	if err != nil {
		c.logger.Debug("unparsable gemini reply", zap.String("raw", string(text)), zap.Error(err))
		return nil, err
	}
	return reply, nil
}

// systemInstruction describes the task and, for a closed vocabulary, pins
// the allowed labels.
func systemInstruction(req predict.Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your task is to label incoming payloads for topic %q.\n", req.Topic)
	if req.Vocabulary.Kind == predict.Closed {
		fmt.Fprintf(&sb, "It is a classification task with the following possible labels: %s.\n",
			strings.Join(req.Vocabulary.Values, ", "))
		sb.WriteString("Respond with exactly one of those labels.\n")
	} else {
		sb.WriteString("It is an open classification task: choose the single most fitting label.\n")
	}
	sb.WriteString(`Your response must be a JSON object of the form:
{ "label": "your-label-here", "confidence": 0.0, "rationale": "one short sentence" }
Confidence is your certainty in [0,1].`)
	return sb.String()
}

// historyTurns renders prior examples as alternating user/model turns, the
// model turns answering in the same JSON shape the reply must use.
func historyTurns(req predict.Request) []*genai.Content {
	var turns []*genai.Content
	for _, ex := range req.Context.Examples {
		answer, _ := json.Marshal(map[string]string{"label": ex.Label})
		turns = append(turns,
			&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(ex.Text)}},
			&genai.Content{Role: "model", Parts: []genai.Part{genai.Text(string(answer))}},
		)
	}
	return turns
}

// parseReply unmarshals the model's JSON answer, stripping markdown fences
// some models wrap around it. A reply that cannot be parsed is an invalid
// prediction, not a transport failure.
func parseReply(raw string) (*predict.Reply, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var out struct {
		Label      string   `json:"label"`
		Confidence *float64 `json:"confidence"`
		Rationale  string   `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, fmt.Errorf("parse model reply: %v: %w", err, predict.ErrInvalidPrediction)
	}
	if strings.TrimSpace(out.Label) == "" {
		return nil, fmt.Errorf("model reply has no label: %w", predict.ErrInvalidPrediction)
	}
	return &predict.Reply{
		Label:      out.Label,
		Confidence: out.Confidence,
		Rationale:  out.Rationale,
	}, nil
}
