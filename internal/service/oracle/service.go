package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/orthovaidhya/vaidhya/backend/internal/config"
)

type runnable = compose.Runnable[map[string]any, *schema.Message]

// Service is the live, model-backed oracle. Each operation is a compiled
// prompt-template chain over the shared chat model.
type Service struct {
	chatModel model.ChatModel
	timeout   time.Duration

	emergency runnable
	intent    runnable
	severity  runnable
	summary   runnable
}

// NewService builds the oracle from configuration. It fails when the model
// credentials are missing or a chain does not compile; callers typically
// fall back to a disabled oracle in that case.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	svc := &Service{chatModel: chatModel, timeout: cfg.Timeout}

	chains := []struct {
		name   string
		system string
		user   string
		dst    *runnable
	}{
		{"emergency", emergencySystemPrompt, emergencyUserPrompt, &svc.emergency},
		{"intent", intentSystemPrompt, intentUserPrompt, &svc.intent},
		{"severity", severitySystemPrompt, severityUserPrompt, &svc.severity},
		{"summary", summarySystemPrompt, summaryUserPrompt, &svc.summary},
	}
	for _, c := range chains {
		r, err := compileChain(ctx, chatModel, c.system, c.user)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s chain: %w", c.name, err)
		}
		*c.dst = r
	}

	return svc, nil
}

func compileChain(ctx context.Context, chatModel model.ChatModel, system, user string) (runnable, error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	return chain.Compile(ctx)
}

func (s *Service) invoke(ctx context.Context, chain runnable, input map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	msg, err := chain.Invoke(ctx, input)
	if err != nil {
		return "", err
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("empty model response")
	}
	return msg.Content, nil
}

// EmergencyCheck asks the model for a 1/0 verdict on the text.
func (s *Service) EmergencyCheck(ctx context.Context, text string) (bool, error) {
	content, err := s.invoke(ctx, s.emergency, map[string]any{"input": text})
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(content) == "1", nil
}

// ClassifyIntent runs the NLU chain and decodes its JSON payload.
func (s *Service) ClassifyIntent(ctx context.Context, text string) (IntentResult, error) {
	content, err := s.invoke(ctx, s.intent, map[string]any{"input": text})
	if err != nil {
		return IntentResult{}, err
	}
	return parseIntentPayload(content)
}

// ClassifySeverity maps a free-text answer to a digit 1..5.
func (s *Service) ClassifySeverity(ctx context.Context, text string) (int, error) {
	content, err := s.invoke(ctx, s.severity, map[string]any{"input": text})
	if err != nil {
		return 0, err
	}
	return parseSeverityDigit(content)
}

// Summarize renders the patient record into the summary prompt and returns
// the model's free-text assessment.
func (s *Service) Summarize(ctx context.Context, record PatientRecord) (string, error) {
	encoded, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode patient record: %w", err)
	}

	content, err := s.invoke(ctx, s.summary, map[string]any{"record": string(encoded)})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// parseIntentPayload extracts the first JSON object from the model output,
// tolerating markdown code fences around it.
func parseIntentPayload(content string) (IntentResult, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return IntentResult{}, fmt.Errorf("missing json object in model output")
	}

	var result IntentResult
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &result); err != nil {
		return IntentResult{}, err
	}
	return result, nil
}

// parseSeverityDigit reads the first token of the model output as an
// integer and rejects anything outside 1..5.
func parseSeverityDigit(content string) (int, error) {
	fields := strings.Fields(strings.TrimSpace(content))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty severity output")
	}

	val, err := strconv.Atoi(strings.TrimSuffix(fields[0], "."))
	if err != nil {
		return 0, fmt.Errorf("non-numeric severity %q: %w", fields[0], err)
	}
	if val < 1 || val > 5 {
		return 0, fmt.Errorf("severity %d out of range", val)
	}
	return val, nil
}
