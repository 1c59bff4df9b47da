package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MistralService calls the Mistral chat-completions API and hands back
// whatever JSON-like value the model produced. It never interprets the
// plan itself; that is the sanitizer's job.
type MistralService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewMistralService creates a new Mistral AI client
func NewMistralService(baseURL, apiKey, model string) *MistralService {
	return &MistralService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		// The AI call is the slowest external dependency.
		client: &http.Client{Timeout: 45 * time.Second},
	}
}

type mistralMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralChatReq struct {
	Model          string       `json:"model"`
	Messages       []mistralMsg `json:"messages"`
	Temperature    float64      `json:"temperature"`
	MaxTokens      int          `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type mistralChatResp struct {
	Choices []struct {
		Message mistralMsg `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt and returns the decoded JSON payload of
// the completion. Transport failures, non-200 statuses, empty
// completions and unparsable completion text all surface as errors;
// the caller converts them into the error-keyed shape the sanitizer
// understands.
func (m *MistralService) Complete(ctx context.Context, prompt string) (any, error) {
	if strings.TrimSpace(m.apiKey) == "" {
		return nil, errors.New("mistral: api key is required")
	}

	reqBody := mistralChatReq{
		Model:       m.model,
		Messages:    []mistralMsg{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		MaxTokens:   2000,
	}
	reqBody.ResponseFormat.Type = "json_object"

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := m.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mistral: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("Mistral API error: %d", resp.StatusCode)
	}

	var decoded mistralChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("mistral: %v", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("mistral: empty response")
	}

	text := stripCodeFences(strings.TrimSpace(decoded.Choices[0].Message.Content))
	if text == "" {
		return nil, errors.New("mistral: empty completion")
	}

	var payload any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, errors.New("Failed to parse AI response")
	}
	return payload, nil
}

// stripCodeFences removes Markdown code-fence wrapping. The model is
// asked for bare JSON but is not contractually guaranteed to comply.
func stripCodeFences(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	return strings.TrimSpace(text)
}

// BuildRepairPrompt renders the instruction prompt asking the model to
// answer with a single JSON object of the repair-plan shape.
func BuildRepairPrompt(issue string, systemInfo map[string]any) string {
	osType := "Windows"
	if v, ok := systemInfo["os"].(string); ok && v != "" {
		osType = v
	}

	return fmt.Sprintf(`
You are a computer repair technician AI. Generate a repair plan.

USER'S ISSUE: %s
SYSTEM: %s

Output valid JSON:
{
  "software": "name",
  "issue": "%s",
  "summary": "brief summary",
  "steps": [
    {
      "description": "step description",
      "command": "actual command",
      "requires_sudo": true
    }
  ],
  "estimated_time_minutes": 15,
  "needs_reboot": false
}

Generate repair plan for: %s
`, issue, osType, issue, issue)
}
