package service

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

	"PsyDesk/internal/model"
)

const (
	defaultLLMModel     = "claude-sonnet-4-5-20250929"
	defaultLLMMaxTokens = 512
	llmAPIURL           = "https://api.anthropic.com/v1/messages"
	llmAPIVersion       = "2023-06-01"
)

// LLMSummarizer пишет сводку через Messages API.
type LLMSummarizer struct {
	apiKey    string
	model     string
	maxTokens int
	url       string
	client    *http.Client
}

// NewLLMSummarizer создаёт клиента модели. Пустой modelName: модель по умолчанию.
func NewLLMSummarizer(apiKey, modelName string) *LLMSummarizer {
	if modelName == "" {
		modelName = defaultLLMModel
	}
	return &LLMSummarizer{
		apiKey:    apiKey,
		model:     modelName,
		maxTokens: defaultLLMMaxTokens,
		url:       llmAPIURL,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []llmMessage `json:"messages"`
}

type llmResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type llmErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *LLMSummarizer) Summarize(ctx context.Context, a Analysis, entries []model.DiaryEntry) (string, bool, error) {
	if a.EntriesCount == 0 {
		return TemplateSummarizer{}.Summarize(ctx, a, entries)
	}
	body, err := json.Marshal(llmRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System: "Eres un asistente para psicólogos. Resume en español, en un párrafo breve y sin diagnósticos, " +
			"el estado emocional del paciente a partir de sus entradas de diario.",
		Messages: []llmMessage{{Role: "user", Content: buildPrompt(a, entries)}},
	})
	if err != nil {
		return "", false, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", llmAPIVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("calling model API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr llmErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", false, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", false, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var out llmResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", false, fmt.Errorf("decoding response: %w", err)
	}
	var parts []string
	for _, c := range out.Content {
		if c.Type == "text" && strings.TrimSpace(c.Text) != "" {
			parts = append(parts, strings.TrimSpace(c.Text))
		}
	}
	if len(parts) == 0 {
		return "", false, errors.New("empty model response")
	}
	return strings.Join(parts, "\n"), true, nil
}

func buildPrompt(a Analysis, entries []model.DiaryEntry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Periodo: %s a %s (%d días), %d entradas.\n", a.DateFrom, a.DateTo, a.Days, a.EntriesCount)
	if len(a.CommonThemes) > 0 {
		fmt.Fprintf(&sb, "Temas frecuentes: %s.\n", strings.Join(a.CommonThemes, ", "))
	}
	sb.WriteString("\nEntradas:\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "- %s [%s] %s\n", e.Date.Format(time.DateOnly), e.Mood, e.Content)
	}
	return sb.String()
}
