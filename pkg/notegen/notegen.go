// Package notegen запрашивает короткие учебные заметки у OpenAI-совместимого сервиса.
package notegen

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
	"unicode/utf8"
)

// ErrMissingCredential ключ API не задан
var ErrMissingCredential = errors.New("completion api key missing")

// ErrNoContent в ответе нет текста
var ErrNoContent = errors.New("no content in response")

const (
	systemPrompt = "You are a teacher making short, exam-friendly notes."
	userPrompt   = "Generate a clear, short study note about: %s"
	temperature  = 0.2
	maxTokens    = 600
	rawLimit     = 2000
)

// Config параметры клиента
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client клиент генератора заметок
type Client struct {
	cfg  Config
	http *http.Client
}

// New создает клиента
func New(cfg Config) *Client {
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// APIError ответ сервиса с кодом ошибки
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion api returned %d: %s", e.Status, e.Message)
}

// Generate отправляет один запрос и возвращает текст заметки
func (c *Client) Generate(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", errors.New("topic is required")
	}
	if c.cfg.APIKey == "" {
		return "", ErrMissingCredential
	}

	body, err := json.Marshal(completionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPrompt, topic)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Message: errorMessage(raw)}
	}

	content, ok := ExtractContent(raw)
	if !ok {
		return "", ErrNoContent
	}
	return content, nil
}

// errorMessage достает error.message, иначе возвращает тело как есть
func errorMessage(raw []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return truncate(strings.TrimSpace(string(raw)), rawLimit)
}

// ExtractContent достает текст из ответа любой из поддерживаемых форм
func ExtractContent(raw []byte) (string, bool) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		s := strings.TrimSpace(string(raw))
		return s, s != ""
	}
	if data == nil {
		return "", false
	}
	if s, ok := data.(string); ok {
		return s, s != ""
	}

	if obj, ok := data.(map[string]any); ok {
		if choices, ok := obj["choices"].([]any); ok && len(choices) > 0 {
			if first, ok := choices[0].(map[string]any); ok {
				if s := nestedString(first, "message", "content"); s != "" {
					return s, true
				}
				if s := nestedString(first, "delta", "content"); s != "" {
					return s, true
				}
			}
		}
		if s, ok := obj["output_text"].(string); ok && s != "" {
			return s, true
		}
		if s, ok := obj["text"].(string); ok && s != "" {
			return s, true
		}
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return "", false
	}
	return truncate(string(encoded), rawLimit), true
}

func nestedString(obj map[string]any, outer, inner string) string {
	m, ok := obj[outer].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := m[inner].(string)
	return s
}

// truncate обрезает до n байт, не разрывая символ
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// MaskKey прячет ключ для логов
func MaskKey(key string) string {
	switch {
	case key == "":
		return "MISSING"
	case len(key) < 8:
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
