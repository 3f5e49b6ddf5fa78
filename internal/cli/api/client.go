package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"PsyDesk/internal/cli/model"

	"go.uber.org/zap"
)

// TokenSource отдаёт текущий bearer-токен. Пустой токен означает анонимный запрос.
type TokenSource interface {
	Load() (string, error)
}

// DefaultMaxResponseMB ограничивает тело ответа, если лимит не задан явно.
const DefaultMaxResponseMB = 20

// ErrResponseTooLarge: тело ответа превысило лимит клиента.
var ErrResponseTooLarge = errors.New("response body exceeds limit")

// Client: HTTP-обёртка над REST API PsyDesk с bearer-токеном и разбором ошибок.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	logger     *zap.SugaredLogger
	maxBody    int64
}

// NewClient создаёт клиента. tokens и logger могут быть nil.
func NewClient(baseURL string, tokens TokenSource, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		maxBody:    DefaultMaxResponseMB << 20,
	}
}

// SetMaxResponseMB задаёт предельный размер тела ответа в мегабайтах. Значения <= 0 игнорируются.
func (c *Client) SetMaxResponseMB(mb int) {
	if mb > 0 {
		c.maxBody = int64(mb) << 20
	}
}

// BaseURL возвращает адрес сервера без завершающего слэша.
func (c *Client) BaseURL() string { return c.baseURL }

// GetJSON выполняет GET с параметрами query и декодирует ответ в out.
func (c *Client) GetJSON(ctx context.Context, p string, query url.Values, out any) error {
	if len(query) > 0 {
		p += "?" + query.Encode()
	}
	return c.doJSON(ctx, http.MethodGet, p, nil, out)
}

// PostJSON отправляет payload как JSON и декодирует ответ в out (если out != nil).
func (c *Client) PostJSON(ctx context.Context, p string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPost, p, payload, out)
}

// Delete выполняет DELETE.
func (c *Client) Delete(ctx context.Context, p string) error {
	return c.doJSON(ctx, http.MethodDelete, p, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, p string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	resp, data, err := c.do(ctx, method, p, body, "application/json")
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Message: ExtractMessage(data, resp.Header.Get("Content-Type"))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response from %s %s: %w", method, p, err)
	}
	return nil
}

// Download скачивает бинарный документ. Если вместо файла пришёл JSON или HTML
// (ошибка, замаскированная под успешный ответ), возвращается *Error с извлечённым сообщением.
func (c *Client) Download(ctx context.Context, p, fallbackName string) (*model.Document, error) {
	resp, data, err := c.do(ctx, http.MethodGet, p, nil, "*/*")
	if err != nil {
		return nil, err
	}
	ct := resp.Header.Get("Content-Type")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Status: resp.StatusCode, Message: ExtractMessage(data, ct)}
	}
	if disguisedError(data, ct) {
		msg := ExtractMessage(data, ct)
		if msg == "" {
			msg = "el servidor no devolvió un archivo"
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}
	return &model.Document{
		FileName:    fileName(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: ct,
		Data:        data,
	}, nil
}

// disguisedError распознаёт ответ 2xx, который на самом деле JSON или HTML, а не файл.
func disguisedError(data []byte, ct string) bool {
	if isJSONType(ct) || isHTMLType(ct) {
		return true
	}
	head := strings.TrimSpace(string(data[:min(len(data), 512)]))
	if strings.HasPrefix(head, "{") {
		return json.Valid(bytes.TrimSpace(data))
	}
	return looksLikeHTML(head)
}

// fileName берёт имя файла из Content-Disposition, отбрасывая каталоги.
func fileName(disposition, fallback string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := path.Base(strings.ReplaceAll(params["filename"], `\`, "/")); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	if fallback == "" {
		return "document.pdf"
	}
	return fallback
}

func (c *Client) do(ctx context.Context, method, p string, body io.Reader, accept string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, err := c.tokens.Load(); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debugw("http request failed", "method", method, "path", p, "error", err)
		return nil, nil, fmt.Errorf("executing request %s %s: %w", method, p, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		c.logger.Warnw("response body too large", "method", method, "path", p, "limit", c.maxBody)
		return nil, nil, fmt.Errorf("%s %s: %w (%d bytes)", method, p, ErrResponseTooLarge, c.maxBody)
	}
	c.logger.Debugw("http request",
		"method", method,
		"path", p,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start),
	)
	return resp, data, nil
}
