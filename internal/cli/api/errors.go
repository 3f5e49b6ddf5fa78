package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// GenericMessage: локализованное сообщение по умолчанию, когда сервер не прислал своего.
const GenericMessage = "Ha ocurrido un error. Inténtalo de nuevo."

// maxMessageLen ограничивает длину сообщения, извлечённого из «сырого» тела.
const maxMessageLen = 200

// Error: ответ сервера с кодом вне диапазона 2xx (или ошибочный ответ вместо файла).
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// IsUnauthorized сообщает, что сервер отклонил токен.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// UserMessage возвращает текст для уведомления: сообщение сервера, если оно есть,
// иначе fallback (или GenericMessage, если fallback пуст).
func UserMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = GenericMessage
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

var (
	titleRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tagRe   = regexp.MustCompile(`(?s)<[^>]*>`)
	styleRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// ExtractMessage достаёт человекочитаемое сообщение из тела ошибки:
// JSON (message, error, errors), HTML (<title> или текст без тегов) или простой текст.
func ExtractMessage(body []byte, contentType string) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	if isJSONType(contentType) || looksLikeJSON(trimmed) {
		if msg := messageFromJSON([]byte(trimmed)); msg != "" {
			return msg
		}
		if isJSONType(contentType) {
			return ""
		}
	}
	if isHTMLType(contentType) || looksLikeHTML(trimmed) {
		return messageFromHTML(trimmed)
	}
	return truncate(spaceRe.ReplaceAllString(trimmed, " "))
}

func messageFromJSON(b []byte) string {
	var payload struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(b, &payload); err != nil {
		return ""
	}
	if m := strings.TrimSpace(payload.Message); m != "" {
		return m
	}
	var s string
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &s) == nil && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return firstValidationError(payload.Errors)
}

// firstValidationError разбирает errors в виде {"field": ["msg"]} или ["msg"].
func firstValidationError(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var byField map[string][]string
	if json.Unmarshal(raw, &byField) == nil && len(byField) > 0 {
		keys := make([]string, 0, len(byField))
		for k := range byField {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if len(byField[k]) > 0 {
				return byField[k][0]
			}
		}
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

func messageFromHTML(s string) string {
	if m := titleRe.FindStringSubmatch(s); len(m) == 2 {
		if title := strings.TrimSpace(html.UnescapeString(m[1])); title != "" {
			return truncate(title)
		}
	}
	text := styleRe.ReplaceAllString(s, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(spaceRe.ReplaceAllString(text, " "))
	return truncate(strings.TrimSpace(text))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageLen {
		return s
	}
	return string(r[:maxMessageLen]) + "…"
}

func isJSONType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

func isHTMLType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), "text/html")
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") && json.Valid([]byte(s))
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 64 {
		head = head[:64]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
