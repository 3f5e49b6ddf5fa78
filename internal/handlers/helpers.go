package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"PsyDesk/internal/middleware"
	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"
	"PsyDesk/internal/service"
	"PsyDesk/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultMaxBody = 1 << 20

// общие зависимости хендлеров
type baseHandler struct {
	Logger  *zap.SugaredLogger
	maxBody int64
}

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

// fail переводит ошибку сервиса в HTTP-ответ. Неожиданные ошибки логируются.
func (h baseHandler) fail(w http.ResponseWriter, op string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: ve.Message,
			Errors:  map[string][]string{ve.Field: {ve.Message}},
		})
	case errors.Is(err, repo.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "Recurso no encontrado")
	case errors.Is(err, service.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "No tienes permiso para esta acción")
	case errors.Is(err, service.ErrNoPatientProfile):
		writeMessage(w, http.StatusForbidden, "No hay un perfil de paciente asociado")
	case errors.Is(err, service.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, "El correo electrónico ya está registrado")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Credenciales incorrectas")
	default:
		h.Logger.Errorw(op+": service error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error interno del servidor")
	}
}

// decode читает JSON-тело запроса. При ошибке ответ уже отправлен.
func (h baseHandler) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	limit := h.maxBody
	if limit <= 0 {
		limit = defaultMaxBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Logger.Warnw(op+": invalid request body", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "La petición es demasiado grande")
			return false
		}
		writeMessage(w, http.StatusBadRequest, "Petición no válida")
		return false
	}
	return true
}

// actor собирает пользователя из контекста (его кладёт middleware.WithAuth).
func actor(r *http.Request) service.Actor {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())
	return service.Actor{UserID: id, Role: role}
}

// pathID разбирает {id}; некорректный id даёт 404, как и отсутствующий ресурс.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusNotFound, "Recurso no encontrado")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &service.ValidationError{Field: key, Message: "Debe ser un número entero"}
	}
	return n, nil
}

func queryID(r *http.Request, key string) (int64, error) {
	n, err := queryInt(r, key)
	return int64(n), err
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

func parseTime(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &service.ValidationError{Field: field, Message: "Fecha no válida"}
}

func queryTime(r *http.Request, key string) (time.Time, error) {
	return parseTime(key, r.URL.Query().Get(key))
}

// listEnvelope отдаёт полный список в постраничном конверте.
func listEnvelope[T any](items []T) service.Page[T] {
	if items == nil {
		items = []T{}
	}
	return service.Page[T]{Data: items, CurrentPage: 1, LastPage: 1, PerPage: len(items), Total: int64(len(items))}
}

// sendDocument отдаёт бинарный документ как вложение.
func sendDocument(w http.ResponseWriter, doc *model.Document, data []byte) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
