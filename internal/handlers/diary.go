package handlers

import (
	"net/http"
	"time"

	"PsyDesk/internal/model"
	"PsyDesk/internal/service"
)

// DiaryHandler обслуживает эмоциональный дневник и анализ.
type DiaryHandler struct {
	baseHandler
	DiaryService *service.DiaryService
}

// NewDiaryHandler создаёт хендлер дневника
func NewDiaryHandler(diaryService *service.DiaryService, base baseHandler) *DiaryHandler {
	return &DiaryHandler{baseHandler: base, DiaryService: diaryService}
}

type patientRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// diaryEntryDTO описывает запись в формате API. Дата без времени, теги JSON-строкой.
type diaryEntryDTO struct {
	ID        int64       `json:"id"`
	PatientID int64       `json:"patient_id"`
	UserID    int64       `json:"user_id"`
	Date      string      `json:"date"`
	Mood      string      `json:"mood"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Tags      string      `json:"tags"`
	IsPrivate bool        `json:"is_private"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Patient   *patientRef `json:"patient,omitempty"`
}

func toEntryDTO(e *model.DiaryEntry) diaryEntryDTO {
	dto := diaryEntryDTO{
		ID:        e.ID,
		PatientID: e.PatientID,
		UserID:    e.UserID,
		Date:      e.Date.Format(time.DateOnly),
		Mood:      e.Mood,
		Title:     e.Title,
		Content:   e.Content,
		Tags:      e.Tags,
		IsPrivate: e.IsPrivate,
		CreatedAt: e.CreatedAt.UTC(),
		UpdatedAt: e.UpdatedAt.UTC(),
	}
	if e.Patient != nil {
		dto.Patient = &patientRef{ID: e.Patient.ID, Name: e.Patient.Name}
	}
	return dto
}

type createEntryRequest struct {
	Content   string `json:"content"`
	Mood      string `json:"mood"`
	IsPrivate bool   `json:"is_private"`
}

type analysisRequest struct {
	PatientID int64 `json:"patient_id"`
	Days      int   `json:"days"`
}

// List страница записей с фильтрами
func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := diaryFilter(r)
	if err != nil {
		h.fail(w, "DiaryList", err)
		return
	}
	page, err := h.DiaryService.List(r.Context(), actor(r), f)
	if err != nil {
		h.fail(w, "DiaryList", err)
		return
	}
	data := make([]diaryEntryDTO, 0, len(page.Data))
	for i := range page.Data {
		data = append(data, toEntryDTO(&page.Data[i]))
	}
	writeJSON(w, http.StatusOK, service.Page[diaryEntryDTO]{
		Data:        data,
		CurrentPage: page.CurrentPage,
		LastPage:    page.LastPage,
		PerPage:     page.PerPage,
		Total:       page.Total,
	})
}

func diaryFilter(r *http.Request) (service.DiaryFilter, error) {
	q := r.URL.Query()
	f := service.DiaryFilter{Mood: q.Get("mood"), Search: q.Get("search")}
	var err error
	if f.PatientID, err = queryID(r, "patient_id"); err != nil {
		return f, err
	}
	if f.Page, err = queryInt(r, "page"); err != nil {
		return f, err
	}
	if f.PerPage, err = queryInt(r, "per_page"); err != nil {
		return f, err
	}
	if f.From, err = queryTime(r, "date_from"); err != nil {
		return f, err
	}
	if f.To, err = queryTime(r, "date_to"); err != nil {
		return f, err
	}
	return f, nil
}

// Create новая запись пациента
func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if !h.decode(w, r, "DiaryCreate", &req) {
		return
	}
	e, err := h.DiaryService.Create(r.Context(), actor(r), service.NewEntry{
		Content:   req.Content,
		Mood:      req.Mood,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		h.fail(w, "DiaryCreate", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(e))
}

// Get одна запись
func (h *DiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.DiaryService.Get(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, "DiaryGet", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(e))
}

// Delete удаление записи
func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.DiaryService.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, "DiaryDelete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Analyze анализ записей пациента за 7/15/30 дней
func (h *DiaryHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if !h.decode(w, r, "DiaryAnalyze", &req) {
		return
	}
	res, err := h.DiaryService.Analyze(r.Context(), actor(r), req.PatientID, req.Days)
	if err != nil {
		h.fail(w, "DiaryAnalyze", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
