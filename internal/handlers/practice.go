package handlers

import (
	"net/http"

	"PsyDesk/internal/service"
)

// PracticeHandler: пациенты, консультации, оплаты, договоры, опросники.
type PracticeHandler struct {
	baseHandler
	PracticeService *service.PracticeService
}

// NewPracticeHandler создаёт хендлер практики
func NewPracticeHandler(practiceService *service.PracticeService, base baseHandler) *PracticeHandler {
	return &PracticeHandler{baseHandler: base, PracticeService: practiceService}
}

type createPatientRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Status string `json:"status"`
}

type createSessionRequest struct {
	PatientID       int64   `json:"patient_id"`
	StartsAt        string  `json:"starts_at"`
	DurationMinutes int     `json:"duration_minutes"`
	Notes           string  `json:"notes"`
	Price           float64 `json:"price"`
}

type createPaymentRequest struct {
	PatientID int64   `json:"patient_id"`
	SessionID int64   `json:"session_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
}

type createContractRequest struct {
	PatientID int64  `json:"patient_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

type assignQuizRequest struct {
	PatientID int64  `json:"patient_id"`
	QuizID    int64  `json:"quiz_id"`
	QuizTitle string `json:"quiz_title"`
	DueDate   string `json:"due_date"`
}

// ListPatients пациенты психолога
func (h *PracticeHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.fail(w, "ListPatients", err)
		return
	}
	perPage, err := queryInt(r, "per_page")
	if err != nil {
		h.fail(w, "ListPatients", err)
		return
	}
	res, err := h.PracticeService.ListPatients(r.Context(), actor(r), r.URL.Query().Get("status"), page, perPage)
	if err != nil {
		h.fail(w, "ListPatients", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreatePatient новая карточка пациента
func (h *PracticeHandler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req createPatientRequest
	if !h.decode(w, r, "CreatePatient", &req) {
		return
	}
	p, err := h.PracticeService.CreatePatient(r.Context(), actor(r), service.NewPatient{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Status: req.Status,
	})
	if err != nil {
		h.fail(w, "CreatePatient", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetPatient карточка пациента
func (h *PracticeHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.PracticeService.GetPatient(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, "GetPatient", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListSessions консультации с фильтрами status/from/to
func (h *PracticeHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	f := service.SessionFilter{Status: r.URL.Query().Get("status")}
	var err error
	if f.PatientID, err = queryID(r, "patient_id"); err == nil {
		if f.From, err = queryTime(r, "from"); err == nil {
			f.To, err = queryTime(r, "to")
		}
	}
	if err != nil {
		h.fail(w, "ListSessions", err)
		return
	}
	list, err := h.PracticeService.ListSessions(r.Context(), actor(r), f)
	if err != nil {
		h.fail(w, "ListSessions", err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope(list))
}

// CreateSession новая консультация
func (h *PracticeHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !h.decode(w, r, "CreateSession", &req) {
		return
	}
	startsAt, err := parseTime("starts_at", req.StartsAt)
	if err != nil {
		h.fail(w, "CreateSession", err)
		return
	}
	s, err := h.PracticeService.CreateSession(r.Context(), actor(r), service.NewSession{
		PatientID:       req.PatientID,
		StartsAt:        startsAt,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Price:           req.Price,
	})
	if err != nil {
		h.fail(w, "CreateSession", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// CompleteSession отметка о проведённой консультации
func (h *PracticeHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s, err := h.PracticeService.CompleteSession(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, "CompleteSession", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListPayments оплаты
func (h *PracticeHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	patientID, err := queryID(r, "patient_id")
	if err != nil {
		h.fail(w, "ListPayments", err)
		return
	}
	list, err := h.PracticeService.ListPayments(r.Context(), actor(r), patientID)
	if err != nil {
		h.fail(w, "ListPayments", err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope(list))
}

// CreatePayment регистрация оплаты
func (h *PracticeHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !h.decode(w, r, "CreatePayment", &req) {
		return
	}
	p, err := h.PracticeService.CreatePayment(r.Context(), actor(r), service.NewPayment{
		PatientID: req.PatientID,
		SessionID: req.SessionID,
		Amount:    req.Amount,
		Method:    req.Method,
	})
	if err != nil {
		h.fail(w, "CreatePayment", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Receipt PDF квитанции
func (h *PracticeHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, data, err := h.PracticeService.Receipt(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, "Receipt", err)
		return
	}
	sendDocument(w, doc, data)
}

// ListContracts договоры
func (h *PracticeHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	patientID, err := queryID(r, "patient_id")
	if err != nil {
		h.fail(w, "ListContracts", err)
		return
	}
	list, err := h.PracticeService.ListContracts(r.Context(), actor(r), patientID)
	if err != nil {
		h.fail(w, "ListContracts", err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope(list))
}

// CreateContract новый договор
func (h *PracticeHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if !h.decode(w, r, "CreateContract", &req) {
		return
	}
	c, err := h.PracticeService.CreateContract(r.Context(), actor(r), service.NewContract{
		PatientID: req.PatientID,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		h.fail(w, "CreateContract", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ResendContract повторная отправка договора
func (h *PracticeHandler) ResendContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.PracticeService.ResendContract(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, "ResendContract", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SignContract подпись договора пациентом
func (h *PracticeHandler) SignContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.PracticeService.SignContract(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, "SignContract", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DownloadContract PDF договора
func (h *PracticeHandler) DownloadContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, data, err := h.PracticeService.ContractDocument(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, "DownloadContract", err)
		return
	}
	sendDocument(w, doc, data)
}

// ListAssignments назначенные опросники
func (h *PracticeHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	patientID, err := queryID(r, "patient_id")
	if err != nil {
		h.fail(w, "ListAssignments", err)
		return
	}
	list, err := h.PracticeService.ListAssignments(r.Context(), actor(r), patientID)
	if err != nil {
		h.fail(w, "ListAssignments", err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope(list))
}

// AssignQuiz назначение опросника
func (h *PracticeHandler) AssignQuiz(w http.ResponseWriter, r *http.Request) {
	var req assignQuizRequest
	if !h.decode(w, r, "AssignQuiz", &req) {
		return
	}
	in := service.NewAssignment{PatientID: req.PatientID, QuizID: req.QuizID, QuizTitle: req.QuizTitle}
	if req.DueDate != "" {
		due, err := parseTime("due_date", req.DueDate)
		if err != nil {
			h.fail(w, "AssignQuiz", err)
			return
		}
		in.DueDate = &due
	}
	qa, err := h.PracticeService.AssignQuiz(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, "AssignQuiz", err)
		return
	}
	writeJSON(w, http.StatusCreated, qa)
}
