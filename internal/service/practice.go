package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"PsyDesk/internal/model"
	"PsyDesk/internal/repo"
	"PsyDesk/internal/storage"

	"go.uber.org/zap"
)

const pdfContentType = "application/pdf"

// quizCatalog: опросники, доступные для назначения.
var quizCatalog = map[int64]string{
	1: "PHQ-9",
	2: "GAD-7",
	3: "BDI-II",
}

// PracticeRepos: репозитории практики психолога.
type PracticeRepos struct {
	Patients  repo.PatientRepository
	Users     repo.UserRepository
	Sessions  repo.SessionRepository
	Payments  repo.PaymentRepository
	Contracts repo.ContractRepository
	Quizzes   repo.QuizRepository
}

// PracticeService: пациенты, консультации, оплаты, договоры и опросники.
type PracticeService struct {
	repos    PracticeRepos
	profiles *Profiles
	docs     storage.Store
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewPracticeService(r PracticeRepos, profiles *Profiles, docs storage.Store, logger *zap.SugaredLogger) *PracticeService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PracticeService{repos: r, profiles: profiles, docs: docs, logger: logger, now: time.Now}
}

func requirePsychologist(a Actor) error {
	if !a.IsPsychologist() {
		return ErrForbidden
	}
	return nil
}

// --- пациенты ---

// NewPatient: данные новой карточки пациента.
type NewPatient struct {
	Name   string
	Email  string
	Phone  string
	Status string
}

func (s *PracticeService) ListPatients(ctx context.Context, a Actor, status string, page, perPage int) (Page[model.Patient], error) {
	if err := requirePsychologist(a); err != nil {
		return Page[model.Patient]{}, err
	}
	if status != "" && !model.ValidPatientStatus(status) {
		return Page[model.Patient]{}, invalid("status", "Estado de paciente no válido")
	}
	pg := repo.Pagination{Page: page, PerPage: perPage}.Normalize()
	list, total, err := s.repos.Patients.List(ctx, a.UserID, status, pg)
	if err != nil {
		return Page[model.Patient]{}, err
	}
	return newPage(list, pg.Page, pg.PerPage, total), nil
}

// CreatePatient заводит карточку. Если пациент с таким email уже
// зарегистрирован и карточки у него нет, карточка сразу привязывается к аккаунту.
func (s *PracticeService) CreatePatient(ctx context.Context, a Actor, in NewPatient) (*model.Patient, error) {
	if err := requirePsychologist(a); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" {
		return nil, invalid("name", "El nombre es obligatorio")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return nil, invalid("email", "El correo electrónico no es válido")
		}
	}
	if in.Status == "" {
		in.Status = model.PatientActive
	}
	if !model.ValidPatientStatus(in.Status) {
		return nil, invalid("status", "Estado de paciente no válido")
	}

	p := &model.Patient{
		PsychologistID: a.UserID,
		Name:           in.Name,
		Email:          in.Email,
		Phone:          strings.TrimSpace(in.Phone),
		Status:         in.Status,
	}
	if in.Email != "" {
		uid, err := s.linkableUser(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		p.UserID = uid
	}
	if err := s.repos.Patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PracticeService) linkableUser(ctx context.Context, email string) (*int64, error) {
	u, err := s.repos.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.Role != model.RolePatient {
		return nil, nil
	}
	if _, err := s.repos.Patients.GetByUserID(ctx, u.ID); err == nil {
		return nil, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	id := u.ID
	return &id, nil
}

func (s *PracticeService) GetPatient(ctx context.Context, a Actor, id int64) (*model.Patient, error) {
	return s.profiles.Patient(ctx, a, id)
}

// --- консультации ---

type SessionFilter struct {
	PatientID int64
	Status    string
	From, To  time.Time
}

// NewSession описывает консультацию. Нулевая длительность заменяется на 50 минут.
type NewSession struct {
	PatientID       int64
	StartsAt        time.Time
	DurationMinutes int
	Notes           string
	Price           float64
}

func (s *PracticeService) ListSessions(ctx context.Context, a Actor, f SessionFilter) ([]model.Session, error) {
	scope, err := s.profiles.narrow(ctx, a, f.PatientID)
	if err != nil {
		return nil, err
	}
	return s.repos.Sessions.List(ctx, repo.SessionQuery{Scope: scope, Status: f.Status, From: f.From, To: f.To})
}

func (s *PracticeService) CreateSession(ctx context.Context, a Actor, in NewSession) (*model.Session, error) {
	if err := requirePsychologist(a); err != nil {
		return nil, err
	}
	if in.StartsAt.IsZero() {
		return nil, invalid("starts_at", "La fecha de la sesión es obligatoria")
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = 50
	}
	if in.DurationMinutes < 0 {
		return nil, invalid("duration_minutes", "La duración debe ser positiva")
	}
	if in.Price < 0 {
		return nil, invalid("price", "El precio no puede ser negativo")
	}
	if _, err := s.profiles.Patient(ctx, a, in.PatientID); err != nil {
		return nil, err
	}
	sess := &model.Session{
		PatientID:       in.PatientID,
		StartsAt:        in.StartsAt.UTC(),
		DurationMinutes: in.DurationMinutes,
		Status:          model.SessionScheduled,
		Notes:           strings.TrimSpace(in.Notes),
		Price:           in.Price,
	}
	if err := s.repos.Sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// CompleteSession отмечает запланированную консультацию как проведённую.
func (s *PracticeService) CompleteSession(ctx context.Context, a Actor, id int64) (*model.Session, error) {
	if err := requirePsychologist(a); err != nil {
		return nil, err
	}
	sess, err := s.repos.Sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.Patient(ctx, a, sess.PatientID); err != nil {
		return nil, err
	}
	if sess.Status != model.SessionScheduled {
		return nil, invalid("status", "Solo se pueden completar sesiones programadas")
	}
	if err := s.repos.Sessions.UpdateStatus(ctx, id, model.SessionCompleted); err != nil {
		return nil, err
	}
	sess.Status = model.SessionCompleted
	return sess, nil
}

// --- оплаты ---

// NewPayment описывает оплату. Пустой Method означает наличные.
type NewPayment struct {
	PatientID int64
	SessionID int64
	Amount    float64
	Method    string
}

func (s *PracticeService) ListPayments(ctx context.Context, a Actor, patientID int64) ([]model.Payment, error) {
	scope, err := s.profiles.narrow(ctx, a, patientID)
	if err != nil {
		return nil, err
	}
	return s.repos.Payments.List(ctx, scope)
}

// CreatePayment регистрирует полученную оплату.
func (s *PracticeService) CreatePayment(ctx context.Context, a Actor, in NewPayment) (*model.Payment, error) {
	if err := requirePsychologist(a); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, invalid("amount", "El importe debe ser mayor que cero")
	}
	if _, err := s.profiles.Patient(ctx, a, in.PatientID); err != nil {
		return nil, err
	}
	p := &model.Payment{
		PatientID: in.PatientID,
		Amount:    in.Amount,
		Method:    strings.ToLower(strings.TrimSpace(in.Method)),
		Status:    model.PaymentPaid,
	}
	if p.Method == "" {
		p.Method = "cash"
	}
	if in.SessionID != 0 {
		sess, err := s.repos.Sessions.GetByID(ctx, in.SessionID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, invalid("session_id", "La sesión no existe")
			}
			return nil, err
		}
		if sess.PatientID != in.PatientID {
			return nil, invalid("session_id", "La sesión pertenece a otro paciente")
		}
		sid := sess.ID
		p.SessionID = &sid
	}
	paid := s.now().UTC()
	p.PaidAt = &paid
	if err := s.repos.Payments.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Receipt возвращает PDF квитанции, генерируя его при первом запросе.
func (s *PracticeService) Receipt(ctx context.Context, a Actor, id int64) (*model.Document, []byte, error) {
	p, err := s.repos.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	patient, err := s.profiles.Patient(ctx, a, p.PatientID)
	if err != nil {
		return nil, nil, err
	}
	if p.Status != model.PaymentPaid {
		return nil, nil, invalid("status", "El pago aún no está confirmado")
	}
	if p.ReceiptID != nil {
		doc, data, err := s.docs.Get(ctx, *p.ReceiptID)
		if err == nil {
			return doc, data, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, nil, err
		}
		s.logger.Warnw("receipt document missing, regenerating", "payment_id", p.ID, "document_id", *p.ReceiptID)
	}

	lines := []string{
		fmt.Sprintf("Recibo n.º %d", p.ID),
		"Paciente: " + patient.Name,
		fmt.Sprintf("Importe: %.2f", p.Amount),
		"Método de pago: " + p.Method,
	}
	if p.PaidAt != nil {
		lines = append(lines, "Fecha de pago: "+p.PaidAt.Format("02/01/2006"))
	}
	if p.SessionID != nil {
		lines = append(lines, fmt.Sprintf("Sesión: %d", *p.SessionID))
	}
	data, err := renderPDF("Recibo de pago", lines)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.docs.Put(ctx, fmt.Sprintf("recibo-%d.pdf", p.ID), pdfContentType, data)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repos.Payments.SetReceipt(ctx, p.ID, doc.ID); err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// --- договоры ---

type NewContract struct {
	PatientID int64
	Title     string
	Body      string
}

func (s *PracticeService) ListContracts(ctx context.Context, a Actor, patientID int64) ([]model.Contract, error) {
	scope, err := s.profiles.narrow(ctx, a, patientID)
	if err != nil {
		return nil, err
	}
	return s.repos.Contracts.List(ctx, scope)
}

func (s *PracticeService) CreateContract(ctx context.Context, a Actor, in NewContract) (*model.Contract, error) {
	if err := requirePsychologist(a); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalid("title", "El título es obligatorio")
	}
	if _, err := s.profiles.Patient(ctx, a, in.PatientID); err != nil {
		return nil, err
	}
	c := &model.Contract{
		PatientID: in.PatientID,
		Title:     in.Title,
		Body:      strings.TrimSpace(in.Body),
		Status:    model.ContractDraft,
	}
	if err := s.repos.Contracts.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ResendContract отправляет договор пациенту повторно. Подписанный договор не отправляется.
func (s *PracticeService) ResendContract(ctx context.Context, a Actor, id int64) (*model.Contract, error) {
	if err := requirePsychologist(a); err != nil {
		return nil, err
	}
	c, _, err := s.contract(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if c.Status == model.ContractSigned {
		return nil, invalid("status", "El contrato ya está firmado")
	}
	sent := s.now().UTC()
	if err := s.repos.Contracts.Update(ctx, id, map[string]any{"status": model.ContractSent, "sent_at": sent}); err != nil {
		return nil, err
	}
	c.Status, c.SentAt = model.ContractSent, &sent
	return c, nil
}

// SignContract подписывает отправленный договор. Доступно только пациенту.
func (s *PracticeService) SignContract(ctx context.Context, a Actor, id int64) (*model.Contract, error) {
	if a.IsPsychologist() {
		return nil, ErrForbidden
	}
	c, _, err := s.contract(ctx, a, id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.ContractSent {
		return nil, invalid("status", "El contrato no está pendiente de firma")
	}
	signed := s.now().UTC()
	// документ перегенерируется уже с отметкой о подписи
	if err := s.repos.Contracts.Update(ctx, id, map[string]any{
		"status": model.ContractSigned, "signed_at": signed, "document_id": nil,
	}); err != nil {
		return nil, err
	}
	c.Status, c.SignedAt, c.DocumentID = model.ContractSigned, &signed, nil
	return c, nil
}

// ContractDocument возвращает PDF договора, генерируя его при первом запросе.
func (s *PracticeService) ContractDocument(ctx context.Context, a Actor, id int64) (*model.Document, []byte, error) {
	c, patient, err := s.contract(ctx, a, id)
	if err != nil {
		return nil, nil, err
	}
	if c.DocumentID != nil {
		doc, data, err := s.docs.Get(ctx, *c.DocumentID)
		if err == nil {
			return doc, data, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, nil, err
		}
	}

	lines := []string{"Paciente: " + patient.Name, ""}
	if c.Body != "" {
		lines = append(lines, c.Body, "")
	}
	if c.SignedAt != nil {
		lines = append(lines, "Firmado el "+c.SignedAt.Format("02/01/2006"))
	} else {
		lines = append(lines, "Pendiente de firma")
	}
	data, err := renderPDF(c.Title, lines)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.docs.Put(ctx, fmt.Sprintf("contrato-%d.pdf", c.ID), pdfContentType, data)
	if err != nil {
		return nil, nil, err
	}
	if err := s.repos.Contracts.Update(ctx, c.ID, map[string]any{"document_id": doc.ID}); err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

func (s *PracticeService) contract(ctx context.Context, a Actor, id int64) (*model.Contract, *model.Patient, error) {
	c, err := s.repos.Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	patient, err := s.profiles.Patient(ctx, a, c.PatientID)
	if err != nil {
		return nil, nil, err
	}
	return c, patient, nil
}

// --- опросники ---

type NewAssignment struct {
	PatientID int64
	QuizID    int64
	QuizTitle string
	DueDate   *time.Time
}

func (s *PracticeService) ListAssignments(ctx context.Context, a Actor, patientID int64) ([]model.QuizAssignment, error) {
	scope, err := s.profiles.narrow(ctx, a, patientID)
	if err != nil {
		return nil, err
	}
	return s.repos.Quizzes.List(ctx, scope)
}

func (s *PracticeService) AssignQuiz(ctx context.Context, a Actor, in NewAssignment) (*model.QuizAssignment, error) {
	if err := requirePsychologist(a); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.QuizTitle)
	if title == "" {
		title = quizCatalog[in.QuizID]
	}
	if in.QuizID <= 0 || title == "" {
		return nil, invalid("quiz_id", "Cuestionario desconocido")
	}
	if _, err := s.profiles.Patient(ctx, a, in.PatientID); err != nil {
		return nil, err
	}
	qa := &model.QuizAssignment{
		PatientID: in.PatientID,
		QuizID:    in.QuizID,
		QuizTitle: title,
		Status:    model.QuizPending,
		DueDate:   in.DueDate,
	}
	if err := s.repos.Quizzes.Create(ctx, qa); err != nil {
		return nil, err
	}
	return qa, nil
}
