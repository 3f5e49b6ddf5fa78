package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/config"
)

type patientsCmd struct{}

func (patientsCmd) Name() string        { return "patients" }
func (patientsCmd) Description() string { return "Список пациентов" }
func (patientsCmd) Usage() string       { return "patients [active|inactive|discharged] [page]" }

func (patientsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 2 {
		return ErrUsage
	}
	status, page := "", 1
	if len(args) >= 1 {
		status = strings.ToLower(args[0])
	}
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return ErrUsage
		}
		page = n
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	res, err := app.Services.Patients.List(ctx, status, page, app.Prefs.PageSize)
	if err != nil {
		return err
	}
	if len(res.Data) == 0 {
		fmt.Fprintln(Out, "No hay pacientes")
		return nil
	}
	for _, p := range res.Data {
		fmt.Fprintf(Out, "- %-5s %-28s %-10s %s\n", p.ID, p.Name, p.Status, p.Email)
	}
	fmt.Fprintf(Out, "Página %d de %d · %d pacientes\n", res.CurrentPage, res.LastPage, res.Total)
	return nil
}

type patientAddCmd struct{}

func (patientAddCmd) Name() string        { return "patient-add" }
func (patientAddCmd) Description() string { return "Добавить пациента" }
func (patientAddCmd) Usage() string       { return "patient-add <name> [email] [phone]" }

func (patientAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return ErrUsage
	}
	np := model.NewPatient{Name: args[0], Status: "active"}
	if len(args) >= 2 {
		np.Email = args[1]
	}
	if len(args) == 3 {
		np.Phone = args[2]
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	p, err := app.Services.Patients.Create(ctx, np)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Created:\n  id:   %s\n  name: %s\n", p.ID, p.Name)
	return nil
}

type sessionsCmd struct{}

func (sessionsCmd) Name() string        { return "sessions" }
func (sessionsCmd) Description() string { return "Список консультаций" }
func (sessionsCmd) Usage() string {
	return "sessions [-patient id] [-status s] [-from date] [-to date]"
}

func (sessionsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	patient := fs.Int64("patient", 0, "patient id")
	status := fs.String("status", "", "scheduled|completed|cancelled")
	from := fs.String("from", "", "date from")
	to := fs.String("to", "", "date to")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	list, err := app.Services.Sessions.List(ctx, model.SessionFilters{
		PatientID: model.ID(*patient), Status: *status, From: *from, To: *to,
	})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "No hay consultas")
		return nil
	}
	layout := app.Prefs.DateLayout + " 15:04"
	for _, s := range list {
		fmt.Fprintf(Out, "- %-5s %s  %3d min  paciente %-5s %-10s %s\n",
			s.ID, dateOr(s.StartsAt, layout, "sin fecha"), s.DurationMinutes, s.PatientID, s.Status, money(s.Price))
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

type sessionAddCmd struct{}

func (sessionAddCmd) Name() string        { return "session-add" }
func (sessionAddCmd) Description() string { return "Запланировать консультацию" }
func (sessionAddCmd) Usage() string {
	return "session-add <patient-id> <YYYY-MM-DDTHH:MM:SS> [minutes] [price]"
}

func (sessionAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return ErrUsage
	}
	pid, err := parseID(args[0])
	if err != nil {
		return err
	}
	ns := model.NewSession{PatientID: pid, StartsAt: args[1], DurationMinutes: 50}
	if len(args) >= 3 {
		if ns.DurationMinutes, err = strconv.Atoi(args[2]); err != nil || ns.DurationMinutes <= 0 {
			return ErrUsage
		}
	}
	if len(args) == 4 {
		if ns.Price, err = strconv.ParseFloat(args[3], 64); err != nil || ns.Price < 0 {
			return ErrUsage
		}
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	s, err := app.Services.Sessions.Create(ctx, ns)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Created:\n  id:     %s\n  status: %s\n", s.ID, s.Status)
	return nil
}

type sessionCompleteCmd struct{}

func (sessionCompleteCmd) Name() string        { return "session-complete" }
func (sessionCompleteCmd) Description() string { return "Отметить консультацию проведённой" }
func (sessionCompleteCmd) Usage() string       { return "session-complete <id>" }

func (sessionCompleteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	s, err := app.Services.Sessions.Complete(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Session %s: %s\n", s.ID, s.Status)
	return nil
}

type paymentsCmd struct{}

func (paymentsCmd) Name() string        { return "payments" }
func (paymentsCmd) Description() string { return "Список оплат" }
func (paymentsCmd) Usage() string       { return "payments [patient-id]" }

func (paymentsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	pid, err := optionalID(args, 0)
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	list, err := app.Services.Payments.List(ctx, pid)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "No hay pagos")
		return nil
	}
	for _, p := range list {
		fmt.Fprintf(Out, "- %-5s paciente %-5s %10s  %-8s %-8s %s\n",
			p.ID, p.PatientID, money(p.Amount), p.Method, p.Status, dateOr(p.PaidAt, app.Prefs.DateLayout, "-"))
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

type paymentAddCmd struct{}

func (paymentAddCmd) Name() string        { return "payment-add" }
func (paymentAddCmd) Description() string { return "Зарегистрировать оплату" }
func (paymentAddCmd) Usage() string {
	return "payment-add <patient-id> <amount> [method] [session-id]"
}

func (paymentAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return ErrUsage
	}
	pid, err := parseID(args[0])
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount <= 0 {
		return ErrUsage
	}
	np := model.NewPayment{PatientID: pid, Amount: amount, Method: "cash"}
	if len(args) >= 3 {
		np.Method = args[2]
	}
	if np.SessionID, err = optionalID(args, 3); err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	p, err := app.Services.Payments.Create(ctx, np)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Created:\n  id:     %s\n  amount: %s\n  status: %s\n", p.ID, money(p.Amount), p.Status)
	return nil
}

type receiptCmd struct{}

func (receiptCmd) Name() string        { return "receipt" }
func (receiptCmd) Description() string { return "Скачать квитанцию об оплате (PDF)" }
func (receiptCmd) Usage() string       { return "receipt <payment-id> [dir]" }

func (receiptCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	doc, err := app.Services.Payments.Receipt(ctx, id)
	if err != nil {
		return err
	}
	return writeDownload(doc, args[1:])
}

func writeDownload(doc *model.Document, rest []string) error {
	dir := ""
	if len(rest) > 0 {
		dir = rest[0]
	}
	p, err := saveDocument(doc, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved: %s (%d bytes)\n", p, len(doc.Data))
	return nil
}

type contractsCmd struct{}

func (contractsCmd) Name() string        { return "contracts" }
func (contractsCmd) Description() string { return "Список договоров" }
func (contractsCmd) Usage() string       { return "contracts [patient-id]" }

func (contractsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	pid, err := optionalID(args, 0)
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	list, err := app.Services.Contracts.List(ctx, pid)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "No hay contratos")
		return nil
	}
	for _, c := range list {
		fmt.Fprintf(Out, "- %-5s paciente %-5s %-7s %s  (enviado %s, firmado %s)\n",
			c.ID, c.PatientID, c.Status, c.Title,
			dateOr(c.SentAt, app.Prefs.DateLayout, "-"), dateOr(c.SignedAt, app.Prefs.DateLayout, "-"))
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

type contractAddCmd struct{}

func (contractAddCmd) Name() string        { return "contract-add" }
func (contractAddCmd) Description() string { return "Создать договор для пациента" }
func (contractAddCmd) Usage() string       { return "contract-add <patient-id> <title...>" }

func (contractAddCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	pid, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	c, err := app.Services.Contracts.Create(ctx, model.NewContract{PatientID: pid, Title: strings.Join(args[1:], " ")})
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Created:\n  id:     %s\n  title:  %s\n  status: %s\n", c.ID, c.Title, c.Status)
	return nil
}

type contractResendCmd struct{}

func (contractResendCmd) Name() string        { return "contract-resend" }
func (contractResendCmd) Description() string { return "Повторно отправить договор пациенту" }
func (contractResendCmd) Usage() string       { return "contract-resend <id>" }

func (contractResendCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	c, err := app.Services.Contracts.Resend(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Contract %s: %s\n", c.ID, c.Status)
	return nil
}

type contractSignCmd struct{}

func (contractSignCmd) Name() string        { return "contract-sign" }
func (contractSignCmd) Description() string { return "Подписать полученный договор (пациент)" }
func (contractSignCmd) Usage() string       { return "contract-sign <id>" }

func (contractSignCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	c, err := app.Services.Contracts.Sign(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Contract %s: %s\n", c.ID, c.Status)
	return nil
}

type contractDownloadCmd struct{}

func (contractDownloadCmd) Name() string        { return "contract-download" }
func (contractDownloadCmd) Description() string { return "Скачать подписанный договор (PDF)" }
func (contractDownloadCmd) Usage() string       { return "contract-download <id> [dir]" }

func (contractDownloadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	doc, err := app.Services.Contracts.Download(ctx, id)
	if err != nil {
		return err
	}
	return writeDownload(doc, args[1:])
}

type quizzesCmd struct{}

func (quizzesCmd) Name() string        { return "quizzes" }
func (quizzesCmd) Description() string { return "Назначенные опросники" }
func (quizzesCmd) Usage() string       { return "quizzes [patient-id]" }

func (quizzesCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	pid, err := optionalID(args, 0)
	if err != nil {
		return err
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	list, err := app.Services.Quizzes.Assignments(ctx, pid)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "No hay cuestionarios asignados")
		return nil
	}
	for _, a := range list {
		fmt.Fprintf(Out, "- %-5s paciente %-5s %-9s %s (vence %s)\n",
			a.ID, a.PatientID, a.Status, a.QuizTitle, dateOr(a.DueDate, app.Prefs.DateLayout, "-"))
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

type quizAssignCmd struct{}

func (quizAssignCmd) Name() string        { return "quiz-assign" }
func (quizAssignCmd) Description() string { return "Назначить опросник пациенту" }
func (quizAssignCmd) Usage() string       { return "quiz-assign <patient-id> <quiz-id> [due-date]" }

func (quizAssignCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return ErrUsage
	}
	pid, err := parseID(args[0])
	if err != nil {
		return err
	}
	qid, err := parseID(args[1])
	if err != nil {
		return err
	}
	na := model.NewQuizAssignment{PatientID: pid, QuizID: qid}
	if len(args) == 3 {
		if _, err := model.ParseDate(args[2]); err != nil {
			return ErrUsage
		}
		na.DueDate = args[2]
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	a, err := app.Services.Quizzes.Assign(ctx, na)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Assigned:\n  id:     %s\n  quiz:   %s\n  status: %s\n", a.ID, a.QuizTitle, a.Status)
	return nil
}

func init() {
	RegisterCmd(patientsCmd{})
	RegisterCmd(patientAddCmd{})
	RegisterCmd(sessionsCmd{})
	RegisterCmd(sessionAddCmd{})
	RegisterCmd(sessionCompleteCmd{})
	RegisterCmd(paymentsCmd{})
	RegisterCmd(paymentAddCmd{})
	RegisterCmd(receiptCmd{})
	RegisterCmd(contractsCmd{})
	RegisterCmd(contractAddCmd{})
	RegisterCmd(contractResendCmd{})
	RegisterCmd(contractSignCmd{})
	RegisterCmd(contractDownloadCmd{})
	RegisterCmd(quizzesCmd{})
	RegisterCmd(quizAssignCmd{})
}
