package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"PsyDesk/internal/cli/auth"
	"PsyDesk/internal/cli/model"
)

func TestLogin_SavesSessionAndCreatesUserDB(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	loginAs(t, f, model.RolePsychologist)

	calls := f.callsTo(http.MethodPost, "/api/auth/login")
	if len(calls) != 1 || calls[0].Body["email"] != "laura@example.com" {
		t.Fatalf("unexpected login calls: %+v", calls)
	}
	// токен лежит в %CONFIG%/PsyDesk/auth_token
	dir, _ := os.UserConfigDir()
	b, err := os.ReadFile(filepath.Join(dir, "PsyDesk", "auth_token"))
	if err != nil || string(b) != "tok-1" {
		t.Fatalf("auth token not saved: %v %q", err, b)
	}
	// для пользователя создаётся база: CLIENT_DB_PATH/<login>/client.sqlite
	base := os.Getenv("CLIENT_DB_PATH")
	if _, err := os.Stat(filepath.Join(base, "laura_example.com", "client.sqlite")); err != nil {
		t.Fatalf("user sqlite not created: %v", err)
	}
}

func TestLogin_ErrorsAndUsage(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	f.json("POST /api/auth/login", http.StatusUnauthorized, `{"message":"Credenciales inválidas"}`)
	cfg := testConfig(f.url())

	err := (loginCmd{}).Run(context.Background(), cfg, []string{"a@b.c", "bad"})
	if err == nil || describe(err) == "" {
		t.Fatalf("expected error for 401, got %v", err)
	}
	if err := (loginCmd{}).Run(context.Background(), cfg, nil); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}

	// пароль без аргумента читается из prompt
	old := readPassword
	defer func() { readPassword = old }()
	var prompted bool
	readPassword = func(string) (string, error) { prompted = true; return "from-prompt", nil }
	_ = (loginCmd{}).Run(context.Background(), cfg, []string{"a@b.c"})
	if !prompted {
		t.Fatalf("password prompt expected")
	}
	last := f.callsTo(http.MethodPost, "/api/auth/login")
	if got := last[len(last)-1].Body["password"]; got != "from-prompt" {
		t.Fatalf("prompted password not sent, got %v", got)
	}
}

func TestRegister_ValidatesRole(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	f.json("POST /api/auth/register", http.StatusCreated, `{"token":"t","user":{"id":2,"email":"p@x.io","role":"patient"}}`)
	cfg := testConfig(f.url())

	if err := (registerCmd{}).Run(context.Background(), cfg, []string{"Pat", "p@x.io", "admin", "pw"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("unknown role must be ErrUsage, got %v", err)
	}
	out := withStdoutCapture(t, func() {
		if err := (registerCmd{}).Run(context.Background(), cfg, []string{"Pat", "p@x.io", "patient", "pw"}); err != nil {
			t.Fatalf("register: %v", err)
		}
	})
	if !strings.Contains(out, "p@x.io") {
		t.Fatalf("register output: %s", out)
	}
}

func TestWhoamiAndLogout(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	cfg := testConfig(f.url())

	if err := (whoamiCmd{}).Run(context.Background(), cfg, nil); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	cfg = loginAs(t, f, model.RolePatient)
	f.json("GET /api/auth/me", http.StatusOK, `{"id":1,"name":"Laura","email":"laura@example.com","role":"patient"}`)
	f.handle("POST /api/auth/logout", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	out := withStdoutCapture(t, func() {
		if err := (whoamiCmd{}).Run(context.Background(), cfg, nil); err != nil {
			t.Fatalf("whoami: %v", err)
		}
	})
	if !strings.Contains(out, "Laura <laura@example.com>") {
		t.Fatalf("whoami output: %s", out)
	}
	if me := f.callsTo(http.MethodGet, "/api/auth/me"); me[0].Auth != "Bearer tok-1" {
		t.Fatalf("bearer token expected, got %q", me[0].Auth)
	}

	withStdoutCapture(t, func() {
		if err := (logoutCmd{}).Run(context.Background(), cfg, nil); err != nil {
			t.Fatalf("logout: %v", err)
		}
	})
	if len(f.callsTo(http.MethodPost, "/api/auth/logout")) != 1 {
		t.Fatalf("server logout expected")
	}
	if err := (whoamiCmd{}).Run(context.Background(), cfg, nil); !errors.Is(err, auth.ErrNotLoggedIn) {
		t.Fatalf("session must be cleared, got %v", err)
	}
}

func TestDiary_ListWithFilters(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	cfg := loginAs(t, f, model.RolePsychologist)
	f.json("GET /api/diary", http.StatusOK, `{"data":[
		{"id":1,"date":"2025-03-03","mood":"sad","title":"Lunes","tags":"[\"trabajo\"]","patient":{"id":4,"name":"Ana"}},
		{"id":2,"date":"2025-03-04","mood":"great","title":"Martes","tags":["familia"]}
	],"current_page":1,"last_page":3,"per_page":10,"total":25}`)

	out := withStdoutCapture(t, func() {
		err := (diaryCmd{}).Run(context.Background(), cfg, []string{"-patient", "4", "-mood", "very_sad", "-from", "2025-03-01", "-search", "trabajo"})
		if err != nil {
			t.Fatalf("diary: %v", err)
		}
	})
	calls := f.callsTo(http.MethodGet, "/api/diary")
	if len(calls) != 1 {
		t.Fatalf("exactly one request expected, got %d", len(calls))
	}
	want := "date_from=2025-03-01&mood=very-sad&page=1&patient_id=4&per_page=10&search=trabajo"
	if calls[0].Query != want {
		t.Fatalf("query mismatch:\n got %s\nwant %s", calls[0].Query, want)
	}
	for _, s := range []string{"Lunes", "[Ana]", "#trabajo", "#familia", "Página 1 de 3 · 25 entradas"} {
		if !strings.Contains(out, s) {
			t.Fatalf("output must contain %q:\n%s", s, out)
		}
	}

	if err := (diaryCmd{}).Run(context.Background(), cfg, []string{"-mood", "furioso"}); err == nil {
		t.Fatalf("unknown mood must fail")
	}
	if err := (diaryCmd{}).Run(context.Background(), cfg, []string{"extra"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

func TestDiary_EmptyMessages(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	cfg := loginAs(t, f, model.RolePsychologist)
	f.json("GET /api/diary", http.StatusOK, `{"data":[],"current_page":1,"last_page":1,"per_page":10,"total":0}`)

	out := withStdoutCapture(t, func() { _ = (diaryCmd{}).Run(context.Background(), cfg, nil) })
	if !strings.Contains(out, "Aún no hay entradas") {
		t.Fatalf("no-filter empty message expected: %s", out)
	}
	out = withStdoutCapture(t, func() { _ = (diaryCmd{}).Run(context.Background(), cfg, []string{"-search", "x"}) })
	if !strings.Contains(out, "coincidan con los filtros") {
		t.Fatalf("filtered empty message expected: %s", out)
	}
}

func TestDiaryAdd_TextAndEmptyForm(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	cfg := loginAs(t, f, model.RolePatient)
	f.json("POST /api/diary", http.StatusCreated, `{"id":33,"title":"Hoy","mood":"good","content":"Hoy dormí bien"}`)

	out := withStdoutCapture(t, func() {
		if err := (diaryAddCmd{}).Run(context.Background(), cfg, []string{"-mood", "good", "-private", "Hoy", "dormí", "bien"}); err != nil {
			t.Fatalf("diary-add: %v", err)
		}
	})
	calls := f.callsTo(http.MethodPost, "/api/diary")
	if len(calls) != 1 {
		t.Fatalf("one create expected, got %d", len(calls))
	}
	if calls[0].Body["content"] != "Hoy dormí bien" || calls[0].Body["mood"] != "good" || calls[0].Body["is_private"] != true {
		t.Fatalf("unexpected body: %+v", calls[0].Body)
	}
	if !strings.Contains(out, "Created:") || !strings.Contains(out, "id:    33") {
		t.Fatalf("output: %s", out)
	}

	// без текста открывается форма; пустая форма → без запроса
	old := entryForm
	defer func() { entryForm = old }()
	entryForm = func(today string, d *entryDraft) error {
		if today == "" {
			t.Fatalf("today label expected")
		}
		d.content = "   "
		return nil
	}
	withStdoutCapture(t, func() {
		if err := (diaryAddCmd{}).Run(context.Background(), cfg, nil); !errors.Is(err, ErrUsage) {
			t.Fatalf("empty content must be ErrUsage, got %v", err)
		}
	})
	if len(f.callsTo(http.MethodPost, "/api/diary")) != 1 {
		t.Fatalf("no request expected for empty content")
	}
}

func TestDiaryShow_FallsBackToCacheWhenOffline(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	cfg := loginAs(t, f, model.RolePsychologist)
	f.json("GET /api/diary/7", http.StatusOK, `{"id":7,"date":"2025-03-05","mood":"neutral","title":"Miércoles","content":"Día normal","patient":{"id":4,"name":"Ana"}}`)

	out := withStdoutCapture(t, func() {
		if err := (diaryShowCmd{}).Run(context.Background(), cfg, []string{"7"}); err != nil {
			t.Fatalf("diary-show: %v", err)
		}
	})
	if !strings.Contains(out, "Miércoles") || !strings.Contains(out, "Paciente: Ana") {
		t.Fatalf("output: %s", out)
	}

	// сервер недоступен → запись из кэша
	f.srv.Close()
	out = withStdoutCapture(t, func() {
		if err := (diaryShowCmd{}).Run(context.Background(), cfg, []string{"7"}); err != nil {
			t.Fatalf("diary-show offline: %v", err)
		}
	})
	if !strings.Contains(out, "copia local") || !strings.Contains(out, "Día normal") {
		t.Fatalf("cached output expected: %s", out)
	}
	if err := (diaryShowCmd{}).Run(context.Background(), cfg, []string{"8"}); err == nil {
		t.Fatalf("uncached entry offline must fail")
	}
}

func TestAnalysis_ValidatesPeriodBeforeRequest(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	cfg := loginAs(t, f, model.RolePsychologist)
	f.json("POST /api/diary/analysis", http.StatusOK, `{"patient_id":4,"days":15,"entries_count":3,"summary":"Semana con altibajos",
		"mood_distribution":{"sad":2,"good":1},"common_themes":["trabajo"],"ai_generated":false}`)

	withStdoutCapture(t, func() {
		if err := (analysisCmd{}).Run(context.Background(), cfg, []string{"4", "10"}); !errors.Is(err, ErrUsage) {
			t.Fatalf("invalid period must be ErrUsage, got %v", err)
		}
	})
	if len(f.callsTo(http.MethodPost, "/api/diary/analysis")) != 0 {
		t.Fatalf("no request expected for invalid period")
	}

	out := withStdoutCapture(t, func() {
		if err := (analysisCmd{}).Run(context.Background(), cfg, []string{"4", "15"}); err != nil {
			t.Fatalf("analysis: %v", err)
		}
	})
	if !strings.Contains(out, "Últimos 15 días") || !strings.Contains(out, "Semana con altibajos") {
		t.Fatalf("output: %s", out)
	}
	body := f.callsTo(http.MethodPost, "/api/diary/analysis")[0].Body
	if body["patient_id"] != float64(4) || body["days"] != float64(15) {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReceipt_SavesFileAndDetectsDisguisedError(t *testing.T) {
	withTempConfig(t)
	f := newFakeAPI(t)
	cfg := loginAs(t, f, model.RolePatient)
	f.handle("GET /api/payments/12/receipt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="recibo-0012.pdf"`)
		_, _ = w.Write([]byte("%PDF-1.4 data"))
	})
	f.handle("GET /api/payments/13/receipt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte(`{"message":"El pago aún no está confirmado"}`))
	})

	dir := t.TempDir()
	withStdoutCapture(t, func() {
		if err := (receiptCmd{}).Run(context.Background(), cfg, []string{"12", dir}); err != nil {
			t.Fatalf("receipt: %v", err)
		}
	})
	b, err := os.ReadFile(filepath.Join(dir, "recibo-0012.pdf"))
	if err != nil || string(b) != "%PDF-1.4 data" {
		t.Fatalf("receipt not saved: %v", err)
	}

	err = (receiptCmd{}).Run(context.Background(), cfg, []string{"13", dir})
	if err == nil || describe(err) != "El pago aún no está confirmado" {
		t.Fatalf("disguised error expected, got %v", err)
	}
}

func TestPracticeCommands_UsageErrors(t *testing.T) {
	cases := []struct {
		cmd  Command
		args []string
	}{
		{patientsCmd{}, []string{"active", "0"}},
		{patientAddCmd{}, nil},
		{sessionAddCmd{}, []string{"x", "2025-01-01"}},
		{sessionAddCmd{}, []string{"1", "2025-01-01", "-5"}},
		{sessionCompleteCmd{}, nil},
		{paymentAddCmd{}, []string{"1", "0"}},
		{receiptCmd{}, []string{"abc"}},
		{contractAddCmd{}, []string{"1"}},
		{contractResendCmd{}, []string{"1", "2"}},
		{contractSignCmd{}, nil},
		{contractDownloadCmd{}, nil},
		{quizAssignCmd{}, []string{"1", "2", "mañana"}},
		{paymentsCmd{}, []string{"x"}},
	}
	for _, c := range cases {
		if err := c.cmd.Run(context.Background(), testConfig("http://127.0.0.1:1"), c.args); !errors.Is(err, ErrUsage) {
			t.Fatalf("%s %v: expected ErrUsage, got %v", c.cmd.Name(), c.args, err)
		}
	}
}
