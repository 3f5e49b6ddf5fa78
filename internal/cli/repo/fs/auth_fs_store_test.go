package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"PsyDesk/internal/cli/model"
)

// setTempCfg перенастраивает пользовательский конфиг‑каталог в temp для изоляции тестов.
func setTempCfg(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	return dir
}

func TestAuthFSStore_SaveLoad_Token_TrimsWhitespace(t *testing.T) {
	setTempCfg(t)
	st := AuthFSStore{}
	if err := st.Save("tok-123\n\n"); err != nil {
		t.Fatalf("save token: %v", err)
	}
	// Дозапишем вручную лишние пробелы в конец файла, чтобы проверить trim
	p, _ := tokenPath()
	f, _ := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o600)
	_, _ = f.WriteString("  \r\n")
	_ = f.Close()

	tok, err := st.Load()
	if err != nil {
		t.Fatalf("load token: %v", err)
	}
	if tok != "tok-123" {
		t.Fatalf("token not trimmed, got %q", tok)
	}
}

func TestAuthFSStore_Load_TokenMissingOrEmpty(t *testing.T) {
	setTempCfg(t)
	st := AuthFSStore{}
	// отсутствует файл
	if _, err := st.Load(); err == nil {
		t.Fatalf("expected error for missing token file")
	}
	// файл только из пробелов
	p, _ := tokenPath()
	_ = os.MkdirAll(filepath.Dir(p), 0o700)
	_ = os.WriteFile(p, []byte(" \n"), 0o600)
	if _, err := st.Load(); err == nil {
		t.Fatalf("expected error for blank token file")
	}
	if err := st.Save(""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestAuthFSStore_Clear_IsIdempotent(t *testing.T) {
	setTempCfg(t)
	st := AuthFSStore{}
	if err := st.Save("tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := st.Load(); err == nil {
		t.Fatalf("token must be gone after Clear")
	}
	// повторный Clear без файла: не ошибка
	if err := st.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestAuthFSStore_SaveLoadClear_User(t *testing.T) {
	setTempCfg(t)
	st := AuthFSStore{}
	if err := st.SaveUser(model.User{}); err == nil {
		t.Fatalf("expected error for user without email")
	}
	u := model.User{ID: 7, Name: "Laura", Email: "laura@example.com", Role: model.RolePsychologist}
	if err := st.SaveUser(u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	got, err := st.LoadUser()
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if *got != u {
		t.Fatalf("user mismatch: %+v", got)
	}
	if err := st.ClearUser(); err != nil {
		t.Fatalf("clear user: %v", err)
	}
	if _, err := st.LoadUser(); err == nil {
		t.Fatalf("expected error after ClearUser")
	}
}
