package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"PsyDesk/internal/config"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (токен/профиль/база) создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	db := filepath.Join(dir, "db")
	_ = os.MkdirAll(db, 0o700)
	t.Setenv("CLIENT_DB_PATH", db)
	return dir
}

func testConfig(serverURL string) *config.Config {
	return &config.Config{
		ServerURL:    serverURL,
		ClientDBPath: os.Getenv("CLIENT_DB_PATH"),
		TokenBackend: config.TokenBackendFile,
	}
}

type apiCall struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

// fakeAPI: httptest-сервер с маршрутами "METHOD /path" и журналом запросов.
type fakeAPI struct {
	t      *testing.T
	mu     sync.Mutex
	calls  []apiCall
	routes map[string]http.HandlerFunc
	srv    *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{t: t, routes: map[string]http.HandlerFunc{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) handle(route string, h http.HandlerFunc) { f.routes[route] = h }

func (f *fakeAPI) json(route string, status int, body string) {
	f.handle(route, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	c := apiCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization")}
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &c.Body)
	}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	h, ok := f.routes[r.Method+" "+r.URL.Path]
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
		return
	}
	h(w, r)
}

func (f *fakeAPI) callsTo(method, path string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) url() string { return f.srv.URL }

// loginAs выполняет login через fake API и возвращает конфиг с активной сессией.
func loginAs(t *testing.T, f *fakeAPI, role string) *config.Config {
	t.Helper()
	f.json("POST /api/auth/login", http.StatusOK,
		`{"token":"tok-1","user":{"id":1,"name":"Laura","email":"laura@example.com","role":"`+role+`"}}`)
	cfg := testConfig(f.url())
	out := withStdoutCapture(t, func() {
		if err := (loginCmd{}).Run(t.Context(), cfg, []string{"laura@example.com", "secret"}); err != nil {
			t.Fatalf("login: %v", err)
		}
	})
	if !strings.Contains(out, "Sesión iniciada") {
		t.Fatalf("login output: %s", out)
	}
	return cfg
}
