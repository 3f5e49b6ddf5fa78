package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/bootstrap"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/config"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// Logger: логгер CLI. main подменяет его при --verbose.
var Logger = zap.NewNop().Sugar()

// newApp собирает зависимости клиента; в тестах может подменяться.
var newApp = func(cfg *config.Config) (*bootstrap.App, error) {
	return bootstrap.New(cfg, Logger, ErrOut)
}

// readPassword читает пароль без эха; в тестах подменяется.
var readPassword = func(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password required: stdin is not a terminal")
	}
	fmt.Fprint(ErrOut, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(ErrOut)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// loggedIn открывает App и проверяет, что есть активная сессия.
func loggedIn(cfg *config.Config) (*bootstrap.App, error) {
	app, err := newApp(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := app.Session.User(); err != nil {
		return nil, err
	}
	return app, nil
}

// describe превращает ошибку в строку для пользователя.
func describe(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if api.IsUnauthorized(err) {
			return "sesión no válida o expirada: ejecuta `psycli login`"
		}
		return api.UserMessage(err, "")
	}
	return err.Error()
}

func parseID(s string) (model.ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrUsage
	}
	return model.ID(n), nil
}

// optionalID разбирает необязательный id из args[i].
func optionalID(args []string, i int) (model.ID, error) {
	if len(args) <= i {
		return 0, nil
	}
	return parseID(args[i])
}

// saveDocument пишет документ в dir. Имя файла уже очищено от каталогов.
func saveDocument(doc *model.Document, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(dir, doc.FileName)
	if err := os.WriteFile(p, doc.Data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func dateOr(d model.Date, layout, empty string) string {
	if d.IsZero() {
		return empty
	}
	return d.Format(layout)
}
