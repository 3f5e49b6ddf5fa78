package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"PsyDesk/internal/cli/api"
	"PsyDesk/internal/cli/auth"
	"PsyDesk/internal/cli/notify"
	"PsyDesk/internal/cli/prefs"
	"PsyDesk/internal/cli/present"
	"PsyDesk/internal/cli/repo"
	fsrepo "PsyDesk/internal/cli/repo/fs"
	keyringrepo "PsyDesk/internal/cli/repo/keyring"
	reposqlite "PsyDesk/internal/cli/repo/sqlite"
	"PsyDesk/internal/cli/service"
	"PsyDesk/internal/config"

	"go.uber.org/zap"
)

// App собирает зависимости клиента для одной команды.
type App struct {
	Session  *auth.Session
	Client   *api.Client
	Services *service.Set
	Prefs    prefs.Prefs
	Renderer *present.Renderer
	Notifier notify.Notifier
	Logger   *zap.SugaredLogger
	cfg      *config.Config
}

// New собирает клиента: хранилище токена, сессию, HTTP-клиент и сервисы.
// Уведомления печатаются в toasts.
func New(cfg *config.Config, logger *zap.SugaredLogger, toasts io.Writer) (*App, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	tokens, err := openTokenStore(cfg)
	if err != nil {
		return nil, err
	}
	session := auth.NewSession(tokens, fsrepo.AuthFSStore{})
	session.Restore()

	p, err := prefs.Load(cfg.PrefsFile)
	if err != nil {
		logger.Warnw("prefs ignored", "path", cfg.PrefsFile, "error", err)
		p = prefs.Default()
	}

	client := api.NewClient(cfg.ServerURL, session, logger)
	client.SetMaxResponseMB(cfg.DocumentMaxMB)
	return &App{
		Session:  session,
		Client:   client,
		Services: service.NewSet(client),
		Prefs:    p,
		Renderer: present.NewRenderer(p),
		Notifier: notify.NewWriter(toasts),
		Logger:   logger,
		cfg:      cfg,
	}, nil
}

func openTokenStore(cfg *config.Config) (repo.TokenStore, error) {
	if cfg.TokenBackend != config.TokenBackendKeyring {
		return fsrepo.AuthFSStore{}, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	st, err := keyringrepo.Open(filepath.Join(dir, "PsyDesk", "keyring"))
	if err != nil {
		return nil, fmt.Errorf("token backend keyring: %w", err)
	}
	return st, nil
}

// OpenEntryCache открывает локальный кэш записей текущего пользователя,
// выполняет миграции и возвращает (cache, cleanup, error).
// cleanup необходимо вызвать после окончания работы, чтобы закрыть соединение с БД.
func (a *App) OpenEntryCache() (repo.EntryCache, func() error, error) {
	u, err := a.Session.User()
	if err != nil {
		return nil, nil, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}
	c, _, err := reposqlite.OpenForUser(a.cfg.ClientDBPath, u.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("open user db: %w", err)
	}
	if err := c.Migrate(); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("migrate user db: %w", err)
	}
	return c, c.Close, nil
}
