package commands

import (
	"context"
	"fmt"
	"strings"

	"PsyDesk/internal/cli/bootstrap"
	"PsyDesk/internal/cli/model"
	"PsyDesk/internal/config"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Войти и сохранить токен" }
func (loginCmd) Usage() string       { return "login <email> [password]" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	password := ""
	if len(args) == 2 {
		password = args[1]
	} else {
		p, err := readPassword("Contraseña: ")
		if err != nil {
			return err
		}
		password = p
	}
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	resp, err := app.Services.Auth.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	return startSession(app, resp)
}

type registerCmd struct{}

func (registerCmd) Name() string        { return "register" }
func (registerCmd) Description() string { return "Создать аккаунт (psychologist|patient)" }
func (registerCmd) Usage() string {
	return "register <name> <email> <psychologist|patient> [password]"
}

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return ErrUsage
	}
	role := strings.ToLower(args[2])
	if role != model.RolePsychologist && role != model.RolePatient {
		return ErrUsage
	}
	password := ""
	if len(args) == 4 {
		password = args[3]
	} else {
		p, err := readPassword("Contraseña: ")
		if err != nil {
			return err
		}
		password = p
	}
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	resp, err := app.Services.Auth.Register(ctx, model.Registration{
		Name: args[0], Email: args[1], Password: password, Role: role,
	})
	if err != nil {
		return err
	}
	return startSession(app, resp)
}

// startSession сохраняет сессию и создаёт локальный кэш пользователя.
func startSession(app *bootstrap.App, resp *model.AuthResponse) error {
	if err := app.Session.Start(*resp); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	_, done, err := app.OpenEntryCache()
	if err != nil {
		return err
	}
	_ = done()
	fmt.Fprintf(Out, "Sesión iniciada: %s (%s)\n", resp.User.Email, resp.User.Role)
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Выйти и удалить сохранённый токен" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	if app.Session.Authenticated() {
		// токен на сервере может быть уже недействителен: локально выходим в любом случае
		if err := app.Services.Auth.Logout(ctx); err != nil {
			app.Logger.Warnw("server logout failed", "error", err)
		}
	}
	if err := app.Session.End(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Sesión cerrada")
	return nil
}

type whoamiCmd struct{}

func (whoamiCmd) Name() string        { return "whoami" }
func (whoamiCmd) Description() string { return "Показать текущего пользователя" }
func (whoamiCmd) Usage() string       { return "whoami" }

func (whoamiCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	app, err := loggedIn(cfg)
	if err != nil {
		return err
	}
	u, err := app.Services.Auth.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(Out, "  id:   %s\n", u.ID)
	fmt.Fprintf(Out, "  role: %s\n", u.Role)
	return nil
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(registerCmd{})
	RegisterCmd(logoutCmd{})
	RegisterCmd(whoamiCmd{})
}
