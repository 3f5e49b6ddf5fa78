package handlers

import (
	"net/http"

	"PsyDesk/internal/config"
	"PsyDesk/internal/middleware"
	"PsyDesk/internal/model"
	"PsyDesk/internal/service"
)

// UserHandler обслуживает регистрацию, вход и профиль.
type UserHandler struct {
	baseHandler
	UserService *service.UserService
	Config      *config.Config
}

// NewUserHandler создаёт хендлер пользователей
func NewUserHandler(userService *service.UserService, base baseHandler, cfg *config.Config) *UserHandler {
	return &UserHandler{baseHandler: base, UserService: userService, Config: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register регистрация пользователя
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, "Register", &req) {
		return
	}
	user, err := h.UserService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(w, "Register", err)
		return
	}
	h.issueToken(w, http.StatusCreated, user)
}

// Login логин пользователя
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, "Login", &req) {
		return
	}
	user, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, "Login", err)
		return
	}
	h.issueToken(w, http.StatusOK, user)
}

func (h *UserHandler) issueToken(w http.ResponseWriter, status int, user *model.User) {
	token, err := middleware.SetLoginCookie(w, user.ID, user.Role, h.Config.AuthSecret)
	if err != nil {
		h.Logger.Errorw("issueToken: failed to sign token", "user_id", user.ID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: user})
}

// Logout сбрасывает cookie. JWT без состояния, сервер ничего не отзывает.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me профиль текущего пользователя
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), actor(r).UserID)
	if err != nil {
		h.fail(w, "Me", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
