package service

import "PsyDesk/internal/model"

// Actor: аутентифицированный пользователь, от имени которого выполняется операция.
type Actor struct {
	UserID int64
	Role   string
}

func (a Actor) IsPsychologist() bool { return a.Role == model.RolePsychologist }
