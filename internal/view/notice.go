package view

import (
	"errors"
	"strings"

	"punti/internal/core"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a short message for the user.
type Notice struct {
	Level   Level
	Message string
}

// NoticeFor maps an action error to what the user is told. NotFound and nil
// produce no notice.
func NoticeFor(err error) (Notice, bool) {
	switch {
	case err == nil, errors.Is(err, core.ErrNotFound):
		return Notice{}, false
	case errors.Is(err, core.ErrEmptyName):
		return Notice{Level: LevelError, Message: "Please enter a name"}, true
	case errors.Is(err, core.ErrInputRejected):
		msg := strings.TrimPrefix(err.Error(), core.ErrInputRejected.Error()+": ")
		return Notice{Level: LevelError, Message: capitalize(msg)}, true
	case errors.Is(err, core.ErrPersistence):
		return Notice{Level: LevelWarning, Message: "Saved for this session only. Storage is unavailable."}, true
	default:
		return Notice{Level: LevelError, Message: "Something went wrong"}, true
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
