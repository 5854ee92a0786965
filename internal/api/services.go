package api

import (
	"github.com/grimoireapp/grimoire-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Auth    *service.AuthService
	Session *service.SessionService
	Tag     *service.TagService
	Day     *service.DayService
}
