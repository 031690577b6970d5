package common

import (
	"candor-backend/internal/config"
	"candor-backend/internal/email"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ServerState struct {
	Echo     *echo.Echo
	Config   *config.Config
	DB       *gorm.DB
	Notifier email.Notifier
}
