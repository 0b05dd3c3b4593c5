package internal

import (
	"toast_dashboard/internal/config"
	"toast_dashboard/internal/logging"
	"toast_dashboard/internal/sales"
	"toast_dashboard/internal/server"
	"toast_dashboard/internal/toast"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		toast.Module(),
		sales.Module(),
		server.Module(),
	)

	if err := app.Err(); err != nil {
		return err
	}

	app.Run()
	return nil
}
