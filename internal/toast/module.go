package toast

import (
	"toast_dashboard/internal/sales"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"toast",
		fx.Provide(
			NewClient,
			func(c *Client) sales.Fetcher { return c },
		),
	)
}
