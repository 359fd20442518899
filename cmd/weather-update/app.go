package main

import (
	"errors"
	"io"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/i474232898/metaweather-update/internal/config"
	"github.com/i474232898/metaweather-update/internal/store"
	"github.com/i474232898/metaweather-update/internal/weather"
	"github.com/i474232898/metaweather-update/internal/weather/providers"
)

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:   "weather-update",
		Usage:  "Fetch a day of weather observations and store them in SQLite",
		Writer: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "Date to get the weather for (e.g. 2013-04-27)",
			},
			&cli.BoolFlag{
				Name:  "verify-tls",
				Usage: "Verify the API server certificate",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database file (default $WEATHER_DB_PATH or weather_info.db)",
			},
		},
		Action: updateAction,
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the stored observations",
				Action: showAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "Only rows with this applicable date",
					},
				},
			},
			{
				Name:   "drop",
				Usage:  "Drop the observation table",
				Action: dropAction,
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and run the daily update",
				Action: serveAction,
			},
		},
	}
}

func updateAction(c *cli.Context) error {
	if !c.IsSet("date") {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("missing required flag --date", 2)
	}
	date, err := weather.ParseDate(c.String("date"))
	if err != nil {
		return err
	}

	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = env.service.UpdateAndDisplay(ctx, date, c.App.Writer)
	return err
}

func showAction(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if !c.IsSet("date") {
		return env.service.Display(c.Context, c.App.Writer)
	}

	date, err := weather.ParseDate(c.String("date"))
	if err != nil {
		return err
	}
	rows, err := env.service.Observations(c.Context, date.Format(weather.DateLayout))
	if err != nil {
		return err
	}
	return weather.WriteRows(c.App.Writer, rows)
}

func dropAction(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	err = env.service.DropTable(c.Context)
	if errors.Is(err, store.ErrTableMissing) {
		return cli.Exit("nothing to drop: "+err.Error(), 1)
	}
	return err
}

// environment holds what every command needs.
type environment struct {
	cfg     *config.AppConfig
	store   *store.SQLiteStore
	service *weather.Service
}

func (e *environment) Close() {
	_ = e.store.Close()
}

// setup loads configuration, applies flag overrides and opens the store.
func setup(c *cli.Context) (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("verify-tls") {
		cfg.VerifyTLS = c.Bool("verify-tls")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	httpClient := providers.NewHTTPClient(cfg.HTTPTimeout, cfg.VerifyTLS)
	provider := providers.NewMetaWeatherProvider(httpClient, cfg.BaseURL(), cfg.LocationID, providers.BackoffConfig{
		MaxRetries:      cfg.FetchMaxRetries,
		InitialInterval: cfg.FetchRetryInterval,
		MaxInterval:     5 * cfg.FetchRetryInterval,
	})

	service := weather.NewService(st, provider)
	service.SetDebug(cfg.Debug)

	return &environment{cfg: cfg, store: st, service: service}, nil
}
