package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fleet-service/internal/config"
	"fleet-service/internal/db"
	"fleet-service/internal/deadline"
	"fleet-service/internal/logger"
	"fleet-service/internal/repository"
)

// app holds what every subcommand needs; it is filled before any RunE.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	repo   *repository.VehicleRepository
	engine *deadline.Engine
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "fleetctl",
		Short:        "Operate the fleet deadline service from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	cmd.AddCommand(
		newAlertsCommand(a),
		newDigestCommand(a),
		newImportCommand(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New(cfg.Environment)

	database, err := db.New(cfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.repo = repository.NewVehicleRepository(database)
	a.engine = deadline.NewEngine(a.log.With().Str("component", "deadline").Logger())
	return nil
}

// dateFlag is a --date value; unset means today.
type dateFlag struct {
	date deadline.Date
}

var _ pflag.Value = (*dateFlag)(nil)

func (f *dateFlag) String() string {
	return f.date.String()
}

func (f *dateFlag) Set(s string) error {
	d, err := deadline.ParseDate(s)
	if err != nil {
		return err
	}
	f.date = d
	return nil
}

func (f *dateFlag) Type() string {
	return "date"
}

func (f *dateFlag) Or(now time.Time) deadline.Date {
	if f.date.IsZero() {
		return deadline.Today(now)
	}
	return f.date
}
