package main

import (
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"fleet-service/internal/deadline"
	"fleet-service/internal/repository"
)

func newAlertsCommand(a *app) *cobra.Command {
	date := &dateFlag{}
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List warning and expired deadlines, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vehicles, err := a.repo.List(cmd.Context(), repository.VehicleFilter{})
			if err != nil {
				return err
			}
			alerts := a.engine.Aggregate(vehicles, date.Or(time.Now()))
			renderAlerts(cmd.OutOrStdout(), alerts)
			return nil
		},
	}
	cmd.Flags().Var(date, "date", "evaluate deadlines as of this day (YYYY-MM-DD), default today")
	return cmd
}

func renderAlerts(w io.Writer, alerts []deadline.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts.")
		return
	}

	table := uitable.New()
	table.MaxColWidth = 60
	table.Wrap = true
	table.AddRow("SEVERITY", "PLATE", "VEHICLE", "TITLE", "DATE")
	for _, a := range alerts {
		table.AddRow(a.Severity, a.Vehicle.Plate, a.Vehicle.Make+" "+a.Vehicle.Model, a.Title, a.Date.Display())
	}
	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "\n%d alert(s)\n", len(alerts))
}
