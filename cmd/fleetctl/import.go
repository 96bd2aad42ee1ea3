package main

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"fleet-service/internal/fleetfile"
	"fleet-service/internal/service"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create vehicles from a YAML fleet file, skipping known plates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fleetfile.Load(args[0])
			if err != nil {
				return err
			}
			vehicles := service.NewVehicleService(a.repo, a.engine, nil, a.cfg.Files.MaxImageBytes, a.log)

			result, err := fleetfile.Import(cmd.Context(), vehicles, f)
			renderImport(cmd.OutOrStdout(), result)
			return err
		},
	}
}

func renderImport(w io.Writer, r fleetfile.Result) {
	table := uitable.New()
	table.AddRow("PLATE", "RESULT")
	for _, plate := range r.Created {
		table.AddRow(plate, "created")
	}
	for _, plate := range r.Skipped {
		table.AddRow(plate, "skipped (already exists)")
	}
	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "\n%d created, %d skipped\n", len(r.Created), len(r.Skipped))
}
