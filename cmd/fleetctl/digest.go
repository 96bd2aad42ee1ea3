package main

import (
	"fmt"
	"io"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"fleet-service/internal/deadline"
	"fleet-service/internal/mailer"
	"fleet-service/internal/service"
)

func newDigestCommand(a *app) *cobra.Command {
	date := &dateFlag{}
	var (
		horizon int
		send    bool
	)
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Show the notification digest, optionally sending it by email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sender service.Sender
			if send {
				smtp, err := mailer.NewSMTPMailer(a.cfg.Mail)
				if err != nil {
					return err
				}
				sender = smtp
			}
			notifications := service.NewNotificationService(a.repo, a.engine, sender, a.cfg.Digest.HorizonDays, a.log)

			digest, err := notifications.Build(cmd.Context(), date.Or(time.Now()), horizonDays(cmd, horizon, a.cfg.Digest.HorizonDays))
			if err != nil {
				return err
			}
			renderDigest(cmd.OutOrStdout(), digest)

			if !send {
				return nil
			}
			result, err := notifications.Deliver(cmd.Context(), digest)
			if err != nil {
				return err
			}
			if result.Sent {
				fmt.Fprintf(cmd.OutOrStdout(), "\nsent: %s\n", result.Subject)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "\nnothing due, no email sent")
			}
			return nil
		},
	}
	cmd.Flags().Var(date, "date", "build the digest as of this day (YYYY-MM-DD), default today")
	cmd.Flags().IntVar(&horizon, "horizon", deadline.DefaultHorizonDays, "look-ahead in days, default DIGEST_HORIZON_DAYS")
	cmd.Flags().BoolVar(&send, "send", false, "email the digest to MAIL_TO")
	return cmd
}

// horizonDays prefers an explicit --horizon over the configured one.
func horizonDays(cmd *cobra.Command, flag, configured int) int {
	if cmd.Flags().Changed("horizon") {
		return flag
	}
	return configured
}

func renderDigest(w io.Writer, d mailer.Digest) {
	fmt.Fprintf(w, "%s (até %s)\n\n", d.Subject(), d.TargetDate)
	if d.EventCount == 0 {
		fmt.Fprintln(w, "No upcoming or overdue events.")
		return
	}

	table := uitable.New()
	table.AddRow("PLATE", "VEHICLE", "EVENT", "DATE")
	for _, v := range d.Vehicles {
		for _, e := range v.Events {
			table.AddRow(v.Vehicle.Plate, v.Vehicle.Make+" "+v.Vehicle.Model, e.Category.Label(), e.Date)
		}
	}
	fmt.Fprintln(w, table)
}
