package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/porolink/porobase/pkg/tracking"
)

var trackCmd = &cobra.Command{
	Use:   "track <parcel-id> <status>",
	Short: "Move a parcel to a new lifecycle status",
	Long:  "Move a parcel to picked_up, in_transit or delivered, stamping the update time. No location fix is attached from the console.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parcels := client.From("parcels")
		_, err := tracking.UpdateStatus(cmd.Context(), parcels, slog.Default(), nil, args[0], args[1])
		if err != nil {
			return err
		}
		doc, _, err := client.Store().Get(cmd.Context(), "parcels", args[0])
		if err != nil {
			return err
		}
		loc, err := tracking.LocationOf(doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tracking.FormatStatus(args[1]))
		fmt.Fprintln(cmd.OutOrStdout(), tracking.FormatLocation(loc))
		return persist(cmd.Context())
	},
}
