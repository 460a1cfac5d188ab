package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/porolink/porobase/adapter/channel"
	"github.com/porolink/porobase/domain"
)

var (
	watchFilter string
	watchEvent  string
)

var watchCmd = &cobra.Command{
	Use:   "watch <collection>",
	Short: "Follow realtime changes, one JSON event per line, until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		enc := json.NewEncoder(cmd.OutOrStdout())
		ch := client.Channel("watch:" + args[0]).
			On(channel.PostgresChanges, channel.Config{
				Table:  args[0],
				Event:  watchEvent,
				Filter: watchFilter,
			}, func(ev domain.ChangeEvent) {
				_ = enc.Encode(ev)
			})
		if err := ch.Subscribe(ctx); err != nil {
			return err
		}
		defer ch.Unsubscribe()

		<-ctx.Done()
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchFilter, "filter", "", "equality filter, field=eq.value")
	watchCmd.Flags().StringVar(&watchEvent, "event", channel.EventAll, "INSERT, UPDATE, DELETE or *")
}
