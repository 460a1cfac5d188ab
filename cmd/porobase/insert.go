package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/porolink/porobase"
)

var insertCmd = &cobra.Command{
	Use:   "insert <collection> <json>...",
	Short: "Insert one document per JSON argument",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs := make([]porobase.M, 0, len(args)-1)
		for _, raw := range args[1:] {
			var doc porobase.M
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				return fmt.Errorf("parsing document %q: %w", raw, err)
			}
			docs = append(docs, doc)
		}

		ids, err := client.From(args[0]).Insert(cmd.Context(), docs...)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return persist(cmd.Context())
	},
}
