package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/porolink/porobase/adapter/query"
)

var (
	queryEq     []string
	queryILike  string
	queryOr     string
	queryOrder  string
	queryDesc   bool
	querySingle bool
)

var queryCmd = &cobra.Command{
	Use:   "query <collection>",
	Short: "Run a filtered query and print matching documents as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b := client.From(args[0]).Select()
		for _, pair := range queryEq {
			field, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("bad --eq %q: want field=value", pair)
			}
			b = b.Eq(field, value)
		}
		if queryILike != "" {
			field, pattern, ok := strings.Cut(queryILike, "=")
			if !ok {
				return fmt.Errorf("bad --ilike %q: want field=pattern", queryILike)
			}
			b = b.ILike(field, pattern)
		}
		if queryOr != "" {
			b = b.Or(queryOr)
		}
		if queryOrder != "" {
			if queryDesc {
				b = b.Order(queryOrder, query.Descending())
			} else {
				b = b.Order(queryOrder)
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		if querySingle {
			doc, err := b.Single(cmd.Context())
			if err != nil {
				return err
			}
			if doc == nil {
				return nil
			}
			return enc.Encode(doc)
		}

		docs, err := b.Execute(cmd.Context())
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := enc.Encode(doc); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringArrayVar(&queryEq, "eq", nil, "equality filter, field=value (repeatable)")
	queryCmd.Flags().StringVar(&queryILike, "ilike", "", "case-insensitive substring filter, field=pattern")
	queryCmd.Flags().StringVar(&queryOr, "or", "", "disjunction, field.eq.value,field.eq.value")
	queryCmd.Flags().StringVar(&queryOrder, "order", "", "order by field")
	queryCmd.Flags().BoolVar(&queryDesc, "desc", false, "order descending")
	queryCmd.Flags().BoolVar(&querySingle, "single", false, "print only the first match")
}
