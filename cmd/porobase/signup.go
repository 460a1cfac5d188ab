package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/porolink/porobase"
	"github.com/porolink/porobase/adapter/auth"
)

var (
	signupFirstName string
	signupLastName  string
)

var signupCmd = &cobra.Command{
	Use:   "signup <email> <password>",
	Short: "Register an account and print its access token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := auth.SignUpParams{
			Credentials: porobase.Credentials{Email: args[0], Password: args[1]},
		}
		if signupFirstName != "" || signupLastName != "" {
			params.Data = porobase.M{
				"first_name": signupFirstName,
				"last_name":  signupLastName,
			}
		}

		data, err := client.Auth().SignUp(cmd.Context(), params)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), data.User.ID)
		fmt.Fprintln(cmd.OutOrStdout(), data.Session.AccessToken)
		return persist(cmd.Context())
	},
}

func init() {
	signupCmd.Flags().StringVar(&signupFirstName, "first-name", "", "profile first name")
	signupCmd.Flags().StringVar(&signupLastName, "last-name", "", "profile last name")
}
