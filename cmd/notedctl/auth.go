package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authUsername string
	authPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and print its token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := apiClient().Register(cmd.Context(), authEmail, authUsername, authPassword)
		if err != nil {
			return err
		}

		fmt.Printf("registered %s (%s)\n", session.User.Name, session.User.ID)
		fmt.Printf("export %s=%s\n", EnvToken, session.Token)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print the session token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := apiClient().Login(cmd.Context(), authEmail, authPassword)
		if err != nil {
			return err
		}

		fmt.Printf("logged in as %s\n", session.User.Name)
		fmt.Printf("export %s=%s\n", EnvToken, session.Token)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the account behind the current token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := apiClient().CurrentUser(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s (%s)\n", user.Name, user.ID)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&authEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&authUsername, "username", "", "display name")
	registerCmd.Flags().StringVar(&authPassword, "password", "", "password (min 8 characters)")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringVar(&authEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&authPassword, "password", "", "password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(registerCmd, loginCmd, profileCmd)
}
