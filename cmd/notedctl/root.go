package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"noted/internal/client/remote"
)

// Environment variables consulted when the flags are not set.
const (
	EnvServer = "NOTED_SERVER"
	EnvToken  = "NOTED_TOKEN"
)

const defaultServer = "http://localhost:8080"

var (
	serverURL string
	token     string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "notedctl",
	Short: "Terminal client for the noted service",
	Long: `notedctl talks to a noted server: browse the feed, create, edit and
delete notes. Mutations apply to the local view immediately and roll back
with a message when the server rejects them; deletes stay undoable for a
few seconds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if serverURL == "" {
			serverURL = os.Getenv(EnvServer)
		}
		if serverURL == "" {
			serverURL = defaultServer
		}
		if token == "" {
			token = os.Getenv(EnvToken)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "base URL of the noted server (env "+EnvServer+")")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token (env "+EnvToken+")")
}

// apiClient builds the HTTP client from the resolved flags.
func apiClient() *remote.HTTPClient {
	return remote.NewHTTPClient(serverURL, token)
}
