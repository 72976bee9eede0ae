package main

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/queryparams/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			fmt.Fprint(os.Stderr, e.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "queryparams",
		Short: "Serve URL query params kept in sync with the browser",
		Long: `queryparams hosts sessions whose URL query parameters are held on the
server. Every change to a session's params is pushed to the browser as
a new canonical query string over WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		sanitizeCmd(),
		versionCmd(),
	)
	return root
}
