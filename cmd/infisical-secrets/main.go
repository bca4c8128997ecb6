// Package main is the entry point for the infisical-secrets CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "0.1.0"

const serviceName = "infisical-secrets"

const (
	logFormatActions = "actions"
	logFormatJSON    = "json"
)

// errReported marks failures already reported to the user.
var errReported = errors.New("failure already reported")

// options holds flags shared by every command.
type options struct {
	configFile      string
	logLevel        string
	logFormat       string
	timeout         string
	tokenField      string
	traceExporter   string
	metricsExporter string
	sampleRatio     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   serviceName,
		Short: "Fetch secrets from Infisical and export them to a CI job",
		Long: `infisical-secrets logs in with universal auth or OIDC, fetches the raw
secrets of a project environment and path, resolves secret imports, and
exports the result as job environment variables or as a KEY='VALUE' file.

Settings come from the step inputs (INPUT_* variables), an optional YAML
config file, and flags, with flags taking precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSecrets(cmd, opts)
		},
	}

	addConfigFlags(root, opts)

	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
