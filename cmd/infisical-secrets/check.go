package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/infisical-secrets/export"
	"github.com/jonwraymond/infisical-secrets/health"
)

func newCheckCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run credential-free preflight checks",
		Long: `check validates the configuration, probes the service status endpoint
and, for file export, verifies the output file can be written. No
credentials are sent. Warnings are reported but only a failed check makes
it exit non-zero.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			rt := newRuntime(cmd)
			cfg, cfgErr := loadConfig(cmd, opts, rt)

			p := health.NewPreflight(cfg.Timeout)
			p.Add("config", health.ConfigCheck(func() error {
				if cfgErr != nil {
					return cfgErr
				}
				return cfg.Validate()
			}))
			p.Add("api", health.APICheck(cfg.Domain, nil))
			if strings.TrimSpace(cfg.ExportType) == export.TypeFile {
				if target, err := export.ResolvePath(rt.Workspace(), cfg.FileOutputPath); err == nil {
					p.Add("output", health.OutputCheck(target))
				}
			}

			report := health.NewReport(p.Run(cmd.Context()))

			var err error
			switch format {
			case "json":
				err = report.WriteJSON(cmd.OutOrStdout())
			default:
				err = report.WriteText(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			if !report.Passed() {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")

	return cmd
}
