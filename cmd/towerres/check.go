package main

import (
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/funvibe/tower/internal/config"
	"github.com/funvibe/tower/internal/logging"
	"github.com/funvibe/tower/internal/scenario"
	"github.com/funvibe/tower/internal/tower"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE|DIR...",
		Short: "Resolve scenarios and compare the outcomes with their expectations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			paths, err := expandPaths(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := printer{w: out, color: opts.colored(out)}
			failedFiles, checked := 0, 0
			for _, path := range paths {
				failures, n, err := checkFile(cmd, opts, path, cfg)
				checked += n
				if err != nil {
					failedFiles++
					p.printf("%s %s: %s\n", p.paint(ansiRed, "FAIL"), path, err)
					continue
				}
				if len(failures) > 0 {
					failedFiles++
					p.printf("%s %s\n", p.paint(ansiRed, "FAIL"), path)
					for _, f := range failures {
						p.printf("    %s\n", f)
					}
					continue
				}
				p.printf("%s %s (%s)\n", p.paint(ansiGreen, "ok"), path, english.Plural(n, "call", ""))
			}

			if failedFiles > 0 {
				return exitCodeError{code: 1, err: errors.Errorf("%s of %s failed",
					humanize.Comma(int64(failedFiles)), english.Plural(len(paths), "scenario", ""))}
			}
			p.printf("%s checked in %s\n", english.Plural(checked, "call", ""), english.Plural(len(paths), "scenario", ""))
			return nil
		},
	}
	return cmd
}

// checkFile runs one scenario and returns the failed expectations together
// with the number of calls resolved.
func checkFile(cmd *cobra.Command, opts *globalOptions, path string, cfg *config.Config) ([]error, int, error) {
	s, err := opts.loadScenario(path, cfg)
	if err != nil {
		return nil, 0, err
	}
	logger := logging.FromConfig(s.Config, cmd.ErrOrStderr())
	results, err := scenario.Run(cmd.Context(), s, tower.WithLogger(logger))
	if err != nil {
		return nil, len(results), err
	}
	var failures []error
	for _, r := range results {
		if err := r.Check(); err != nil {
			failures = append(failures, err)
		}
	}
	return failures, len(results), nil
}
