package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/funvibe/tower/internal/diagnostics"
	"github.com/funvibe/tower/internal/logging"
	"github.com/funvibe/tower/internal/scenario"
	"github.com/funvibe/tower/internal/tower"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiDim   = "\x1b[2m"
)

type printer struct {
	w     io.Writer
	color bool
}

func (p printer) paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + ansiReset
}

func (p printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// probeTracer prints every lookup of a resolution.
type probeTracer struct {
	p printer
}

func (t probeTracer) Probe(pr tower.Probe) {
	mark := ""
	if pr.Invoke {
		mark = " (invoke)"
	}
	t.p.printf("    %s %s %s found=%d%s\n", t.p.paint(ansiDim, "probe"), pr.Group, pr.Level, pr.Found, mark)
}

func (t probeTracer) Skip(level string, group tower.Group) {
	t.p.printf("    %s %s %s\n", t.p.paint(ansiDim, "skip"), group, level)
}

func newResolveCmd(opts *globalOptions) *cobra.Command {
	var showStats bool
	var trace bool

	cmd := &cobra.Command{
		Use:   "resolve FILE",
		Short: "Resolve every call of a scenario and print the selected candidates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			s, err := opts.loadScenario(args[0], cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := printer{w: out, color: opts.colored(out)}
			logger := logging.FromConfig(s.Config, cmd.ErrOrStderr())
			reporter := diagnostics.NewReporter(logger)
			options := []tower.Option{tower.WithLogger(logger), tower.WithReporter(reporter)}
			if trace {
				options = append(options, tower.WithTracer(probeTracer{p: p}))
			}

			if s.Description != "" {
				p.printf("%s: %s\n", s.Path, s.Description)
			}
			results, err := scenario.Run(cmd.Context(), s, options...)
			if err != nil {
				return err
			}

			var total tower.Stats
			for _, r := range results {
				printOutcome(p, r)
				st := r.Outcome.Stats
				total.Probes += st.Probes
				total.Skipped += st.Skipped
				total.Dropped += st.Dropped
				total.Tasks += st.Tasks
				total.Candidates += st.Candidates
				if showStats {
					p.printf("    %s\n", p.paint(ansiDim, formatStats(st)))
				}
			}
			if showStats {
				p.printf("total: %s calls, %s\n", humanize.Comma(int64(len(results))), formatStats(total))
			}
			for _, d := range reporter.Errors() {
				p.printf("%s\n", p.paint(ansiRed, d.Error()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showStats, "stats", false, "print probe and task counts")
	cmd.Flags().BoolVar(&trace, "trace", false, "print every level lookup")
	return cmd
}

func printOutcome(p printer, r *scenario.Result) {
	out := r.Outcome
	group := "-"
	if out.Best != nil {
		group = out.Best.String()
	}
	kind := out.Kind.String()
	switch {
	case out.Kind == tower.Resolved && out.Applicability == tower.Applicable:
		kind = p.paint(ansiGreen, kind)
	case out.Kind != tower.Resolved || !out.Applicability.IsSuccess():
		kind = p.paint(ansiRed, kind)
	}
	p.printf("calls[%d] %s: %s %s", r.Case.Index, out.Call, kind, group)
	if out.Kind == tower.Resolved && out.Applicability != tower.Applicable {
		p.printf(" (%s)", out.Applicability)
	}
	p.printf("\n")
	for _, c := range out.Candidates {
		p.printf("    %s\n", c)
	}
}

func formatStats(st tower.Stats) string {
	return fmt.Sprintf("probes=%s skipped=%s dropped=%s tasks=%s candidates=%s",
		humanize.Comma(int64(st.Probes)),
		humanize.Comma(int64(st.Skipped)),
		humanize.Comma(int64(st.Dropped)),
		humanize.Comma(int64(st.Tasks)),
		humanize.Comma(int64(st.Candidates)),
	)
}
