package main

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/funvibe/tower/internal/config"
	"github.com/funvibe/tower/internal/scenario"
)

type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
}

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "towerres",
		Short:         "Resolve calls of scenario files through the scope tower",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration file (default: nearest "+config.ConfigFileName+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newResolveCmd(opts), newCheckCmd(opts))
	return cmd
}

// loadConfig returns the configuration named by --config, the nearest
// tower.yaml above the working directory, or the defaults.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.OverrideLog(o.logLevel, o.logFormat); err != nil {
		return nil, errors.Wrap(err, "flags")
	}
	return cfg, nil
}

// colored reports whether w is a terminal that should get ANSI colors.
func (o *globalOptions) colored(w io.Writer) bool {
	if o.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// loadScenario loads path. The global configuration applies to scenarios
// without a config section; logging options apply to all of them.
func (o *globalOptions) loadScenario(path string, cfg *config.Config) (*scenario.Scenario, error) {
	file, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	if file.Config == nil {
		file.Config = cfg
	} else {
		file.Config.Log = cfg.Log
	}
	return file.Build(path)
}

// expandPaths replaces directories by the scenario files below them.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", arg)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && scenario.IsScenarioFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", arg)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, errors.New("no scenario files found")
	}
	return paths, nil
}
