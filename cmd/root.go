package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogdakke/pathspec/internal/config"
	"github.com/ogdakke/pathspec/internal/gitwildmatch"
	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/output"
	"github.com/ogdakke/pathspec/internal/pattern"
	"github.com/ogdakke/pathspec/internal/registry"
	"github.com/ogdakke/pathspec/internal/scan"
	"github.com/ogdakke/pathspec/internal/tui"
)

const Version = "v0.1.0"

// ErrNoMatch is returned by check when none of the paths matched. Execute
// turns it into exit status 1 without printing it.
var ErrNoMatch = errors.New("no paths matched")

type rootFlags struct {
	patterns     []string
	from         []string
	configFile   string
	verboseCount int
	useTUI       bool
	tuiJSON      string
	showVersion  bool
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "pathspec [directory]",
		Short: "Match files against gitignore-style patterns",
		Long: `Pathspec compiles gitignore-style pattern lines and lists the files of a
directory tree they select, together with the rule that decided each file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
				return nil
			}

			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			if flags.tuiJSON != "" {
				logger.Info("Starting TUI mode from JSON", "file", flags.tuiJSON)
				return tui.RunTUIFromJSON(flags.tuiJSON)
			}

			if len(args) == 0 && len(cfg.Patterns) == 0 && len(cfg.From) == 0 && !flags.useTUI {
				return cmd.Help()
			}

			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			opts := scanOptions(cfg, dir)

			if flags.useTUI {
				logger.Info("Starting TUI mode", "directory", dir, "style", cfg.Style, "workers", opts.Workers)
				return tui.RunTUI(opts)
			}

			return runScan(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringArrayVarP(&flags.patterns, "pattern", "p", nil, "Pattern line, repeatable; later lines win")
	pf.StringArrayVarP(&flags.from, "from", "f", nil, "Read pattern lines from a file such as .gitignore, repeatable")
	pf.StringP(config.KeyStyle, "s", gitwildmatch.Name, "Pattern style ("+strings.Join(registry.Builtin().Names(), ", ")+")")
	pf.StringP(config.KeyFormat, "o", output.FormatTable, "Output format ("+strings.Join(output.Formats(), ", ")+")")
	pf.StringVar(&flags.configFile, "config", "", "Config file (default ./.pathspec.yaml)")
	pf.String(config.KeyLogFormat, "text", "Log format (text, json)")
	pf.CountVarP(&flags.verboseCount, "verbose", "V", "Increase verbosity (-V info, -VV debug, -VVV trace)")

	rf := rootCmd.Flags()
	rf.BoolVarP(&flags.showVersion, "version", "v", false, "Show version and exit")
	rf.String(config.KeyTemplate, "", "Go text/template for --format template; sprig functions are available")
	rf.IntP(config.KeyWorkers, "w", 0, "Number of worker goroutines (0 = auto-detect based on CPU cores)")
	rf.BoolP(config.KeyInvert, "i", false, "List the files the patterns do not select")
	rf.BoolP(config.KeyMetadata, "m", true, "Include metadata in JSON output (directory, file counts, timing info)")
	rf.Bool(config.KeyIncludeDotfiles, false, "Include dotfiles and files below dot directories")
	rf.Bool(config.KeyNested, false, "Also apply .gitignore files found inside the tree")
	rf.BoolVar(&flags.useTUI, "tui", false, "Launch the interactive pattern tester")
	rf.StringVar(&flags.tuiJSON, "tui-json", "", "Show a saved JSON result in the TUI")

	rootCmd.AddCommand(newCheckCmd(flags), newCompileCmd(flags))
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, ErrNoMatch) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// load merges the config file, environment and flags, then sets up logging.
// Pattern lists given on the command line replace the configured ones.
func (f *rootFlags) load(cmd *cobra.Command) (config.Config, error) {
	logger.SetVerbosity(f.verboseCount)

	v := config.New()
	if err := config.BindFlags(v, cmd); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(v, f.configFile)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("pattern") {
		cfg.Patterns = f.patterns
	}
	if cmd.Flags().Changed("from") {
		cfg.From = f.from
	}

	logger.SetFormat(cfg.LogFormat)
	logger.Debug("Configuration loaded", "style", cfg.Style, "format", cfg.Format, "patterns", len(cfg.Patterns), "from", cfg.From)
	return cfg, nil
}

func scanOptions(cfg config.Config, dir string) scan.Options {
	return scan.Options{
		Directory:       dir,
		Lines:           cfg.Patterns,
		PatternFiles:    cfg.From,
		Style:           cfg.Style,
		Workers:         cfg.EffectiveWorkers(),
		Invert:          cfg.Invert,
		IncludeDotfiles: cfg.IncludeDotfiles,
		Nested:          cfg.Nested,
	}
}

func runScan(ctx context.Context, w io.Writer, cfg config.Config, opts scan.Options) error {
	startTime := time.Now()
	logger.Info("Starting pattern scan", "directory", opts.Directory, "format", cfg.Format, "workers", opts.Workers, "includeDotfiles", opts.IncludeDotfiles)

	result, err := scan.Run(ctx, opts, nil)
	if err != nil {
		return err
	}

	outputStart := time.Now()
	outputter := output.NewOutputter(w, cfg.Metadata, cfg.Template)
	if err := outputter.Output(cfg.Format, opts.Directory, cfg.Style, result); err != nil {
		return err
	}

	logger.Info("Total execution time", "duration", time.Since(startTime), "output_duration", time.Since(outputStart))
	return nil
}

func newCheckCmd(flags *rootFlags) *cobra.Command {
	var details bool

	checkCmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Print the given paths that the patterns select",
		Long: `Check matches each path against the pattern set without touching the
file system. Paths are read from standard input, one per line, when none are
given. The exit status is 1 when no path matched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			paths := args
			if len(paths) == 0 {
				if paths, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			spec, _, err := scan.Compile(scanOptions(cfg, "."))
			if err != nil {
				return err
			}
			sources := spec.Sources()

			out := cmd.OutOrStdout()
			matched := 0
			for _, path := range paths {
				res, err := spec.Check(path)
				if err != nil {
					return err
				}
				if res.Matched {
					matched++
				}

				switch {
				case details && res.Index >= 0:
					fmt.Fprintf(out, "%d:%s\t%s\n", res.Index, sources[res.Index], path)
				case details:
					fmt.Fprintf(out, "::\t%s\n", path)
				case res.Matched:
					fmt.Fprintln(out, path)
				}
			}

			logger.Info("Check completed", "paths", len(paths), "matched", matched)
			if matched == 0 {
				return ErrNoMatch
			}
			return nil
		},
	}

	checkCmd.Flags().BoolVarP(&details, "details", "d", false, "Print the deciding pattern for every path, including unmatched ones")
	return checkCmd
}

func newCompileCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compile pattern...",
		Short: "Print the compiled form and polarity of pattern lines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.Style == gitwildmatch.Name {
				for _, line := range args {
					regex, polarity := gitwildmatch.PatternToRegex(line)
					fmt.Fprintf(out, "%s\t%s\t%s\n", polarity, line, regex)
				}
				return nil
			}

			factory, err := registry.Builtin().Lookup(cfg.Style)
			if err != nil {
				return err
			}
			for _, line := range args {
				p, err := factory(line, pattern.Text)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", p.Polarity(), line, p.String())
			}
			return nil
		},
	}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
