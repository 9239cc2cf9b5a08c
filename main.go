package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/heshanpadmasiri/nunitMSTest/diagnostics"
	"github.com/heshanpadmasiri/nunitMSTest/workspace"
)

var rootCmd = &cobra.Command{
	Use:           "nunitMSTest",
	Short:         "Migrate C# tests from NUnit to MSTest",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <file.cs|directory>",
	Short: "Rewrite NUnit tests as MSTest tests",
	Long: `Rewrite NUnit tests as MSTest tests. A single file is printed to stdout
unless --write or --out is given; directories are always written.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

var checkCmd = &cobra.Command{
	Use:   "check <file.cs|directory>",
	Short: "Report the constructs that cannot be migrated without writing anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log progress to stderr")

	for _, cmd := range []*cobra.Command{migrateCmd, checkCmd} {
		cmd.Flags().Int("jobs", 0, "max files migrated in parallel (0=auto)")
		cmd.Flags().Bool("strict", false, "exit with an error when anything could not be migrated")
		cmd.Flags().Bool("comment-unsupported", false, "comment out the attributes of methods that could not be fully migrated")
	}
	migrateCmd.Flags().Bool("write", false, "rewrite files in place")
	migrateCmd.Flags().String("out", "", "write migrated files below this directory instead of in place")

	rootCmd.AddCommand(migrateCmd, checkCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

// run holds the settings of one invocation, after Config.toml and flags are merged
type run struct {
	config
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

func newRun(cmd *cobra.Command) (*run, error) {
	wd, err := os.Getwd()
	diagnostics.Fatal("reading working directory failed", err)
	r := &run{config: loadConfig(wd), out: cmd.OutOrStdout()}

	flags := cmd.Flags()
	if flags.Changed("jobs") {
		if r.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("strict") {
		if r.Strict, err = flags.GetBool("strict"); err != nil {
			return nil, fmt.Errorf("failed to get strict flag: %w", err)
		}
	}
	if flags.Changed("comment-unsupported") {
		if r.CommentUnsupported, err = flags.GetBool("comment-unsupported"); err != nil {
			return nil, fmt.Errorf("failed to get comment-unsupported flag: %w", err)
		}
	}
	if colorMode, _ := cmd.Flags().GetString("color"); colorMode != "" {
		r.Color = colorMode
	}
	if r.verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}

	switch r.Color {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return nil, fmt.Errorf("unknown color mode %q", r.Color)
	}

	level := slog.LevelWarn
	if r.verbose {
		level = slog.LevelDebug
	}
	r.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return r, nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (r *run) migrate(ctx context.Context, root string) ([]workspace.FileResult, error) {
	paths, err := workspace.Discover(root, r.Exclude)
	if err != nil {
		return nil, fmt.Errorf("finding C# files: %w", err)
	}
	r.logger.Debug("discovered files", "root", root, "count", len(paths))
	return workspace.Migrate(ctx, paths, workspace.Options{
		Jobs:               r.Jobs,
		CommentUnsupported: r.CommentUnsupported,
		Logger:             r.logger,
	})
}

func runMigrate(cmd *cobra.Command, args []string) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	root := args[0]
	results, err := r.migrate(cmd.Context(), root)
	if err != nil {
		return err
	}

	write, _ := cmd.Flags().GetBool("write")
	outDir, _ := cmd.Flags().GetString("out")
	info, statErr := os.Stat(root)
	singleFile := statErr == nil && !info.IsDir()

	if singleFile && !write && outDir == "" {
		result := results[0]
		if result.Err != nil {
			return result.Err
		}
		output := result.Output
		if result.Skipped {
			output, err = os.ReadFile(root)
			if err != nil {
				return err
			}
		}
		if _, err := r.out.Write(output); err != nil {
			return err
		}
		// the migrated source owns stdout, the report goes to stderr
		return finish(r, results, newReporter(cmd.ErrOrStderr()))
	}

	if _, err := workspace.Write(results, root, outDir); err != nil {
		return err
	}
	return finish(r, results, newReporter(r.out))
}

func runCheck(cmd *cobra.Command, args []string) error {
	r, err := newRun(cmd)
	if err != nil {
		return err
	}
	results, err := r.migrate(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return finish(r, results, newReporter(r.out))
}

// finish prints the report and decides the exit status
func finish(r *run, results []workspace.FileResult, rep *reporter) error {
	unsupported := rep.report(results)
	if err := workspace.Failed(results); err != nil {
		return err
	}
	if r.Strict && unsupported > 0 {
		return fmt.Errorf("%d constructs could not be migrated", unsupported)
	}
	return nil
}
