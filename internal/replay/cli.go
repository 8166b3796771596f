package replay

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/drowsy/pkg/logger"
)

// Default flag values.
const (
	defaultBaseURL = "http://localhost:9080"
	defaultTimeout = 10 * time.Second
)

// NewRootCommand builds the replay CLI.
func NewRootCommand() *cobra.Command {
	cfg := &Config{}
	var jsonLogs bool

	root := &cobra.Command{
		Use:   "replay",
		Short: "Drive a drowsiness monitor with synthetic or recorded frames",
		Long: `replay submits frames to a running drowsiness monitor over HTTP.

Built-in scenarios use a synthetic 68-point face whose eye and mouth aspect
ratios and head pose are exact, so the alerts the server must raise are
known in advance and verified after the run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithWriter(cmd.ErrOrStderr(), jsonLogs); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if cfg.Verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.BaseURL, "url", defaultBaseURL, "base URL of the server")
	flags.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	flags.IntVar(&cfg.FPS, "fps", defaultFPS, "capture rate used to timestamp generated frames")
	flags.StringVarP(&cfg.OutputFile, "output", "o", "", "save generated frames as JSON lines")
	flags.BoolVar(&cfg.Resend, "resend", false, "resubmit the first frame and expect a duplicate")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every frame result")
	flags.BoolVar(&jsonLogs, "json-logs", false, "log as JSON")

	root.AddCommand(scenarioCmd(cfg), fileCmd(cfg), listCmd(), generateCmd(cfg))
	return root
}

func scenarioCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:       "scenario [name]",
		Short:     "Run a built-in scenario and verify the alerts it raises",
		Args:      cobra.ExactArgs(1),
		ValidArgs: scenarioNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := Lookup(args[0])
			if err != nil {
				return err
			}
			stats, err := RunScenario(cmd.Context(), cfg, sc)
			if stats != nil {
				PrintSummary(cmd.OutOrStdout(), stats)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scenario %s: ok\n", sc.Name)
			return nil
		},
	}
}

func fileCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "file [path]",
		Short: "Replay a JSON-lines file of recorded frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := RunFile(cmd.Context(), cfg, args[0])
			if stats != nil {
				PrintSummary(cmd.OutOrStdout(), stats)
			}
			return err
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, sc := range Scenarios() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", sc.Name, sc.Description)
			}
			return nil
		},
	}
}

func generateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [name]",
		Short: "Print the frames of a scenario as JSON lines without a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := Lookup(args[0])
			if err != nil {
				return err
			}
			frames := Generate(sc, time.Now(), cfg.FPS)
			if cfg.OutputFile != "" {
				return SaveFrames(cfg.OutputFile, frames)
			}
			return WriteFrames(cmd.OutOrStdout(), frames)
		},
	}
}

func scenarioNames() []string {
	all := Scenarios()
	names := make([]string, len(all))
	for i, sc := range all {
		names[i] = sc.Name
	}
	return names
}
