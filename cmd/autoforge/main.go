// Command autoforge runs an autonomous coding agent loop against a
// project directory. Each iteration launches one fresh Claude CLI
// session: the first bootstraps the project and its feature checklist,
// every later one picks the next feature, implements it, and commits.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muphy/autoforge/agent"
	"github.com/muphy/autoforge/claude"
	"github.com/muphy/autoforge/cli"
	"github.com/muphy/autoforge/config"
	"github.com/muphy/autoforge/git"
	"github.com/muphy/autoforge/logger"
	"github.com/muphy/autoforge/paths"
	"github.com/muphy/autoforge/prompts"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoforge",
		Short: "Autonomous coding agent harness for the Claude CLI",
		Long: `Autoforge drives an autonomous coding agent against a project directory.

Sessions run one at a time with a fresh context each. The first session
initializes the project and writes a feature checklist; every later
session implements and verifies features from that checklist, committing
as it goes. Progress persists in the project directory, so the loop can
be stopped and resumed at any time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLoop,
	}

	cmd.Flags().StringP("project-dir", "d", "", "project directory the agent works in (required)")
	cmd.Flags().StringP("model", "m", "", fmt.Sprintf("model alias %v (default %q)", config.Models, config.DefaultModel))
	cmd.Flags().IntP("max-iterations", "n", -1, "maximum number of sessions, negative for unlimited")
	cmd.Flags().Duration("session-timeout", 0, "wall-clock limit per session, 0 for none")
	cmd.Flags().String("prompts-dir", "", "directory with prompt template overrides")
	cmd.Flags().String("config", "", "config file (default autoforge.yaml in the config dir)")
	cmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("project-dir")

	cmd.AddCommand(newDoctorCmd())
	return cmd
}

// loadConfig merges flags over the config file over the defaults.
// A flag only overrides when it was actually set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()

	configPath, _ := f.GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if f.Changed("model") {
		cfg.Model, _ = f.GetString("model")
	}
	if f.Changed("max-iterations") {
		cfg.MaxIterations, _ = f.GetInt("max-iterations")
	}
	if f.Changed("session-timeout") {
		timeout, _ := f.GetDuration("session-timeout")
		cfg.SessionTimeout = config.Duration(timeout)
	}
	if f.Changed("prompts-dir") {
		cfg.PromptsDir, _ = f.GetString("prompts-dir")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	projectDir, _ := cmd.Flags().GetString("project-dir")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if path, err := logger.DefaultLogPath(); err == nil {
		if err := logger.Init(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
		}
	}
	logger.SetDebug(verbose)
	defer logger.Close()

	if err := cli.ValidateRequired(cli.Prerequisites(cfg.Binary)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Get()
	printer := agent.NewPrinter(cmd.OutOrStdout())
	repo := git.NewService()
	loader := prompts.Loader{Dir: cfg.PromptsDir}
	runner := agent.NewRunner(claude.NewClient(cfg.Binary), loader, cfg, printer, repo, log)
	loop := agent.NewLoop(cfg, runner, printer, repo, log)

	return loop.Run(ctx, projectDir)
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment autoforge depends on",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "autoforge doctor")

			if path, err := paths.ConfigFilePath(); err == nil {
				status := "not found, defaults in use"
				if _, statErr := os.Stat(path); statErr == nil {
					status = "OK"
				}
				fmt.Fprintf(out, "  Config: %s (%s)\n", path, status)
			}
			if path, err := logger.DefaultLogPath(); err == nil {
				fmt.Fprintf(out, "  Log: %s\n", path)
			}
			fmt.Fprintln(out)

			prereqs := cli.Prerequisites(cfg.Binary)
			fmt.Fprint(out, cli.FormatCheckResults(cli.CheckAll(prereqs)))

			return cli.ValidateRequired(prereqs)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
