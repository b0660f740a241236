package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nguyentantai21042004/medscribe/internal/apperrors"
	"github.com/nguyentantai21042004/medscribe/internal/config"
	"github.com/nguyentantai21042004/medscribe/internal/logger"
)

const usage = `medscribe: local medical transcription and summaries

Usage:
  medscribe <command> [flags]

Commands:
  watch       watch the input folder and process new recordings
  process     transcribe and summarize one recording (-i audio)
  summarize   summarize an existing transcript (-i transcript.txt)
  status      check the LLM server and list loaded models
  clean       remove leftover temporary files

Run "medscribe <command> --help" for the flags of a command.
`

type command func(ctx context.Context, args []string) error

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	commands := map[string]command{
		"watch":     runWatch,
		"process":   runProcess,
		"summarize": runSummarize,
		"status":    runStatus,
		"clean":     runClean,
	}

	name := os.Args[1]
	if name == "-h" || name == "--help" || name == "help" {
		fmt.Fprint(os.Stdout, usage)
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if apperrors.IsConfigurationError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func newFlagSet(name string) (*pflag.FlagSet, *globalFlags) {
	g := &globalFlags{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&g.configPath, "config", "c", "config.yaml", "path to the YAML config file (empty to skip)")
	fs.StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	fs.StringVar(&g.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	return fs, g
}

// load reads .env, the config file and the environment, and builds the logger.
func (g *globalFlags) load() (*config.Config, logger.Logger, error) {
	if err := config.LoadDotEnv(g.envFile); err != nil {
		return nil, nil, err
	}

	path := g.configPath
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && path == "config.yaml" {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}

	log := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return cfg, log, nil
}
