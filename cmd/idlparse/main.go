package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tallstoat/idlparser"
	"github.com/tallstoat/idlparser/internal/config"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, env *cmdEnv, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
}

// globalFlags are shared by every command. Set flags override the config
// file and the environment.
type globalFlags struct {
	configPath  string
	importPaths []string
	parallel    int
	logLevel    string
	logFormat   string
	noColor     bool
}

func (g *globalFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&g.configPath, "config", "c", "", "YAML config file")
	flags.StringArrayVarP(&g.importPaths, "import-path", "I", nil, "directory searched for imports (repeatable)")
	flags.IntVar(&g.parallel, "parallel", 0, "imports of one file parsed concurrently")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&g.logFormat, "log-format", "", "log format: text or json")
	flags.BoolVar(&g.noColor, "no-color", false, "disable colored output")
}

// cmdEnv is what commands read from and write to.
type cmdEnv struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	global globalFlags
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := &cmdEnv{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	code := execute(ctx, env, os.Args[1:])
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, env *cmdEnv, args []string) int {
	code := 0
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	rootCmd := &cobra.Command{
		Use:           "idlparse [options] COMMAND",
		Short:         "Parse and format schema files",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(env.stderr, rootCmd.UsageString())
		code = 1
		return nil
	}
	env.global.register(rootCmd.PersistentFlags())

	commands := []command{
		&cmdParse{},
		&cmdFormat{},
		&cmdWatch{},
	}
	for _, cmd := range commands {
		cmd := cmd
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			RunE: func(_ *cobra.Command, args []string) error {
				if env.global.noColor {
					color.NoColor = true
				}
				code = cmd.run(ctx, env, args)
				return nil
			},
		}
		rootCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(env.stderr, err)
		return 1
	}
	return code
}

// loadConfig merges the config file (or environment) with set flags.
func (env *cmdEnv) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFallback(env.fs, env.global.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Imports.Paths = append(cfg.Imports.Paths, env.global.importPaths...)
	if env.global.parallel > 0 {
		cfg.Imports.Parallelism = env.global.parallel
	}
	if env.global.logLevel != "" {
		cfg.Logging.Level = env.global.logLevel
	}
	if env.global.logFormat != "" {
		cfg.Logging.Format = env.global.logFormat
	}
	return cfg, nil
}

func (env *cmdEnv) newLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(env.stderr)
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	switch cfg.Logging.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: color.NoColor})
	}
	return logger, nil
}

// newSession builds a parse session from the merged configuration.
func (env *cmdEnv) newSession() (*idlparser.Session, logrus.FieldLogger, error) {
	cfg, err := env.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := env.newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.WithFields(logrus.Fields{
		"paths":    cfg.Imports.Paths,
		"parallel": cfg.Imports.Parallelism,
	}).Debug("Session configured")

	sess := idlparser.NewSession(
		idlparser.WithFs(env.fs),
		idlparser.WithSearchPaths(cfg.Imports.Paths...),
		idlparser.WithParallelImports(cfg.Imports.Parallelism),
		idlparser.WithLogger(logger),
	)
	return sess, logger, nil
}
