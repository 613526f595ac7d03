package main

import (
	"fmt"
	"os"

	"github.com/odvcencio/swhid/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "swhid",
		Short:         "Compute and verify SoftWare Heritage persistent IDentifiers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: .swhid.toml or .swhid.yaml in the working directory)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warning, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newIdentifyCmd(g))
	root.AddCommand(newVerifyCmd(g))
	root.AddCommand(newParseCmd())
	root.AddCommand(newLsTreeCmd(g))
	return root
}

// load reads the config file and applies the persistent flag overrides.
// The returned logger writes to the command's error stream.
func (g *globalFlags) load(cmd *cobra.Command) (*config.Config, *logrus.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.Load(g.configPath)
	} else {
		cfg, err = config.LoadDir(".")
	}
	if err != nil {
		return nil, nil, err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, err
	}
	logger.SetOutput(cmd.ErrOrStderr())
	return cfg, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "swhid %s\n", version)
		},
	}
}
