package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nutriswap/backend/config"
	"github.com/nutriswap/backend/internal/logger"
)

// Version is set at build time with -ldflags "-X .../internal/cmd.Version=..."
var Version = "dev"

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "nutriswap",
		Short: "Food product search and healthier-alternative suggestions",
		Long: `NutriSwap searches the Open Food Facts catalog, shows product details
with translated categories, and suggests healthier alternatives from the
same category ranked by Nutri-Score, NOVA group and popularity.

Run "nutriswap serve" for the HTTP API, or use the search, product,
suggest and latest commands to query the catalog from the terminal.

Configuration is read from config.yaml (., ./config, /etc/nutriswap/) or
the file given by --config, and NUTRISWAP_* environment variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return nil, nil, err
		}
		log, err := logger.NewLogger(cfg.Server.Environment, cfg.Logging.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("init logger: %w", err)
		}
		return cfg, log, nil
	}

	serve := newServeCmd(load)
	root.RunE = serve.RunE

	root.AddCommand(
		serve,
		newSearchCmd(load),
		newProductCmd(load),
		newSuggestCmd(load),
		newLatestCmd(load),
		newVersionCmd(),
	)
	return root
}

type loadFunc func() (*config.Config, *zap.Logger, error)

// Execute runs the CLI. It is called by main.main().
func Execute() error {
	return newRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
