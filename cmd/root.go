package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sovieth88-oss/presalectl/internal/config"
	"github.com/sovieth88-oss/presalectl/internal/logging"
	"github.com/sovieth88-oss/presalectl/internal/ui"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/sovieth88-oss/presalectl/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	verbose    bool
	chainFlag  string
	walletFlag string
	assumeYes  bool
	envFiles   []string
)

var (
	log        = zap.NewNop()
	logCleanup = func() {}
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "presalectl",
	Short: "Token presale client",
	Long: `presalectl — read and operate a token presale contract from the terminal.

  Follow fundraising progress, buy tokens, check whitelist status and,
  as the contract owner, manage the whitelist, pause the sale, withdraw
  funds and update the sale parameters.

The network comes from --chain, then PRESALECTL_CHAIN, then the config file
(default: bsc-testnet). The signing wallet comes from --wallet, then
PRESALECTL_WALLET, then the default wallet.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := config.LoadEnv(envFiles...); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		log, logCleanup, err = logging.New(verbose)
		if err != nil {
			return err
		}
		log.Debug("config loaded",
			zap.String("dir", cfg.Dir()),
			zap.Int64("chain", cfg.DefaultChain),
			zap.String("wallet", cfg.DefaultWallet),
		)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(ui.Banner())
		cmd.Help() //nolint:errcheck
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCleanup()
	},
}

// Execute runs the root command. Ctrl+C cancels the command context; a
// transaction that was already broadcast is not withdrawn.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

func init() {
	// PRESALECTL_CONFIG_DIR overrides the --config default.
	if envDir := os.Getenv(config.EnvPrefix + "_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.presalectl)")
	pf.StringVar(&chainFlag, "chain", "", "chain name or ID (e.g. bsc-testnet, 97)")
	pf.StringVarP(&walletFlag, "wallet", "w", "", "wallet to use")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose logging on stderr")
	pf.BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")
	pf.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default: .env)")

	rootCmd.AddCommand(
		statsCmd,
		userCmd,
		buyCmd,
		whitelistCmd,
		withdrawCmd,
		pauseCmd,
		unpauseCmd,
		paramsCmd,
		watchCmd,
		eventsCmd,
		walletCmd,
		networkCmd,
		configCmd,
		convertCmd,
	)
}
