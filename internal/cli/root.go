package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"portfolio-hedger/internal/config"
	"portfolio-hedger/internal/logging"
	"portfolio-hedger/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.PositionStore
}

// OpenStore lazily opens the SQLite position store. Only commands that
// touch positions pay for it.
func (a *App) OpenStore() (store.PositionStore, error) {
	if a.Store != nil {
		return a.Store, nil
	}
	dbPath := filepath.Join(config.DefaultConfigDir(), "hedger.db")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}
	a.Store = s
	a.Logger.Debug().Str("path", dbPath).Msg("Position store opened")
	return s, nil
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "hedger",
		Short: "Portfolio hedging analyzer - protective puts vs leveraged inverse funds",
		Long: `Portfolio Hedger is a deterministic hedging calculator.

It prices protective index puts, sizes and tracks hedge positions, and
numerically compares puts against a leveraged inverse fund under
hypothetical market-drop scenarios. Identical inputs always produce
identical outputs; market data is supplied up front via snapshot files.

This tool performs no trade execution and makes no market forecasts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/portfolio-hedger)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newPriceCmd(app))
	rootCmd.AddCommand(newSizeCmd(app))
	rootCmd.AddCommand(newCompareCmd(app))
	rootCmd.AddCommand(newPositionsCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
				return
			}
			output.Printf("Portfolio Hedger v%s\n", Version)
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate hedging preferences.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
				return
			}
			output.Println(config.DefaultConfigDir())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	h := cfg.Hedging

	output.Bold("Hedging Configuration")
	output.Printf("  Enabled:          %v\n", h.Enabled)
	output.Printf("  Instrument:       %s\n", h.Instrument)
	output.Printf("  Monthly Budget:   $%.2f\n", h.MonthlyBudget)
	output.Printf("  Target DTE:       %d days\n", h.TargetDTE)
	output.Printf("  OTM Band:         %.1f%% - %.1f%%\n", h.OTMMinPercent, h.OTMMaxPercent)
	output.Printf("  Underlyings:      %v\n", h.Underlyings)
	output.Printf("  Contracts/$50k:   %.2f\n", h.ContractsPer50K)
	output.Printf("  Near-Expiry DTE:  %d days\n", h.NearExpiryDTE)
	output.Printf("  Inverse Fund:     %s (%.0fx)\n", h.InverseTicker, h.Leverage)
	output.Println()

	output.Bold("Market Parameters")
	output.Printf("  Risk-Free Rate:   %.2f%%\n", cfg.Market.RiskFreeRate*100)
	output.Printf("  Default IV:       %.1f%%\n", cfg.Market.DefaultIV*100)
	output.Printf("  Vol Index Base:   %.1f\n", cfg.Market.VolIndexBase)
	output.Printf("  Scenario Days:    %d\n", cfg.Market.ScenarioDays)

	output.Disclaimer()
}
