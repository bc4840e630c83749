package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/ftahirops/lapaudit/config"
)

// Version is set at build time via ldflags.
var Version = "0.1.0"

var (
	configPath string
	logLevel   string
	logJSON    bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "lapaudit",
	Short: "Laptop hardware auditor for refurbishment batches",
	Long: `lapaudit scans the machine it runs on, asks the operator for screen,
chassis and charger grades, decides a resale disposition and appends one
row to the batch ledger (audit_master.csv on the boot medium by default).

Run it as root from the live medium: dmidecode and smartctl need it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
	},
	RunE: runScan,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lapaudit/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON lines")
	pf.BoolVar(&noColor, "no-color", false, "plain output without colors (for serial consoles and logs)")

	addScanFlags(rootCmd.Flags())
}

// Run executes the command tree.
func Run() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	return cfg, cfg.Validate()
}

// warnIfNotRoot reminds the operator that DMI and SMART reads need root.
// The audit continues; those fields degrade to unknown.
func warnIfNotRoot(w io.Writer) {
	if os.Geteuid() != 0 {
		fmt.Fprintln(w, "lapaudit: warning: not running as root; service tag, memory type and SMART health may be unknown")
	}
}
