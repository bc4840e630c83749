package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/ftahirops/lapaudit/collector"
	"github.com/ftahirops/lapaudit/config"
	"github.com/ftahirops/lapaudit/engine"
	"github.com/ftahirops/lapaudit/ledger"
	"github.com/ftahirops/lapaudit/model"
	"github.com/ftahirops/lapaudit/ui"
)

type scanOptions struct {
	ledgerDir     string
	ledgerFile    string
	noInteractive bool
	noDisplayTest bool
	noRemount     bool
	jsonOut       bool
	screen        string
	chassis       string
	charger       string
}

var scanOpts scanOptions

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd.Flags())
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Audit this machine and append the result to the ledger",
	Long: `Runs every hardware probe, asks for grades, decides the disposition and
appends one row to the ledger. This is also what bare "lapaudit" does.

Without a terminal, or with --no-interactive, grades come from the flags
and the config defaults. Grades given as flags are not asked on screen;
passing all of --screen, --chassis and --charger skips the grading screens.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func addScanFlags(fs *pflag.FlagSet) {
	fs.StringVar(&scanOpts.ledgerDir, "ledger-dir", "", "ledger directory (default: boot medium, else working directory)")
	fs.StringVar(&scanOpts.ledgerFile, "ledger-file", "", "ledger file name (default "+ledger.DefaultFile+")")
	fs.BoolVar(&scanOpts.noInteractive, "no-interactive", false, "do not prompt; use defaults and flag values")
	fs.BoolVar(&scanOpts.noDisplayTest, "no-display-test", false, "skip the full-screen color test")
	fs.BoolVar(&scanOpts.noRemount, "no-remount", false, "do not remount a read-only boot medium")
	fs.BoolVar(&scanOpts.jsonOut, "json", false, "print the result as JSON instead of the summary box")
	fs.StringVar(&scanOpts.screen, "screen", "", "screen grade A, B or C")
	fs.StringVar(&scanOpts.chassis, "chassis", "", "chassis grade A, B or C")
	fs.StringVar(&scanOpts.charger, "charger", "", "charger included: y or n")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyScanFlags(cmd.Flags(), &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	logger := buildLogger(cfg.Log.Level, cfg.Log.JSON, stderr)
	warnIfNotRoot(stderr)

	prompter, err := choosePrompter(cfg)
	if err != nil {
		return err
	}

	procRoot := filepath.Join(cfg.Probes.Root, "proc")
	dir := ledger.ResolveDir(cfg.Ledger.Dir, procRoot)
	if cfg.Ledger.Remount {
		if err := ledger.PrepareDir(dir, procRoot, logger); err != nil {
			logger.Warn("ledger directory may be read-only", "dir", dir, "error", err)
		}
	}
	path := filepath.Join(dir, cfg.Ledger.File)

	env := collector.NewEnv(cfg.Probes.Root)
	sess := &engine.Session{
		Collector: collector.NewRegistry(env, cfg.Probes.Timeout, logger),
		Prompter:  prompter,
		Store:     &ledger.File{Path: path, SyncMedia: true},
		Logger:    logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := sess.Run(ctx)
	if err != nil {
		if errors.Is(err, ui.ErrAborted) {
			fmt.Fprintln(stderr, "lapaudit: grading aborted; nothing written")
		}
		return err
	}

	out := cmd.OutOrStdout()
	if scanOpts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(out, ui.RenderSummary(res, path))
	return nil
}

// applyScanFlags overrides config values with the flags the operator set.
func applyScanFlags(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("ledger-dir") {
		cfg.Ledger.Dir = scanOpts.ledgerDir
	}
	if fs.Changed("ledger-file") {
		cfg.Ledger.File = scanOpts.ledgerFile
	}
	if scanOpts.noInteractive {
		cfg.Grading.Interactive = false
	}
	if scanOpts.noDisplayTest {
		cfg.Grading.DisplayTest = false
	}
	if scanOpts.noRemount {
		cfg.Ledger.Remount = false
	}
	if scanOpts.screen != "" {
		cfg.Grading.DefaultScreen = scanOpts.screen
	}
	if scanOpts.chassis != "" {
		cfg.Grading.DefaultChassis = scanOpts.chassis
	}
}

// choosePrompter returns the grading screens, pre-answered from the flags,
// when a terminal is attached and interaction is wanted, and fixed answers
// otherwise.
func choosePrompter(cfg config.Config) (engine.Prompter, error) {
	charger, err := parseCharger(scanOpts.charger)
	if err != nil {
		return nil, err
	}
	allGiven := scanOpts.screen != "" && scanOpts.chassis != "" && charger != nil
	if cfg.Grading.Interactive && !allGiven && term.IsTerminal(int(os.Stdin.Fd())) {
		preset := ui.StaticPrompter{Charger: charger}
		preset.Screen, _ = model.ParseGrade(scanOpts.screen)
		preset.Chassis, _ = model.ParseGrade(scanOpts.chassis)
		return &ui.TUIPrompter{DisplayTest: cfg.Grading.DisplayTest, Preset: preset}, nil
	}

	screen, _ := model.ParseGrade(cfg.Grading.DefaultScreen)
	chassis, _ := model.ParseGrade(cfg.Grading.DefaultChassis)
	return ui.StaticPrompter{Screen: screen, Chassis: chassis, Charger: charger}, nil
}

func parseCharger(s string) (*bool, error) {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "y", "yes", "true", "1":
		v = true
	case "n", "no", "false", "0":
		v = false
	default:
		return nil, fmt.Errorf("--charger must be y or n, got %q", s)
	}
	return &v, nil
}
