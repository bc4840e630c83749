package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/ftahirops/lapaudit/collector"
	"github.com/ftahirops/lapaudit/engine"
	"github.com/ftahirops/lapaudit/model"
)

var probeRaw bool

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().BoolVar(&probeRaw, "raw", false, "include the raw probe output")
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Run the hardware probes and print the profile as JSON",
	Long: `Runs every probe and the normalizer and prints what a scan would record,
with the recommendation the default grades would get. Nothing is written
and nobody is asked anything.`,
	Args: cobra.NoArgs,
	RunE: runProbe,
}

type probeReport struct {
	Profile       model.HardwareProfile      `json:"profile"`
	CPUGeneration int                        `json:"cpu_generation"`
	Decision      engine.Decision            `json:"decision"`
	Unavailable   map[model.Subsystem]string `json:"unavailable,omitempty"`
	Raw           *model.RawFacts            `json:"raw,omitempty"`
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := buildLogger(cfg.Log.Level, cfg.Log.JSON, cmd.ErrOrStderr())
	warnIfNotRoot(cmd.ErrOrStderr())

	env := collector.NewEnv(cfg.Probes.Root)
	raw, _ := collector.NewRegistry(env, cfg.Probes.Timeout, logger).CollectAll(cmd.Context())
	profile := engine.Normalize(raw)

	rep := probeReport{
		Profile:       profile,
		CPUGeneration: engine.CPUGeneration(profile.CPU),
		Decision:      engine.Evaluate(profile),
		Unavailable:   raw.Unavailable,
	}
	if probeRaw {
		rep.Raw = raw
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
