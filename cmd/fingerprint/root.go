package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"lukechampine.com/blake3"

	"github.com/jackzampolin/fingerprint/internal/cliout"
	"github.com/jackzampolin/fingerprint/internal/config"
	"github.com/jackzampolin/fingerprint/internal/fpdef"
	"github.com/jackzampolin/fingerprint/internal/homedir"
	"github.com/jackzampolin/fingerprint/internal/progress"
	"github.com/jackzampolin/fingerprint/internal/recognize"
	"github.com/jackzampolin/fingerprint/internal/refusal"
	"github.com/jackzampolin/fingerprint/internal/registry"
	"github.com/jackzampolin/fingerprint/internal/stream"
	"github.com/jackzampolin/fingerprint/internal/version"
	"github.com/jackzampolin/fingerprint/internal/witness"
)

var (
	cfgFile      string
	homeFlag     string
	fpIDs        []string
	jobs         int
	noWitness    bool
	showProgress bool
	diagnose     bool
	listFlag     bool
	describeID   string
	schemaFlag   bool

	exitCode = 0
)

const toolName = "fingerprint"

var rootCmd = &cobra.Command{
	Use:   "fingerprint [input.jsonl]",
	Short: "Recognize document fingerprints against a streaming JSONL pipeline",
	Long: `fingerprint matches incoming document-pipeline records against a loaded
set of fingerprint definitions (spreadsheet, PDF, and markdown templates),
emitting an enriched JSONL record per input record with the winning
document-level match, any evaluated content-level children, and extracted
anchor locations for matched fingerprints.`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runRecognize,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.fingerprint/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "fingerprint home directory (default: ~/.fingerprint)")

	rootCmd.Flags().StringArrayVar(&fpIDs, "fp", nil, "fingerprint id to load for this run (repeatable)")
	rootCmd.Flags().IntVar(&jobs, "jobs", 0, "worker pool degree (default: config default_jobs, or available CPUs when that is 0)")
	rootCmd.Flags().BoolVar(&noWitness, "no-witness", false, "skip appending a witness ledger entry")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "emit JSONL progress/warning messages on stderr")
	rootCmd.Flags().BoolVar(&diagnose, "diagnose", false, "attach diagnostic context to failing assertions")
	rootCmd.Flags().BoolVar(&listFlag, "list", false, "list loaded fingerprint definitions and exit")
	rootCmd.Flags().StringVar(&describeID, "describe", "", "print one fingerprint definition's full detail and exit")
	rootCmd.Flags().BoolVar(&schemaFlag, "schema", false, "print the fingerprint-definition JSON Schema and exit")

	rootCmd.AddCommand(versionCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	home, err := homedir.New(homeFlag)
	if err != nil {
		return err
	}

	if schemaFlag {
		fmt.Fprintln(cmd.OutOrStdout(), fpdef.SchemaJSON)
		return nil
	}

	reg, err := registry.Load(cfg, home.ModulesDir())
	if err != nil {
		return renderOutcome(cmd, nil, err, false)
	}

	if listFlag {
		return cliout.WriteIndented(cmd.OutOrStdout(), reg.List())
	}
	if describeID != "" {
		def, err := reg.Resolve(describeID)
		if err != nil {
			return renderOutcome(cmd, nil, err, false)
		}
		return cliout.WriteIndented(cmd.OutOrStdout(), def)
	}

	if len(fpIDs) == 0 {
		return renderOutcome(cmd, nil, refusal.New(refusal.CodeBadInput,
			"at least one --fp is required unless --list/--describe/--schema is given", nil), false)
	}

	driver, err := recognize.NewDriver(reg, fpIDs, diagnose, toolName, version.GitRelease, version.OutputSchema)
	if err != nil {
		return renderOutcome(cmd, nil, err, false)
	}

	input, inputPath, err := openInput(args)
	if err != nil {
		return renderOutcome(cmd, nil, err, false)
	}
	if closer, ok := input.(io.Closer); ok {
		defer closer.Close()
	}

	var reporter *progress.Reporter
	if showProgress {
		reporter = progress.New(cmd.ErrOrStderr(), toolName)
	}

	hasher := blake3.New(32, nil)
	tee := io.MultiWriter(cmd.OutOrStdout(), hasher)
	out := cliout.NewLineWriter(tee)

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	workerJobs := jobs
	if !cmd.Flags().Changed("jobs") {
		workerJobs = cfg.DefaultJobs
	}

	streamCfg := stream.Config{
		Jobs:         workerJobs,
		OutputSchema: version.OutputSchema,
		ToolName:     toolName,
		ToolVersion:  version.GitRelease,
	}
	outcome, runErr := stream.Run(ctx, input, out, driver.Process, streamCfg, reporter, logger)
	_ = out.Flush()

	outputHash := "blake3:" + fmt.Sprintf("%x", hasher.Sum(nil))
	return finish(cmd, outcome, runErr, inputPath, outputHash, home, cfg)
}

func openInput(args []string) (io.Reader, string, error) {
	if len(args) == 0 {
		return os.Stdin, "-", nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, "", refusal.New(refusal.CodeBadInput, fmt.Sprintf("cannot open input file: %v", err), map[string]any{"path": args[0]})
	}
	return f, args[0], nil
}

func finish(cmd *cobra.Command, outcome stream.Outcome, runErr error, inputPath, outputHash string, home *homedir.Dir, cfg *config.Config) error {
	exitCodeVal := 0
	outcomeStr := string(outcome)

	if runErr != nil {
		var refErr *refusal.Error
		if asRefusal(runErr, &refErr) {
			return renderOutcome(cmd, nil, refErr, true)
		}
		exitCodeVal = 1
		outcomeStr = "PARTIAL"
	} else if outcome == stream.Partial {
		exitCodeVal = 1
	}

	if !noWitness {
		_ = witness.Append(home.WitnessPath(), witness.Input{
			Tool:       toolName,
			Version:    version.GitRelease,
			Inputs:     []witness.InputRef{{Path: inputPath}},
			Outcome:    outcomeStr,
			ExitCode:   exitCodeVal,
			OutputHash: outputHash,
			Timestamp:  time.Now(),
		})
	}

	exitCode = exitCodeVal
	return nil
}

func renderOutcome(cmd *cobra.Command, _ any, err error, emitted bool) error {
	var refErr *refusal.Error
	if !asRefusal(err, &refErr) {
		exitCode = 1
		return err
	}

	envelope := refErr.Envelope(version.OutputSchema)
	data, marshalErr := json.Marshal(envelope)
	if marshalErr != nil {
		exitCode = 1
		return marshalErr
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	home, homeErr := homedir.New(homeFlag)
	if homeErr == nil {
		_ = witness.Append(home.WitnessPath(), witness.Input{
			Tool:       toolName,
			Version:    version.GitRelease,
			Outcome:    "REFUSAL",
			ExitCode:   refusal.ExitCode,
			OutputHash: witness.HashStdout(data),
			Timestamp:  time.Now(),
		})
	}

	exitCode = refusal.ExitCode
	return nil
}

func asRefusal(err error, target **refusal.Error) bool {
	if e, ok := err.(*refusal.Error); ok {
		*target = e
		return true
	}
	return false
}
