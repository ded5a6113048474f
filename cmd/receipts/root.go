package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipts-collator/constants"
	"github.com/joseph-ayodele/receipts-collator/internal/common"
)

// app carries the flags shared by every subcommand and what PersistentPreRunE
// builds from them.
type app struct {
	configFile string
	logLevel   string
	logFormat  string
	outputDir  string
	storeNames []string
	workers    int
	lookup     bool
	hintsFile  string
	xlsx       bool

	cfg    *common.Config
	logger *slog.Logger
	stdout io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "receipts",
		Short: "Extract and collate warehouse-club receipt line items",
		Long: `receipts turns a directory of Costco and Sam's Club PDF receipts into one
collated CSV per retailer: item, quantity, total cost.

  receipts parse  ./receipts     # PDFs -> <store>_items.csv
  receipts collate --lookup      # <store>_items.csv -> <store>_collated.csv
  receipts run    ./receipts     # parse then collate
  receipts report sales.csv      # POS transactions export -> XLSX report`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "optional YAML config file")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "json or text (overrides LOG_FORMAT)")
	pf.StringVarP(&a.outputDir, "output-dir", "o", "", "directory for intermediate and collated files (overrides OUTPUT_DIR)")

	root.AddCommand(
		newParseCmd(a),
		newCollateCmd(a),
		newRunCmd(a),
		newReportCmd(a),
		newCacheCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and installs the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := common.LoadConfig(a.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.outputDir != "" {
		cfg.Paths.OutputDir = a.outputDir
	}
	if flags.Changed("workers") {
		cfg.Extract.Workers = a.workers
	}
	if flags.Changed("lookup") {
		cfg.Lookup.Enabled = a.lookup
	}
	if a.hintsFile != "" {
		cfg.Lookup.HintsFile = a.hintsFile
	}
	if flags.Changed("xlsx") {
		cfg.Collate.WriteXLSX = a.xlsx
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = common.NewLogger(cmd.ErrOrStderr(), cfg.Log)
	a.stdout = cmd.OutOrStdout()
	slog.SetDefault(a.logger)

	a.logger.Debug("config loaded",
		"config_file", a.configFile,
		"receipts_dir", cfg.Paths.ReceiptsDir,
		"output_dir", cfg.Paths.OutputDir,
		"workers", cfg.Extract.Workers,
		"lookup", cfg.Lookup.Enabled,
	)
	return nil
}

// stores resolves --store values; none selects every store.
func (a *app) stores() ([]constants.Store, error) {
	if len(a.storeNames) == 0 {
		return constants.AllStores(), nil
	}
	var out []constants.Store
	seen := make(map[constants.Store]bool)
	for _, name := range a.storeNames {
		s, err := constants.ParseStore(name)
		if err != nil {
			return nil, common.NewAppError("INVALID_INPUT", err.Error(), common.ErrInvalidInput)
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

func addStoreFlag(cmd *cobra.Command, a *app) {
	names := make([]string, 0, 2)
	for _, s := range constants.AllStores() {
		names = append(names, string(s))
	}
	cmd.Flags().StringSliceVar(&a.storeNames, "store", nil, "limit to these stores ("+strings.Join(names, ", ")+")")
}

func addLookupFlags(cmd *cobra.Command, a *app) {
	cmd.Flags().BoolVar(&a.lookup, "lookup", false, "enrich item codes from the retailer search page (overrides LOOKUP_ENABLED)")
	cmd.Flags().StringVar(&a.hintsFile, "hints-file", "", "JSON file of item code hints (overrides LOOKUP_HINTS_FILE)")
	cmd.Flags().BoolVar(&a.xlsx, "xlsx", false, "also write <store>_collated.xlsx (overrides COLLATE_WRITE_XLSX)")
}

// exitCode maps errors to process exit codes: 2 for bad input or config,
// 3 when a required input file is missing, 1 otherwise.
func exitCode(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrNotFound):
		return 2
	case errors.Is(err, common.ErrMissingInput):
		return 3
	default:
		return 1
	}
}

// receiptsDir is the optional positional directory, else the configured one.
func (a *app) receiptsDir(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return a.cfg.Paths.ReceiptsDir
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
