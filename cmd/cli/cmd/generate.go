package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/covergen/internal/engine"
	"github.com/covergen/internal/parser"
	"github.com/covergen/internal/repository"
	"github.com/covergen/internal/service"
	"github.com/covergen/internal/storage"
	"github.com/covergen/pkg/model"
)

var (
	// Generate command flags
	partialFile string
	halfway     bool
	silent      bool
	seed        int64
	workers     int
	storeRun    bool
	runUUID     string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [flags] (t | d t | d t δ) <input-file> [output-file]",
	Short: "Generate an array with the requested property",
	Long: `Generate a combinatorial test array for the factor profile in the
input file.

The number of integer arguments selects the property to establish:
  t       build a t-covering array
  d t     build a (d,t)-locating array
  d t δ   build a (d,t,δ)-detecting array

The input file holds the factor profile:
  line 1: C, the number of columns
  line 2: L_1 L_2 ... L_C, the level bound of each column

The finished array is written to the output file as tab-separated rows,
or to stdout when no output file is given.`,
	Args: cobra.RangeArgs(2, 5),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&partialFile, "partial", "", "File with a pre-existing row prefix to extend")
	generateCmd.Flags().BoolVarP(&halfway, "halfway", "H", false, "Suppress per-row progress lines")
	generateCmd.Flags().BoolVarP(&silent, "silent", "s", false, "Only report the final result (overrides -v and -D)")
	generateCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed for reproducible runs (0 seeds from the clock)")
	generateCmd.Flags().IntVar(&workers, "workers", 0, "Worker bound for candidate scoring (0 uses the config value)")
	generateCmd.Flags().BoolVar(&storeRun, "store", false, "Record the run in the history database")
	generateCmd.Flags().StringVar(&runUUID, "uuid", "", "Run UUID (auto-generated if empty)")
}

// splitArgs separates the leading integer parameters from the trailing file
// arguments. Argument count controls the property mode.
func splitArgs(args []string) (params []int, files []string, err error) {
	i := 0
	for ; i < len(args) && i < 3; i++ {
		v, convErr := strconv.Atoi(args[i])
		if convErr != nil {
			break
		}
		params = append(params, v)
	}
	files = args[i:]
	if len(params) == 0 {
		return nil, nil, fmt.Errorf("expected at least one integer parameter before the input file")
	}
	if len(files) < 1 || len(files) > 2 {
		return nil, nil, fmt.Errorf("expected an input file and an optional output file, got %d file arguments", len(files))
	}
	return params, files, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	ints, files, err := splitArgs(args)
	if err != nil {
		return err
	}

	mode, err := model.ModeForParamCount(len(ints))
	if err != nil {
		return err
	}

	params := parser.Parameters{Mode: mode}
	switch len(ints) {
	case 1:
		params.T = ints[0]
	case 2:
		params.D, params.T = ints[0], ints[1]
	case 3:
		params.D, params.T, params.Delta = ints[0], ints[1], ints[2]
	}

	params.Profile, err = parser.ReadProfileFile(files[0])
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}

	var partial [][]int
	if partialFile != "" {
		partial, err = parser.ReadPartialFile(partialFile, params.Profile)
		if err != nil {
			return err
		}
	}

	outputFile := ""
	if len(files) == 2 {
		outputFile = files[1]
	}

	output := engine.OutputNormal
	if halfway {
		output = engine.OutputHalfway
	}
	if silent {
		output = engine.OutputSilent
		verbose = false
		debugMode = false
	}
	if workers > 0 {
		cfg.Engine.MaxWorkers = workers
	}
	if seed == 0 {
		seed = cfg.Engine.Seed
	}

	var repo repository.RunRepository
	var store storage.Storage
	if storeRun {
		if cfg.Database.Enabled {
			repo, err = repository.NewRunRepository(&cfg.Database)
			if err != nil {
				log.Warn("Run history unavailable: %v", err)
			}
		}
		store, err = storage.NewStorage(&cfg.Storage)
		if err != nil {
			log.Warn("Artifact storage unavailable: %v", err)
		}
	}

	svc := service.New(cfg, log, repo, store)
	result, err := svc.Run(cmd.Context(), &service.RunOptions{
		Params:     params,
		Partial:    partial,
		RunUUID:    runUUID,
		Seed:       seed,
		OutputFile: outputFile,
		Output:     output,
		Verbose:    verbose && !silent,
		Debug:      debugMode && !silent,
		StoreRun:   storeRun,
	})
	if err != nil {
		return err
	}

	if !silent {
		switch result.Status {
		case model.RunStatusCompleted:
			if outputFile != "" {
				log.Info("Wrote array with %d rows to %s", len(result.Rows), outputFile)
			}
		default:
			if outputFile != "" {
				log.Info("Wrote the %d rows produced so far to %s", len(result.Rows), outputFile)
			}
		}
	}
	// Degraded outcomes still flushed their rows; only hard failures exit 1.
	return nil
}
