package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/me/dagsim/internal/config"
	"github.com/me/dagsim/internal/platform"
	"github.com/me/dagsim/internal/scheduler"
	"github.com/me/dagsim/pkg/model"
)

func newRunCmd() *cobra.Command {
	var (
		platformPath string
		graphPath    string
		outputPath   string
		record       bool
		dbPath       string
	)
	cfg := config.DefaultSim()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate one scheduling run over a task graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := platform.Load(platformPath, graphPath, logger)
			if err != nil {
				return err
			}

			sched, err := scheduler.NewRegistry().New(cfg.Algorithm, logger)
			if err != nil {
				return err
			}

			result, err := scheduler.NewRunner(sched, p, logger).Run(cfg)
			if err != nil {
				return err
			}

			if err := writeResult(result, outputPath); err != nil {
				return err
			}

			if record {
				if err := recordRun(cfg, result, dbPath); err != nil {
					return fmt.Errorf("record run: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformPath, "platform", "p", "", "Platform description file (yaml or json)")
	cmd.Flags().StringVarP(&graphPath, "graph", "g", "", "Task graph file (yaml or json)")
	cmd.Flags().StringVarP(&cfg.Algorithm, "algorithm", "a", cfg.Algorithm, "Scheduling algorithm")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 0, "Seed for randomized algorithms (0 draws fresh entropy)")
	cmd.Flags().StringVar(&cfg.LHStrategy, "lh-strategy", cfg.LHStrategy, "List heuristic priority: min, max, sufferage")
	cmd.Flags().IntVar(&cfg.TrivialIdx, "trivial-idx", cfg.TrivialIdx, "Target host index for the trivial algorithm")
	cmd.Flags().StringVar(&cfg.TrivialName, "trivial-name", cfg.TrivialName, "Target host name for the trivial algorithm (wins over index)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the result dump to a file instead of stdout")
	cmd.Flags().BoolVar(&record, "record", false, "Persist the run in the results database")
	cmd.Flags().StringVar(&dbPath, "db", "", "Results database path (default ~/.dagsim/dagsim.db)")
	cmd.MarkFlagRequired("platform")
	cmd.MarkFlagRequired("graph")

	return cmd
}

// writeResult dumps the run as indented JSON, to stdout by default so
// the dump can be piped into the visualizer.
func writeResult(result *model.RunResult, path string) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	out = append(out, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func recordRun(cfg config.Sim, result *model.RunResult, dbPath string) error {
	st, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	run := &model.Run{
		ID:        "run_" + uuid.New().String(),
		Algorithm: cfg.Algorithm,
		Seed:      cfg.Seed,
		Makespan:  result.Makespan(),
		CreatedAt: time.Now().UTC(),
		Result:    result,
	}
	if cfg.Algorithm == "list_heuristic" {
		run.Strategy = cfg.LHStrategy
	}

	if err := st.CreateRun(context.Background(), run); err != nil {
		return err
	}
	logger.Info("run recorded", "id", run.ID, "makespan", run.Makespan)
	return nil
}
