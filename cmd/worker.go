package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/spf13/cobra"
)

var (
	batchPeriod  string
	batchOrg     string
	batchWorkers int
	batchSave    bool
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs",
	Long:  `Run payroll jobs from the command line`,
}

var batchWorkerCmd = &cobra.Command{
	Use:   "batch",
	Short: "Calculate salaries of every active employee for a period",
	Long:  `Run the batch calculator for a period, optionally saving the successful results as PENDING records`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch()
	},
}

func runBatch() error {
	p, err := period.Parse(batchPeriod)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if batchWorkers > 0 {
		cfg.Payroll.Workers = batchWorkers
	}

	deps, err := buildDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	org := internal.OrgContext{OrgID: getStringFlag(batchOrg, deps.Config.Payroll.DefaultOrgID)}
	logger := deps.Logger.With("org_id", org.OrgID, "period", p.String())

	// Ctrl+C cancels the batch; employees not yet started are reported as unprocessed
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer deps.Close(context.Background())

	logger.Info("starting payroll batch", "workers", deps.Config.Payroll.Workers, "save", batchSave)

	result, err := deps.Payroll.BulkCalculate(ctx, org, p)
	if result == nil {
		return err
	}
	if err != nil {
		logger.Warn("batch interrupted", "error", err, "unprocessed", result.Summary.Unprocessed)
	}
	printJSON(result.Summary)
	for _, itemErr := range result.Errors {
		logger.Warn("employee failed", "employee_id", itemErr.ID, "kind", itemErr.Kind, "message", itemErr.Message)
	}

	if !batchSave || len(result.Results) == 0 || err != nil {
		return err
	}

	summary, err := deps.Payroll.BulkSave(context.Background(), org, p, result.Results)
	if err != nil {
		return err
	}
	printJSON(summary)
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	batchWorkerCmd.Flags().StringVar(&batchPeriod, "period", "", "Payroll period as YYYY-MM")
	batchWorkerCmd.Flags().StringVar(&batchOrg, "org", "", "Organization id (overrides config)")
	batchWorkerCmd.Flags().IntVar(&batchWorkers, "workers", 0, "Maximum concurrent employee calculations (overrides config)")
	batchWorkerCmd.Flags().BoolVar(&batchSave, "save", false, "Save successful results as PENDING salaries")
	_ = batchWorkerCmd.MarkFlagRequired("period")

	workerCmd.AddCommand(batchWorkerCmd)
	rootCmd.AddCommand(workerCmd)
}
