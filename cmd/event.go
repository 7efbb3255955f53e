package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/payroll-management/internal/core/events"
	"github.com/frahmantamala/payroll-management/internal/payroll"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Re-publish domain events so their handlers run again`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish an event for a stored salary",
	Long:  `Publish salary.approved for an APPROVED salary so its slip is generated again`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishEvent(args[0])
	},
}

var eventSalaryID int64

func publishEvent(eventType string) error {
	if eventType != events.EventTypeSalaryApproved {
		return fmt.Errorf("unsupported event type %q, only %s can be re-published", eventType, events.EventTypeSalaryApproved)
	}

	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	if deps.Config.Slip.Mode == "" || deps.Config.Slip.Mode == "disabled" {
		deps.Close(context.Background())
		return fmt.Errorf("slip generation is disabled, nothing handles %s", eventType)
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer deps.Close(ctx)

	salary, err := deps.Payroll.GetSalary(ctx, eventSalaryID)
	if err != nil {
		return err
	}
	if salary.Status != payroll.StatusApproved || salary.ApprovedBy == nil || salary.ApprovedAt == nil {
		return fmt.Errorf("salary %d is %s, only approved salaries can be re-published", salary.ID, salary.Status)
	}

	event := events.NewSalaryApprovedEvent(salary.ID, salary.EmployeeID, salary.Period.String(), *salary.ApprovedBy, *salary.ApprovedAt)
	deps.Logger.Info("re-publishing event", "event_type", eventType, "event_id", event.EventID(), "salary_id", salary.ID)

	start := time.Now()
	if err := deps.Bus.PublishSync(ctx, event); err != nil {
		return err
	}

	deps.Logger.Info("event handled", "event_id", event.EventID(), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func init() {
	publishEventCmd.Flags().Int64Var(&eventSalaryID, "salary-id", 0, "Id of the approved salary")
	_ = publishEventCmd.MarkFlagRequired("salary-id")

	eventCmd.AddCommand(publishEventCmd)

	rootCmd.AddCommand(eventCmd)
}
