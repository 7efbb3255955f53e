package slip

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/payroll-management/internal/core/events"
	"github.com/frahmantamala/payroll-management/internal/payroll"
)

type SalaryReader interface {
	GetSalary(ctx context.Context, id int64) (*payroll.CalculatedSalary, error)
}

// Dispatcher generates a slip whenever a salary is approved.
type Dispatcher struct {
	salaries  SalaryReader
	generator Generator
	logger    *slog.Logger
}

func NewDispatcher(salaries SalaryReader, generator Generator, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		salaries:  salaries,
		generator: generator,
		logger:    logger,
	}
}

// HandleSalaryApproved re-reads the record and only acts if it is still APPROVED.
func (d *Dispatcher) HandleSalaryApproved(ctx context.Context, event events.Event) error {
	approved, ok := event.(*events.SalaryApprovedEvent)
	if !ok {
		d.logger.Error("invalid event type for salary approved handler", "event_type", event.EventType())
		return fmt.Errorf("expected SalaryApprovedEvent, got %T", event)
	}

	salary, err := d.salaries.GetSalary(ctx, approved.SalaryID)
	if err != nil {
		return fmt.Errorf("slip for salary %d: %w", approved.SalaryID, err)
	}
	if salary.Status != payroll.StatusApproved {
		d.logger.Warn("skipping slip for salary that is not approved",
			"salary_id", salary.ID,
			"status", salary.Status,
			"event_id", approved.EventID())
		return nil
	}

	ref, err := d.generator.Generate(ctx, FromSalary(salary))
	if err != nil {
		d.logger.Error("slip generation failed", "salary_id", salary.ID, "employee_id", salary.EmployeeID, "error", err)
		return fmt.Errorf("slip for salary %d: %w", salary.ID, err)
	}

	d.logger.Info("slip generated",
		"salary_id", salary.ID,
		"employee_id", salary.EmployeeID,
		"reference", ref,
		"event_id", approved.EventID())
	return nil
}

func (d *Dispatcher) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeSalaryApproved, d.HandleSalaryApproved)

	d.logger.Info("slip event handlers registered",
		"handlers", []string{events.EventTypeSalaryApproved})
}
