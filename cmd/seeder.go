package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/payroll-management/internal"
	"github.com/frahmantamala/payroll-management/internal/attendance"
	"github.com/frahmantamala/payroll-management/internal/core/period"
	"github.com/frahmantamala/payroll-management/internal/structure"
	"github.com/frahmantamala/payroll-management/internal/template"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var seedPeriod string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed templates, employees, salary structures and attendance for development and testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		ctx := context.Background()
		defer deps.Close(ctx)

		p := period.Period{Month: int(time.Now().Month()), Year: time.Now().Year()}
		if seedPeriod != "" {
			if p, err = period.Parse(seedPeriod); err != nil {
				log.Fatalf("invalid --period: %v", err)
			}
		}

		if clearData {
			clearSeedData(deps)
		}

		org := internal.OrgContext{OrgID: deps.Config.Payroll.DefaultOrgID}
		ids := seedTemplates(ctx, deps, org)
		seedEmployees(ctx, deps, org, p, ids)

		fmt.Println("Seeding completed for organization", org.OrgID, "period", p)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPeriod, "period", "", "Attendance period to seed as YYYY-MM (defaults to the current month)")
}

func clearSeedData(deps *Dependencies) {
	tables := []string{
		"calculated_salaries",
		"salary_structure_components",
		"salary_structures",
		"attendance_summaries",
		"employees",
		"payroll_templates",
	}
	for _, table := range tables {
		if err := deps.Gorm.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing payroll data")
}

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// seedTemplates creates the sample template set and returns template ids by code.
func seedTemplates(ctx context.Context, deps *Dependencies, org internal.OrgContext) map[string]int64 {
	registry, err := deps.Templates.GetTemplateRegistry(ctx, org)
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}
	ids := make(map[string]int64)
	for _, t := range registry.Active() {
		ids[t.Code] = t.ID
	}

	conveyance, err := template.NewFormula("basic * 0.05 * attendance_ratio")
	if err != nil {
		log.Fatalf("invalid sample formula: %v", err)
	}
	employerPF := pct(12)

	samples := []template.Params{
		{Code: "BASIC", Name: "Basic Salary", Category: template.CategoryEarning,
			Method:            template.PercentageConfig{CalculateOn: template.BaseBasicSalary, EmployeePercentage: pct(100)},
			IsAttendanceBased: true},
		{Code: "HRA", Name: "House Rent Allowance", Category: template.CategoryEarning,
			Method:            template.PercentageConfig{CalculateOn: template.BaseBasicSalary, EmployeePercentage: pct(40)},
			IsAttendanceBased: true},
		{Code: "CONV", Name: "Conveyance", Category: template.CategoryEarning,
			Method: conveyance},
		{Code: "SPECIAL", Name: "Special Allowance", Category: template.CategoryEarning,
			Method: template.FixedAmountConfig{Manual: true}},
		{Code: "PF", Name: "Provident Fund", Category: template.CategoryDeduction,
			Method:               template.PercentageConfig{CalculateOn: template.BaseBasicSalary, EmployeePercentage: pct(12)},
			Ceiling:              template.Clamp{Enabled: true, Amount: pct(1800)},
			EmployerContribution: &template.EmployerContribution{CalculateOn: template.BaseBasicSalary, Percentage: &employerPF}},
		{Code: "PT", Name: "Professional Tax", Category: template.CategoryDeduction,
			Method: template.SlabConfig{CalculateOn: template.BaseGrossSalary, Brackets: []template.Bracket{
				{From: pct(0), To: amount(15000), Amount: amount(0)},
				{From: pct(15000), To: amount(20000), Amount: amount(150)},
				{From: pct(20000), Amount: amount(200)},
			}}},
		{Code: "GRATUITY", Name: "Gratuity", Category: template.CategoryEmployerContribution,
			Method: template.FixedAmountConfig{Amount: pct(1000)}},
	}

	for _, p := range samples {
		if _, ok := ids[p.Code]; ok {
			continue
		}
		p.OrgID = org.OrgID
		p.IsActive = true
		t, err := deps.Templates.CreateTemplate(ctx, p)
		if err != nil {
			log.Fatalf("failed to create template %s: %v", p.Code, err)
		}
		ids[t.Code] = t.ID
		fmt.Println("Seeded template:", t.Code)
	}
	return ids
}

func seedEmployees(ctx context.Context, deps *Dependencies, org internal.OrgContext, p period.Period, ids map[string]int64) {
	existing, err := deps.Employees.ListActiveEmployees(ctx, org)
	if err != nil {
		log.Fatalf("failed to list employees: %v", err)
	}
	known := make(map[string]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	staff := []struct {
		ID      string
		Name    string
		Basic   int64
		Special int64
		Present int
	}{
		{"EMP001", "Ayu Lestari", 20000, 2500, 22},
		{"EMP002", "Budi Santoso", 35000, 5000, 20},
		{"EMP003", "Citra Dewi", 12000, 0, 18},
	}

	for _, s := range staff {
		if !known[s.ID] {
			if err := deps.Employees.Register(ctx, org, s.ID, s.Name); err != nil {
				log.Fatalf("failed to register %s: %v", s.ID, err)
			}

			basic := decimal.NewFromInt(s.Basic)
			gross := basic.Add(basic.Mul(decimal.NewFromFloat(0.4))).Add(decimal.NewFromInt(s.Special))
			ctc := gross.Add(basic.Mul(decimal.NewFromFloat(0.12))).Add(decimal.NewFromInt(1000))

			special := decimal.NewFromInt(s.Special)
			components := []structure.Component{
				{ComponentID: ids["BASIC"], Enabled: true},
				{ComponentID: ids["HRA"], Enabled: true},
				{ComponentID: ids["CONV"], Enabled: true},
				{ComponentID: ids["SPECIAL"], Enabled: s.Special > 0, OverrideValue: &special},
				{ComponentID: ids["PF"], Enabled: true},
				{ComponentID: ids["PT"], Enabled: true},
				{ComponentID: ids["GRATUITY"], Enabled: true},
			}

			st, err := structure.NewStructure(org.OrgID, s.ID, p.FirstDay(), basic, gross, ctc, components)
			if err != nil {
				log.Fatalf("invalid structure for %s: %v", s.ID, err)
			}
			if err := deps.Structures.CreateStructure(ctx, st); err != nil {
				log.Fatalf("failed to create structure for %s: %v", s.ID, err)
			}
			fmt.Println("Seeded employee:", s.ID)
		}

		summary := &attendance.Summary{EmployeeID: s.ID, Period: p, PresentDays: s.Present, TotalDays: 22}
		if err := deps.Attendance.RecordSummary(ctx, summary); err != nil {
			log.Fatalf("failed to record attendance for %s: %v", s.ID, err)
		}
	}
}
