package template

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/payroll-management/internal"
	templateDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/template"
)

type RepositoryAPI interface {
	ListByOrg(ctx context.Context, orgID string) ([]*templateDatamodel.PayrollTemplate, error)
	GetByID(ctx context.Context, id int64) (*templateDatamodel.PayrollTemplate, error)
	GetByCode(ctx context.Context, orgID, code string) (*templateDatamodel.PayrollTemplate, error)
	Create(ctx context.Context, tpl *templateDatamodel.PayrollTemplate) error
	Update(ctx context.Context, tpl *templateDatamodel.PayrollTemplate) error
	Deactivate(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetTemplateRegistry snapshots every template of org. Unusable templates are
// kept so evaluation can report their ConfigError against the employee.
func (s *Service) GetTemplateRegistry(ctx context.Context, org internal.OrgContext) (*Registry, error) {
	rows, err := s.repo.ListByOrg(ctx, org.OrgID)
	if err != nil {
		s.logger.Error("failed to load templates", "org_id", org.OrgID, "error", err)
		return nil, internal.NewInternalError("failed to load template registry", err)
	}

	templates := make([]*Template, 0, len(rows))
	for _, row := range rows {
		t := FromDataModel(row)
		if err := t.Usable(); err != nil {
			s.logger.Warn("template is not usable", "org_id", org.OrgID, "code", t.Code, "error", err)
		}
		templates = append(templates, t)
	}

	s.logger.Debug("template registry loaded", "org_id", org.OrgID, "count", len(templates))
	return NewRegistry(org, templates), nil
}

func (s *Service) GetActiveTemplates(ctx context.Context, org internal.OrgContext) ([]TemplateResponse, error) {
	registry, err := s.GetTemplateRegistry(ctx, org)
	if err != nil {
		return nil, err
	}

	responses := make([]TemplateResponse, 0, registry.Len())
	for _, t := range registry.Active() {
		responses = append(responses, t.ToResponse())
	}

	s.logger.Info("retrieved templates", "org_id", org.OrgID, "count", len(responses))
	return responses, nil
}

// CreateTemplate validates p and stores it. Codes are unique per organization.
func (s *Service) CreateTemplate(ctx context.Context, p Params) (*Template, error) {
	t, err := NewTemplate(p)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCode(ctx, p.OrgID, p.Code)
	if err != nil {
		return nil, internal.NewInternalError("failed to check template code", err)
	}
	if existing != nil {
		return nil, duplicateCode(p.Code)
	}

	row := ToDataModel(t)
	if err := s.repo.Create(ctx, row); err != nil {
		if internal.IsKind(err, internal.ErrorTypeDuplicate) {
			return nil, err
		}
		s.logger.Error("failed to create template", "code", p.Code, "error", err)
		return nil, internal.NewInternalError("failed to create template", err)
	}

	s.logger.Info("template created", "id", row.ID, "code", row.Code, "method", row.CalculationMethod)
	return FromDataModel(row), nil
}

func (s *Service) DeactivateTemplate(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load template", err)
	}
	if row == nil {
		return internal.ErrTemplateNotFound
	}
	return s.repo.Deactivate(ctx, id)
}

func duplicateCode(code string) error {
	return internal.NewDuplicateError("template code already exists: "+code, internal.ErrCodeDuplicateTemplate)
}
