package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/payroll-management/internal"
	templateDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/template"
	"github.com/frahmantamala/payroll-management/internal/template"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) template.RepositoryAPI {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) ListByOrg(ctx context.Context, orgID string) ([]*templateDatamodel.PayrollTemplate, error) {
	var templates []*templateDatamodel.PayrollTemplate
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("id ASC").
		Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*templateDatamodel.PayrollTemplate, error) {
	var tpl templateDatamodel.PayrollTemplate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *TemplateRepository) GetByCode(ctx context.Context, orgID, code string) (*templateDatamodel.PayrollTemplate, error) {
	var tpl templateDatamodel.PayrollTemplate
	err := r.db.WithContext(ctx).Where("org_id = ? AND code = ?", orgID, code).First(&tpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

// Create reports the (org, code) unique index as a DuplicateError.
func (r *TemplateRepository) Create(ctx context.Context, tpl *templateDatamodel.PayrollTemplate) error {
	err := r.db.WithContext(ctx).Create(tpl).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewDuplicateError("template code already exists: "+tpl.Code, internal.ErrCodeDuplicateTemplate)
	}
	return err
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *templateDatamodel.PayrollTemplate) error {
	return r.db.WithContext(ctx).Save(tpl).Error
}

func (r *TemplateRepository) Deactivate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&templateDatamodel.PayrollTemplate{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
