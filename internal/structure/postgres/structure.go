package postgres

import (
	"context"
	"errors"
	"time"

	structureDatamodel "github.com/frahmantamala/payroll-management/internal/core/datamodel/structure"
	"github.com/frahmantamala/payroll-management/internal/structure"
	"gorm.io/gorm"
)

type StructureRepository struct {
	db *gorm.DB
}

func NewStructureRepository(db *gorm.DB) structure.RepositoryAPI {
	return &StructureRepository{db: db}
}

// GetEffectiveByEmployee returns the newest structure that took effect before the given time.
func (r *StructureRepository) GetEffectiveByEmployee(ctx context.Context, orgID, employeeID string, before time.Time) (*structureDatamodel.SalaryStructure, error) {
	var s structureDatamodel.SalaryStructure
	err := r.db.WithContext(ctx).
		Preload("Components", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("org_id = ? AND employee_id = ? AND effective_from < ?", orgID, employeeID, before).
		Order("effective_from DESC").
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *StructureRepository) Create(ctx context.Context, s *structureDatamodel.SalaryStructure) error {
	return r.db.WithContext(ctx).Create(s).Error
}
