package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/schemas/model"
	helper "ghg_inventory_backend/internals/helpers"
)

// ResolvePolicy decides which schema version represents a (form type, year).
type ResolvePolicy int

const (
	// PreferActive returns the active version, or the newest one when none is active.
	// Used for data entry.
	PreferActive ResolvePolicy = iota
	// PreferNewest returns the most recently created version regardless of status.
	// Used by the analytics dashboard.
	PreferNewest
)

func (p ResolvePolicy) String() string {
	if p == PreferNewest {
		return "prefer_newest"
	}
	return "prefer_active"
}

// ResolveEffectiveSchema is the single place that picks "the" schema of a
// (form type, year). db may be a transaction.
func ResolveEffectiveSchema(ctx context.Context, db *gorm.DB, formTypeID int64, year int, policy ResolvePolicy) (*model.SchemaVersionModel, error) {
	base := func() *gorm.DB {
		return db.WithContext(ctx).
			Where("form_schema_version_form_type_id = ? AND form_schema_version_year = ?", formTypeID, year)
	}

	var sv model.SchemaVersionModel
	if policy == PreferActive {
		err := base().
			Where("form_schema_version_status = ?", model.SchemaStatusActive).
			Order("form_schema_version_id DESC").
			First(&sv).Error
		if err == nil {
			return &sv, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := base().Order("form_schema_version_id DESC").First(&sv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NotFound("no schema version for form type %d year %d", formTypeID, year)
	}
	if err != nil {
		return nil, err
	}
	return &sv, nil
}
