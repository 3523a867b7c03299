package form_types

import (
	"context"
	_ "embed"
	"encoding/json"

	"gorm.io/gorm"

	"ghg_inventory_backend/internals/features/forms/schemas/model"
	"ghg_inventory_backend/internals/features/forms/schemas/service"
	"ghg_inventory_backend/internals/helpers/logger"
)

//go:embed data_form_types.json
var defaultData []byte

type FormTypeSeed struct {
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	SectorKey   string           `json:"sector_key"`
	Description *string          `json:"description"`
	Year        int              `json:"year"`
	Fields      []model.FieldDef `json:"fields"`
	Mapping     json.RawMessage  `json:"mapping"`
}

// SeedFormTypesFromJSON creates each form type with an active schema for its
// year. Keys that already exist are skipped. Nil data uses the built-in set.
func SeedFormTypesFromJSON(ctx context.Context, db *gorm.DB, data []byte) (int, error) {
	if data == nil {
		data = defaultData
	}
	var seeds []FormTypeSeed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return 0, err
	}

	svc := service.NewSchemaService(db, nil)
	created := 0
	for _, s := range seeds {
		var n int64
		if err := db.WithContext(ctx).Model(&model.FormTypeModel{}).
			Where("form_type_key = ?", s.Key).
			Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			logger.Sugar.Infow("[seed] form type exists, skipped", "key", s.Key)
			continue
		}

		ft, err := svc.CreateFormType(ctx, &model.FormTypeModel{
			FormTypeKey:         s.Key,
			FormTypeName:        s.Name,
			FormTypeSectorKey:   s.SectorKey,
			FormTypeDescription: s.Description,
			FormTypeIsActive:    true,
		})
		if err != nil {
			return created, err
		}
		if _, err := svc.CreateSchemaVersion(ctx, service.CreateSchemaVersionInput{
			FormTypeID: ft.FormTypeID,
			Year:       s.Year,
			Fields:     s.Fields,
			Status:     model.SchemaStatusActive,
		}); err != nil {
			return created, err
		}
		if len(s.Mapping) > 0 {
			if _, err := svc.SaveFieldMapping(ctx, ft.FormTypeID, s.Year, s.Mapping); err != nil {
				return created, err
			}
		}
		created++
	}
	logger.Sugar.Infow("[seed] form types seeded", "created", created, "total", len(seeds))
	return created, nil
}
