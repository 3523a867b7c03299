package seeds

import (
	"context"

	"gorm.io/gorm"

	formTypes "ghg_inventory_backend/internals/seeds/form_types"
)

func RunAllSeeds(ctx context.Context, db *gorm.DB) error {
	//* Forms
	if _, err := formTypes.SeedFormTypesFromJSON(ctx, db, nil); err != nil {
		return err
	}
	return nil
}
