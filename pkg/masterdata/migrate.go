package masterdata

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every master-data table.
func AutoMigrate(db *gorm.DB) error {
	models := []any{
		&Branch{},
		&Uom{}, &UomConversion{},
		&Size{}, &SizeItemType{},
		&Color{}, &Grade{}, &PackingType{}, &City{},
		&ProductGroup{}, &ProductGroupItemType{},
		&ProductSubgroup{}, &ProductSubgroupItemType{},
		&ProductType{}, &PartyGroup{}, &AccountGroup{}, &Department{},
		&Account{}, &AccountBranch{},
		&Party{}, &PartyBranch{},
		&Item{}, &RmPurchaseRate{}, &ItemUsage{},
		&Variant{}, &Sku{},
		&BomHeader{}, &BomRmLine{}, &BomSfgLine{}, &BomLabourLine{},
		&BomVariantRule{}, &BomChangeLog{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto-migrate master data: %w", err)
		}
	}
	return nil
}
