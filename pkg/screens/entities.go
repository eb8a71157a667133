package screens

import (
	"github.com/strideworks/erp-core/pkg/approval"
)

// EntityConfig wires one master-data screen into the uniform CRUD adapter.
type EntityConfig struct {
	Slug       string // URL segment and list path
	ScopeKey   string // permission scope
	EntityType approval.EntityType
	Table      string
	NameField  string // field used in summaries, usually "name"
	Fields     []Field
}

// entityConfigs is every governed master-data screen served by the adapter.
// BOMs have a dedicated handler set; see bomscreen.go.
var entityConfigs = []EntityConfig{
	{
		Slug: "uoms", ScopeKey: "master_data.uoms", EntityType: approval.EntityUom,
		Table: "uoms", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "symbol", Kind: KindString},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "uom-conversions", ScopeKey: "master_data.uom_conversions", EntityType: approval.EntityUomConversion,
		Table: "uom_conversions", NameField: "factor",
		Fields: []Field{
			{Name: "from_uom_id", Kind: KindInt, Required: true, RefTable: "uoms"},
			{Name: "to_uom_id", Kind: KindInt, Required: true, RefTable: "uoms"},
			{Name: "factor", Kind: KindDecimal, Required: true},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "sizes", ScopeKey: "master_data.sizes", EntityType: approval.EntitySize,
		Table: "sizes", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "sort_order", Kind: KindInt},
			{Name: "item_types", Kind: KindStringList},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "colors", ScopeKey: "master_data.colors", EntityType: approval.EntityColor,
		Table: "colors", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "hex_code", Kind: KindString},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "grades", ScopeKey: "master_data.grades", EntityType: approval.EntityGrade,
		Table: "grades", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "packing-types", ScopeKey: "master_data.packing_types", EntityType: approval.EntityPackingType,
		Table: "packing_types", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "units_per", Kind: KindInt},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "cities", ScopeKey: "master_data.cities", EntityType: approval.EntityCity,
		Table: "cities", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "province", Kind: KindString},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "product-groups", ScopeKey: "master_data.product_groups", EntityType: approval.EntityProductGroup,
		Table: "product_groups", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "item_types", Kind: KindStringList},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "product-subgroups", ScopeKey: "master_data.product_subgroups", EntityType: approval.EntityProductSubgroup,
		Table: "product_subgroups", NameField: "name",
		Fields: []Field{
			{Name: "product_group_id", Kind: KindInt, Required: true, RefTable: "product_groups"},
			{Name: "name", Kind: KindString, Required: true},
			{Name: "item_types", Kind: KindStringList},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "product-types", ScopeKey: "master_data.product_types", EntityType: approval.EntityProductType,
		Table: "product_types", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "party-groups", ScopeKey: "master_data.party_groups", EntityType: approval.EntityPartyGroup,
		Table: "party_groups", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "account-groups", ScopeKey: "master_data.account_groups", EntityType: approval.EntityAccountGroup,
		Table: "account_groups", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "nature", Kind: KindString},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "departments", ScopeKey: "hr.departments", EntityType: approval.EntityDepartment,
		Table: "departments", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "accounts", ScopeKey: "master_data.accounts", EntityType: approval.EntityAccount,
		Table: "accounts", NameField: "name",
		Fields: []Field{
			{Name: "code", Kind: KindString, Required: true},
			{Name: "name", Kind: KindString, Required: true},
			{Name: "account_group_id", Kind: KindInt, Required: true, RefTable: "account_groups"},
			{Name: "account_type", Kind: KindString},
			{Name: "branch_ids", Kind: KindIntList},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "parties", ScopeKey: "master_data.parties", EntityType: approval.EntityParty,
		Table: "parties", NameField: "name",
		Fields: []Field{
			{Name: "name", Kind: KindString, Required: true},
			{Name: "party_type", Kind: KindString, Required: true},
			{Name: "party_group_id", Kind: KindInt, RefTable: "party_groups"},
			{Name: "city_id", Kind: KindInt, RefTable: "cities"},
			{Name: "address", Kind: KindString},
			{Name: "phone1", Kind: KindString},
			{Name: "phone2", Kind: KindString},
			{Name: "credit_allowed", Kind: KindBool},
			{Name: "credit_limit", Kind: KindDecimal},
			{Name: "branch_ids", Kind: KindIntList},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "items", ScopeKey: "master_data.items", EntityType: approval.EntityItem,
		Table: "items", NameField: "name",
		Fields: []Field{
			{Name: "item_type", Kind: KindString, Required: true},
			{Name: "code", Kind: KindString, Required: true},
			{Name: "name", Kind: KindString, Required: true},
			{Name: "name_ur", Kind: KindString},
			{Name: "group_id", Kind: KindInt, RefTable: "product_groups"},
			{Name: "subgroup_id", Kind: KindInt, RefTable: "product_subgroups"},
			{Name: "product_type_id", Kind: KindInt, RefTable: "product_types"},
			{Name: "base_uom_id", Kind: KindInt, RefTable: "uoms"},
			{Name: "uses_sfg", Kind: KindBool},
			{Name: "sfg_part_type", Kind: KindString},
			{Name: "min_stock_level", Kind: KindDecimal},
			{Name: "rates", Kind: KindJSON},
			{Name: "usage_ids", Kind: KindIntList},
			{Name: "is_active", Kind: KindBool},
		},
	},
	{
		Slug: "skus", ScopeKey: "master_data.skus", EntityType: approval.EntitySku,
		Table: "skus", NameField: "sku_code",
		Fields: []Field{
			{Name: "item_id", Kind: KindInt, Required: true, RefTable: "items"},
			{Name: "size_id", Kind: KindInt, RefTable: "sizes"},
			{Name: "packing_type_id", Kind: KindInt, RefTable: "packing_types"},
			{Name: "grade_id", Kind: KindInt, RefTable: "grades"},
			{Name: "color_id", Kind: KindInt, RefTable: "colors"},
			{Name: "sale_rate", Kind: KindDecimal},
			{Name: "is_active", Kind: KindBool},
		},
	},
}

// refLookupTables maps payload id fields to the table whose name column a
// preview shows next to the raw id.
var refLookupTables = map[string]string{
	"account_group_id":    "account_groups",
	"party_group_id":      "party_groups",
	"city_id":             "cities",
	"group_id":            "product_groups",
	"subgroup_id":         "product_subgroups",
	"product_group_id":    "product_groups",
	"product_type_id":     "product_types",
	"base_uom_id":         "uoms",
	"from_uom_id":         "uoms",
	"to_uom_id":           "uoms",
	"item_id":             "items",
	"size_id":             "sizes",
	"packing_type_id":     "packing_types",
	"grade_id":            "grades",
	"color_id":            "colors",
	"output_uom_id":       "uoms",
}
