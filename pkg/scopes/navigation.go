package scopes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NavigationConfig is the YAML shape of the navigation tree.
type NavigationConfig struct {
	Modules []ModuleNode `yaml:"modules" json:"modules"`
}

// ModuleNode is a top-level navigation module owning zero or more screens.
type ModuleNode struct {
	Key     string       `yaml:"key" json:"key"`
	Title   string       `yaml:"title" json:"title"`
	Screens []ScreenNode `yaml:"screens,omitempty" json:"screens,omitempty"`
}

// ScreenNode is a single screen under a module.
type ScreenNode struct {
	Key   string `yaml:"key" json:"key"`
	Title string `yaml:"title" json:"title"`
}

// NavigationTree holds the static navigation structure with a precomputed
// screen-to-module lookup. The tree is immutable after construction; permission
// resolution never walks it.
type NavigationTree struct {
	Modules  []ModuleNode
	moduleOf map[string]string
}

// NewNavigationTree builds a tree from config and precomputes the
// screen_key -> module_key map.
func NewNavigationTree(cfg *NavigationConfig) *NavigationTree {
	t := &NavigationTree{
		Modules:  cfg.Modules,
		moduleOf: make(map[string]string),
	}
	for _, m := range cfg.Modules {
		for _, sc := range m.Screens {
			t.moduleOf[sc.Key] = m.Key
		}
	}
	return t
}

// LoadNavigation loads the navigation tree from a YAML file.
// If the file does not exist, the built-in default tree is returned.
func LoadNavigation(path string) (*NavigationTree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultNavigation(), nil
		}
		return nil, fmt.Errorf("read navigation config: %w", err)
	}

	var cfg NavigationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse navigation config: %w", err)
	}

	return NewNavigationTree(&cfg), nil
}

// ModuleOf returns the enclosing module key for a screen key.
// The second return is false for unknown screens.
func (t *NavigationTree) ModuleOf(screenKey string) (string, bool) {
	m, ok := t.moduleOf[screenKey]
	return m, ok
}

// DefaultNavigation returns the built-in navigation tree for the ERP screens.
func DefaultNavigation() *NavigationTree {
	return NewNavigationTree(&NavigationConfig{Modules: []ModuleNode{
		{
			Key:   "administration",
			Title: "Administration",
			Screens: []ScreenNode{
				{Key: "administration.branches", Title: "Branches"},
				{Key: "administration.users", Title: "Users"},
				{Key: "administration.roles", Title: "Roles"},
				{Key: "administration.permissions", Title: "Permissions"},
				{Key: "administration.approval_policies", Title: "Approval Policies"},
				{Key: "administration.approvals", Title: "Approvals"},
				{Key: "administration.activity_log", Title: "Activity Log"},
			},
		},
		{
			Key:   "master_data",
			Title: "Master Data",
			Screens: []ScreenNode{
				{Key: "master_data.accounts", Title: "Accounts"},
				{Key: "master_data.parties", Title: "Parties"},
				{Key: "master_data.items", Title: "Items"},
				{Key: "master_data.skus", Title: "SKUs"},
				{Key: "master_data.uoms", Title: "Units of Measure"},
				{Key: "master_data.uom_conversions", Title: "UOM Conversions"},
				{Key: "master_data.sizes", Title: "Sizes"},
				{Key: "master_data.colors", Title: "Colors"},
				{Key: "master_data.grades", Title: "Grades"},
				{Key: "master_data.packing_types", Title: "Packing Types"},
				{Key: "master_data.cities", Title: "Cities"},
				{Key: "master_data.product_groups", Title: "Product Groups"},
				{Key: "master_data.product_subgroups", Title: "Product Subgroups"},
				{Key: "master_data.product_types", Title: "Product Types"},
				{Key: "master_data.party_groups", Title: "Party Groups"},
				{Key: "master_data.account_groups", Title: "Account Groups"},
			},
		},
		{
			Key:   "production",
			Title: "Production",
			Screens: []ScreenNode{
				{Key: "production.boms", Title: "Bills of Material"},
			},
		},
		{
			Key:   "hr",
			Title: "Human Resources",
			Screens: []ScreenNode{
				{Key: "hr.departments", Title: "Departments"},
				{Key: "hr.employees", Title: "Employees"},
			},
		},
	}})
}
