package scopes

// legacyAliases maps pre-migration scope keys to their modern equivalents.
// The map is consulted only as a resolver fallback; new code paths never
// persist legacy keys. The reverse direction exists so grants stored under a
// legacy key (rows predating the normalization migration) still resolve.
var legacyAliases = map[string]string{
	"setup:branches":    "administration.branches",
	"setup:users":       "administration.users",
	"setup:roles":       "administration.roles",
	"setup:permissions": "administration.permissions",
	"setup:accounts":    "master_data.accounts",
	"setup:parties":     "master_data.parties",
	"setup:items":       "master_data.items",
	"setup:skus":        "master_data.skus",
	"setup:boms":        "production.boms",
	"setup:departments": "hr.departments",
}

// modernToLegacy is the inverse of legacyAliases, built once at init.
var modernToLegacy = func() map[string]string {
	m := make(map[string]string, len(legacyAliases))
	for legacy, modern := range legacyAliases {
		m[modern] = legacy
	}
	return m
}()

// CanonicalKey translates a legacy scope key to its modern form.
// Keys without an alias are returned unchanged.
func CanonicalKey(key string) string {
	if modern, ok := legacyAliases[key]; ok {
		return modern
	}
	return key
}

// LegacyKey returns the legacy alias for a modern scope key, if one exists.
func LegacyKey(key string) (string, bool) {
	legacy, ok := modernToLegacy[key]
	return legacy, ok
}
