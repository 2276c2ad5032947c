package modules

import "fmt"

// ModuleState is a module's effective visibility for an organization.
type ModuleState string

const (
	StateEnabled ModuleState = "enabled"
	StateLocked  ModuleState = "locked"
	StateHidden  ModuleState = "hidden"
)

func ParseState(s string) (ModuleState, error) {
	switch ModuleState(s) {
	case StateEnabled, StateLocked, StateHidden:
		return ModuleState(s), nil
	}
	return "", fmt.Errorf("unknown module state %q", s)
}

// Definition is one registry entry: the universe of valid module keys and
// their UI metadata fallback.
type Definition struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	RoutePath   string `json:"route_path"`
}

// Resolved is a module after applying override-over-template-over-hidden
// precedence for one organization. Never persisted.
type Resolved struct {
	Definition
	State        ModuleState            `json:"state"`
	IsAccessible bool                   `json:"is_accessible"`
	Config       map[string]interface{} `json:"config"`
	HasOverride  bool                   `json:"has_override"`
	SortOrder    int                    `json:"sort_order"`
}

// templateDefault is the subset of a template_modules row the resolver
// needs.
type templateDefault struct {
	ModuleKey    string
	DisplayName  string
	Description  string
	Icon         string
	RoutePath    string
	DefaultState ModuleState
	SortOrder    int
	Config       map[string]interface{}
}

// override is the subset of an org_module_overrides row the resolver needs.
// A nil State means the row only overrides config.
type override struct {
	ModuleKey string
	State     *ModuleState
	Config    map[string]interface{}
}

// effectiveState is the resolution precedence made explicit: override wins,
// then the template default, and everything else fails to hidden.
func effectiveState(ov *ModuleState, tmpl *ModuleState) ModuleState {
	if ov != nil {
		return *ov
	}
	if tmpl != nil {
		return *tmpl
	}
	return StateHidden
}

// mergeConfig is a shallow merge: an override key replaces the template
// value wholesale, including nested objects.
func mergeConfig(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
