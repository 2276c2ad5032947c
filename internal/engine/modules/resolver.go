package modules

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Resolver computes effective per-module state for an organization. It is a
// pure function of (registry, stored rows); it never writes.
type Resolver struct {
	registry *Registry
	repo     *Repository
}

func NewResolver(registry *Registry, repo *Repository) *Resolver {
	return &Resolver{registry: registry, repo: repo}
}

// noTemplateSort sorts registry entries with no template row after every
// templated entry, keeping registry declaration order among themselves.
const noTemplateSort = int(^uint(0) >> 1)

// ResolveModules resolves every registry module for the org. An org with no
// template assignment and no overrides gets every module hidden.
func (r *Resolver) ResolveModules(orgID string) ([]Resolved, error) {
	templateID, err := r.repo.TemplateIDForOrg(orgID)
	if err != nil {
		return nil, err
	}

	defaults := map[string]templateDefault{}
	if templateID != "" {
		defaults, err = r.repo.templateDefaults(templateID)
		if err != nil {
			return nil, err
		}
	}

	overrides, err := r.repo.overrides(orgID)
	if err != nil {
		return nil, err
	}

	resolved := make([]Resolved, 0, len(r.registry.Definitions()))
	for _, def := range r.registry.Definitions() {
		var tmplState *ModuleState
		var ovState *ModuleState
		config := map[string]interface{}{}
		sortOrder := noTemplateSort

		td, hasTemplate := defaults[def.Key]
		if hasTemplate {
			tmplState = &td.DefaultState
			sortOrder = td.SortOrder
			// Template rows may re-brand the registry metadata.
			if td.DisplayName != "" {
				def.DisplayName = td.DisplayName
			}
			if td.Description != "" {
				def.Description = td.Description
			}
			if td.Icon != "" {
				def.Icon = td.Icon
			}
			if td.RoutePath != "" {
				def.RoutePath = td.RoutePath
			}
		}

		ov, hasOverride := overrides[def.Key]
		if hasOverride {
			ovState = ov.State
		}

		state := effectiveState(ovState, tmplState)
		if hasTemplate || hasOverride {
			config = mergeConfig(td.Config, ov.Config)
		}

		resolved = append(resolved, Resolved{
			Definition:   def,
			State:        state,
			IsAccessible: state == StateEnabled,
			Config:       config,
			HasOverride:  hasOverride && ov.State != nil,
			SortOrder:    sortOrder,
		})
	}

	// Template sort order first; registry declaration order breaks ties
	// because the sort is stable over the registry-ordered slice.
	sort.SliceStable(resolved, func(i, j int) bool {
		return resolved[i].SortOrder < resolved[j].SortOrder
	})

	return resolved, nil
}

// ResolveState is the per-page-guard hot path: two point reads instead of a
// full resolution, with identical precedence. Any ambiguity resolves to
// hidden.
func (r *Resolver) ResolveState(orgID, moduleKey string) (ModuleState, error) {
	if _, ok := r.registry.Lookup(moduleKey); !ok {
		return StateHidden, nil
	}

	ovState, _, err := r.repo.overrideState(orgID, moduleKey)
	if err != nil {
		return StateHidden, err
	}
	if ovState != nil {
		return *ovState, nil
	}

	templateID, err := r.repo.TemplateIDForOrg(orgID)
	if err != nil {
		return StateHidden, err
	}
	if templateID == "" {
		return StateHidden, nil
	}

	tmplState, err := r.repo.templateDefaultState(templateID, moduleKey)
	if err != nil {
		return StateHidden, err
	}

	return effectiveState(nil, tmplState), nil
}

// IsAccessible reports whether the module resolves to enabled. Errors fail
// closed.
func (r *Resolver) IsAccessible(orgID, moduleKey string) bool {
	state, err := r.ResolveState(orgID, moduleKey)
	if err != nil {
		log.Error().Err(err).Str("org_id", orgID).Str("module", moduleKey).Msg("module state resolution failed")
		return false
	}
	return state == StateEnabled
}

// EnabledKeys lists the module keys currently enabled for the org, in
// resolved order. The onboarding engine derives its step list from this.
func (r *Resolver) EnabledKeys(orgID string) ([]string, error) {
	resolved, err := r.ResolveModules(orgID)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, m := range resolved {
		if m.State == StateEnabled {
			keys = append(keys, m.Key)
		}
	}
	return keys, nil
}
