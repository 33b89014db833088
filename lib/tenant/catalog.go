package tenant

import (
	"fmt"
	"sort"
)

// ProviderConfig holds the per-provider constants consulted during
// onboarding. MinimumMinutes is the participation threshold applied to
// every tenant of the provider regardless of scope.
type ProviderConfig struct {
	MinimumMinutes int
	Scopes         map[string]ScopeConfig
}

// ScopeConfig holds the per-scope constants for one provider. DBID is
// the legacy numeric database id the downstream provisioning workflow
// still expects.
type ScopeConfig struct {
	DBID        int
	DefaultTeam string
	Categories  []string
}

// Catalog maps data provider -> competition scope -> onboarding
// constants. Every divergent historical copy of these values now lives
// here and nowhere else.
type Catalog struct {
	providers map[string]ProviderConfig
}

var knownScopes = map[string]struct{}{
	"all":            {},
	"wyscout-mens":   {},
	"wyscout-womens": {},
	"wyscout-youth":  {},
}

// DefaultCatalog returns the shipped provider/scope table.
func DefaultCatalog() *Catalog {
	return &Catalog{
		providers: map[string]ProviderConfig{
			"wyscout": {
				MinimumMinutes: 300,
				Scopes: map[string]ScopeConfig{
					"all": {
						DBID:        99,
						DefaultTeam: "Chelsea FC",
						Categories:  []string{"mens", "womens", "youth"},
					},
					"wyscout-mens": {
						DBID:        99,
						DefaultTeam: "Chelsea FC",
						Categories:  []string{"mens"},
					},
					"wyscout-womens": {
						DBID:        32,
						DefaultTeam: "Chelsea FC Women",
						Categories:  []string{"womens"},
					},
					"wyscout-youth": {
						DBID:        75,
						DefaultTeam: "Chelsea FC U21",
						Categories:  []string{"youth"},
					},
				},
			},
			"champion": {
				MinimumMinutes: 300,
				Scopes: map[string]ScopeConfig{
					"all": {
						DBID:        3,
						DefaultTeam: "Kaizer Chiefs",
						Categories:  []string{"mens"},
					},
				},
			},
		},
	}
}

// Lookup resolves the onboarding constants for a provider/scope pair.
// An unknown provider or scope name is a configuration error; a known
// scope unsupported by the provider is a validation error.
func (c *Catalog) Lookup(provider, scope string) (ProviderConfig, ScopeConfig, error) {
	pc, ok := c.providers[provider]
	if !ok {
		return ProviderConfig{}, ScopeConfig{}, fmt.Errorf("%w: unknown data provider %q", ErrConfiguration, provider)
	}
	if _, ok := knownScopes[scope]; !ok {
		return ProviderConfig{}, ScopeConfig{}, fmt.Errorf("%w: unknown competition scope %q", ErrConfiguration, scope)
	}
	sc, ok := pc.Scopes[scope]
	if !ok {
		return ProviderConfig{}, ScopeConfig{}, fmt.Errorf("%w: provider %q does not support scope %q", ErrValidation, provider, scope)
	}
	return pc, sc, nil
}

// Providers lists the catalog's provider names in stable order, for the
// onboarding modal options.
func (c *Catalog) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
