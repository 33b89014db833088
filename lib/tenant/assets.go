package tenant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// customerSection mirrors the CUSTOMER block of the deployed
// v2/config.json document. The rest of the document is carried through
// untouched.
type customerSection struct {
	DefaultTeam   string   `json:"DEFAULT_TEAM"`
	DefaultLeague string   `json:"DEFAULT_LEAGUE"`
	CurrentSeason string   `json:"CURRENT_SEASON"`
	Exclude       []string `json:"EXCLUDE"`
}

// normalizeOverride cleans a form-sourced override value. The values
// arrive URL-encoded from the modal, so embedded '+' means space.
func normalizeOverride(v string) string {
	return strings.ReplaceAll(strings.TrimSpace(v), "+", " ")
}

// applyConfigOverrides rewrites the CUSTOMER section of a config
// document with any non-empty overrides. Unknown top-level sections
// (TRAITS, POSITIONS, COLORS, ...) survive the round trip verbatim.
func applyConfigOverrides(raw []byte, team, league, season string) ([]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing config document: %w", err)
	}

	var customer customerSection
	if section, ok := doc["CUSTOMER"]; ok {
		if err := json.Unmarshal(section, &customer); err != nil {
			return nil, fmt.Errorf("parsing CUSTOMER section: %w", err)
		}
	}

	if team != "" {
		customer.DefaultTeam = normalizeOverride(team)
	}
	if league != "" {
		customer.DefaultLeague = normalizeOverride(league)
	}
	if season != "" {
		customer.CurrentSeason = normalizeOverride(season)
	}

	section, err := json.Marshal(customer)
	if err != nil {
		return nil, err
	}
	doc["CUSTOMER"] = section

	return json.MarshalIndent(doc, "", "  ")
}

// hasOverrides reports whether the submission changes anything in the
// default config document.
func hasOverrides(sub Submission) bool {
	return sub.DefaultTeam != "" || sub.DefaultCompetition != "" || sub.DefaultSeason != ""
}
