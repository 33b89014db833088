package slackform

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"tenantops/lib/tenant"
)

// SlashCommand is the decoded body of a Slack slash-command request.
type SlashCommand struct {
	Token     string `mapstructure:"token"`
	Command   string `mapstructure:"command"`
	Text      string `mapstructure:"text"`
	TriggerID string `mapstructure:"trigger_id"`
	UserID    string `mapstructure:"user_id"`
}

// ValidateToken compares the request token against the configured
// shared secret. An unset secret always fails.
func ValidateToken(got, want string) error {
	if want == "" {
		return fmt.Errorf("%w: verification token not configured", tenant.ErrConfiguration)
	}
	if got != want {
		return tenant.ErrAuthentication
	}
	return nil
}

// ParseSlashCommand decodes a URL-encoded slash-command body.
func ParseSlashCommand(body string) (SlashCommand, error) {
	var cmd SlashCommand
	values, err := url.ParseQuery(body)
	if err != nil {
		return cmd, fmt.Errorf("%w: parsing form body: %s", tenant.ErrValidation, err.Error())
	}
	fields := make(map[string]interface{}, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}
	if err := mapstructure.Decode(fields, &cmd); err != nil {
		return cmd, fmt.Errorf("%w: decoding slash command: %s", tenant.ErrValidation, err.Error())
	}
	return cmd, nil
}

// Block and action ids of the onboarding modal.
const (
	CallbackID = "tenant_onboard_modal"

	blockProvider     = "data_provider"
	actionProvider    = "data_provider_selection"
	blockScope        = "competition_scope"
	actionScope       = "competition_scope_selection"
	blockSubdomain    = "subdomain"
	actionSubdomain   = "subdomain_input"
	blockLogo         = "logo"
	actionLogo        = "logo_upload"
	blockTeam         = "default_team"
	actionTeam        = "default_team_input"
	blockCompetition  = "default_competition"
	actionCompetition = "default_competition_input"
	blockSeason       = "default_season"
	actionSeason      = "default_season_input"
	blockAdminEmail   = "admin_email"
	actionAdminEmail  = "admin_email_input"
)

// stateValue is one element's state in a view submission. Only the
// field matching the element type is populated.
type stateValue struct {
	Value          string `json:"value"`
	SelectedOption struct {
		Value string `json:"value"`
	} `json:"selected_option"`
	Files []struct {
		URLPrivate string `json:"url_private"`
	} `json:"files"`
}

// InteractionPayload is the decoded `payload` field of a Slack
// interactivity callback.
type InteractionPayload struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
	TriggerID string `json:"trigger_id"`
	View      struct {
		CallbackID string `json:"callback_id"`
		State      struct {
			Values map[string]map[string]stateValue `json:"values"`
		} `json:"state"`
	} `json:"view"`
}

// ParseInteraction extracts the nested interaction payload from a
// URL-encoded interactivity body.
func ParseInteraction(body string) (InteractionPayload, error) {
	var payload InteractionPayload
	values, err := url.ParseQuery(body)
	if err != nil {
		return payload, fmt.Errorf("%w: parsing form body: %s", tenant.ErrValidation, err.Error())
	}
	raw := values.Get("payload")
	if raw == "" {
		return payload, fmt.Errorf("%w: no payload field present", tenant.ErrValidation)
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, fmt.Errorf("%w: decoding payload: %s", tenant.ErrValidation, err.Error())
	}
	return payload, nil
}

func (p InteractionPayload) state(block, action string) stateValue {
	if actions, ok := p.View.State.Values[block]; ok {
		return actions[action]
	}
	return stateValue{}
}

// Submission maps the modal state onto a tenant submission and
// validates the required fields.
func (p InteractionPayload) Submission(validate *validator.Validate) (tenant.Submission, error) {
	sub := tenant.Submission{
		Provider:           p.state(blockProvider, actionProvider).SelectedOption.Value,
		Scope:              p.state(blockScope, actionScope).SelectedOption.Value,
		Subdomain:          p.state(blockSubdomain, actionSubdomain).Value,
		DefaultTeam:        p.state(blockTeam, actionTeam).Value,
		DefaultCompetition: p.state(blockCompetition, actionCompetition).Value,
		DefaultSeason:      p.state(blockSeason, actionSeason).Value,
		AdminEmail:         p.state(blockAdminEmail, actionAdminEmail).Value,
		UserID:             p.User.ID,
	}
	if files := p.state(blockLogo, actionLogo).Files; len(files) > 0 {
		sub.LogoURL = files[0].URLPrivate
	}
	if err := validate.Struct(sub); err != nil {
		return sub, fmt.Errorf("%w: %s", tenant.ErrValidation, err.Error())
	}
	return sub, nil
}
