package slackform

import (
	"github.com/slack-go/slack"
)

// fileInputElement is the file_input block element, which the slack
// library does not model yet.
type fileInputElement struct {
	Type      slack.MessageElementType `json:"type"`
	ActionID  string                   `json:"action_id"`
	FileTypes []string                 `json:"filetypes,omitempty"`
	MaxFiles  int                      `json:"max_files,omitempty"`
}

func (f fileInputElement) ElementType() slack.MessageElementType {
	return f.Type
}

func plainText(text string) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.PlainTextType, text, false, false)
}

func selectInput(blockID, actionID, label, placeholder string, options ...*slack.OptionBlockObject) *slack.InputBlock {
	element := slack.NewOptionsSelectBlockElement(slack.OptTypeStatic, plainText(placeholder), actionID, options...)
	return slack.NewInputBlock(blockID, plainText(label), nil, element)
}

func textInput(blockID, actionID, label, placeholder string, optional bool) *slack.InputBlock {
	element := slack.NewPlainTextInputBlockElement(plainText(placeholder), actionID)
	block := slack.NewInputBlock(blockID, plainText(label), nil, element)
	block.Optional = optional
	return block
}

// OnboardModal is the onboarding form opened by the slash command.
func OnboardModal() slack.ModalViewRequest {
	providerOptions := []*slack.OptionBlockObject{
		slack.NewOptionBlockObject("wyscout", plainText("Wyscout"), nil),
		slack.NewOptionBlockObject("champion", plainText("Champion"), nil),
	}
	scopeOptions := []*slack.OptionBlockObject{
		slack.NewOptionBlockObject("all", plainText("All"), nil),
		slack.NewOptionBlockObject("wyscout-mens", plainText("Wyscout Mens Leagues"), nil),
		slack.NewOptionBlockObject("wyscout-womens", plainText("Wyscout Womens Leagues"), nil),
		slack.NewOptionBlockObject("wyscout-youth", plainText("Wyscout Youth Leagues"), nil),
	}

	logoBlock := slack.NewInputBlock(blockLogo, plainText("Upload logo"), nil, fileInputElement{
		Type:      "file_input",
		ActionID:  actionLogo,
		FileTypes: []string{"png"},
		MaxFiles:  1,
	})

	adminBlock := textInput(blockAdminEmail, actionAdminEmail, "Admin Email", "Enter initial admin email", true)

	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: CallbackID,
		Title:      plainText("Onboard Tenant"),
		Submit:     plainText("Onboard"),
		Blocks: slack.Blocks{
			BlockSet: []slack.Block{
				selectInput(blockProvider, actionProvider, "Data Provider", "Select a data provider", providerOptions...),
				selectInput(blockScope, actionScope, "Competition Scope", "Select a competition scope", scopeOptions...),
				textInput(blockSubdomain, actionSubdomain, "Subdomain", "Enter subdomain", false),
				logoBlock,
				textInput(blockTeam, actionTeam, "Default Team", "Enter default team", true),
				textInput(blockCompetition, actionCompetition, "Default Competition", "Enter default competition", true),
				textInput(blockSeason, actionSeason, "Default Season", "Enter default season", true),
				adminBlock,
			},
		},
	}
}
