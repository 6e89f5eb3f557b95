package bsmslack

import (
	"github.com/slack-go/slack"
)

const helpText = "Available commands:\n" +
	"/help - Show this help message\n" +
	"/bsm <spot> <strike> <days> <rate> <vol> <call|put> [market] [hv] - Price, Greeks and mispricing verdict\n" +
	"/scenarios <spot> <strike> <days> <rate> <vol> <call|put> - Preset stress scenarios\n" +
	"Rates and volatilities are decimals: 0.05 for 5%."

type HelpHandler struct{}

func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

func (h *HelpHandler) HandleCommand(cmd slack.SlashCommand, client Poster) error {
	_, _, err := client.PostMessage(cmd.ChannelID,
		slack.MsgOptionText(helpText, false))
	return err
}
