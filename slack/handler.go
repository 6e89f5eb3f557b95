package bsmslack

import (
	"context"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// Poster is the part of the Slack client the commands use.
type Poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

type Handler struct {
	helpHandler      *HelpHandler
	bsmHandler       *BSMHandler
	scenariosHandler *ScenariosHandler
}

func NewHandler(a *analysis.Analyzer, log *zap.Logger) *Handler {
	return &Handler{
		helpHandler:      NewHelpHandler(),
		bsmHandler:       NewBSMHandler(a, log),
		scenariosHandler: NewScenariosHandler(a, log),
	}
}

func (h *Handler) Handle(ctx context.Context, cmd slack.SlashCommand, client Poster) error {
	switch cmd.Command {
	case "/help":
		return h.helpHandler.HandleCommand(cmd, client)
	case "/bsm":
		return h.bsmHandler.HandleCommand(ctx, cmd, client)
	case "/scenarios":
		return h.scenariosHandler.HandleCommand(ctx, cmd, client)
	}
	return nil
}
