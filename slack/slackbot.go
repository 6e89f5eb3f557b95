package bsmslack

import (
	"context"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/logger"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

type SlackBot struct {
	client       *slack.Client
	socketClient *socketmode.Client
	eventHandler *Handler
	log          *zap.Logger
}

func NewSlackBot(appToken, botToken string, a *analysis.Analyzer, debug bool, log *zap.Logger) *SlackBot {
	log = logger.OrNop(log).Named("slack")
	client := slack.New(
		botToken,
		slack.OptionAppLevelToken(appToken),
	)

	socketClient := socketmode.New(
		client,
		socketmode.OptionDebug(debug),
		socketmode.OptionLog(zap.NewStdLog(log.Named("socketmode"))),
	)

	return &SlackBot{
		client:       client,
		socketClient: socketClient,
		eventHandler: NewHandler(a, log),
		log:          log,
	}
}

// Start consumes socket-mode events until ctx is done.
func (sb *SlackBot) Start(ctx context.Context) error {
	go sb.consume(ctx, sb.socketClient.Events)
	return sb.socketClient.RunContext(ctx)
}

func (sb *SlackBot) consume(ctx context.Context, events <-chan socketmode.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			sb.dispatch(ctx, evt)
		}
	}
}

func (sb *SlackBot) dispatch(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		sb.log.Info("connecting to slack")
	case socketmode.EventTypeConnected:
		sb.log.Info("connected to slack")
	case socketmode.EventTypeConnectionError:
		sb.log.Warn("slack connection error")
	case socketmode.EventTypeSlashCommand:
		cmd, ok := evt.Data.(slack.SlashCommand)
		if !ok {
			return
		}
		sb.socketClient.Ack(*evt.Request)
		if err := sb.eventHandler.Handle(ctx, cmd, sb.socketClient); err != nil {
			sb.log.Error("slash command failed", zap.String("command", cmd.Command), zap.Error(err))
		}
	}
}
