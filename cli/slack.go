package cli

import (
	"github.com/bcdannyboy/bsmrisk/analysis"
	bsmslack "github.com/bcdannyboy/bsmrisk/slack"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSlackCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "slack",
		Short: "Run the Slack slash-command bot over socket mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Slack
			if sc.AppToken == "" || sc.BotToken == "" {
				return errors.New("slack: SLACK_APP_TOKEN and SLACK_BOT_TOKEN are required")
			}
			bot := bsmslack.NewSlackBot(sc.AppToken, sc.BotToken, analysis.New(a.cfg, a.log), sc.Debug, a.log)
			return bot.Start(cmd.Context())
		},
	}
}
