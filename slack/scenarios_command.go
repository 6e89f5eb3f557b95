package bsmslack

import (
	"bytes"
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/scenario"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const scenariosUsage = "Usage: /scenarios <spot> <strike> <days> <rate> <vol> <call|put>"

type ScenariosHandler struct {
	analyzer *analysis.Analyzer
	log      *zap.Logger
}

func NewScenariosHandler(a *analysis.Analyzer, log *zap.Logger) *ScenariosHandler {
	return &ScenariosHandler{analyzer: a, log: log}
}

func (h *ScenariosHandler) HandleCommand(ctx context.Context, cmd slack.SlashCommand, client Poster) error {
	text, err := h.run(ctx, cmd.Text)
	if err != nil {
		text = fmt.Sprintf("%v\n%s", err, scenariosUsage)
	}
	_, _, err = client.PostMessage(cmd.ChannelID, slack.MsgOptionText(text, false))
	return err
}

func (h *ScenariosHandler) run(ctx context.Context, text string) (string, error) {
	c, extra, err := contractArgs(text, h.analyzer.Pricer().Config())
	if err != nil {
		return "", err
	}
	if len(extra) > 0 {
		return "", errors.Errorf("expected 6 arguments, got %d", 6+len(extra))
	}

	engine := h.analyzer.Scenarios()
	base, err := engine.Baseline(c)
	if err != nil {
		return "", err
	}
	results, err := engine.RunBatch(ctx, base, scenario.Presets())
	if err != nil {
		return "", err
	}
	return formatScenarios(base, results), nil
}

func formatScenarios(base scenario.Baseline, results []scenario.NamedResult) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Base price $%.4f\n```\n", base.Result.Price)
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Scenario\tSpot\tVol\tDays\tPrice\tP&L/share\t")
	for _, r := range results {
		s := r.Result.Spec
		fmt.Fprintf(w, "%s\t%+.0f%%\t%+.0f\t%.0f\t%.4f\t%+.4f\t\n",
			r.Name, s.SpotShockPct*100, s.VolShockAbs*100, s.TimeShockDays, r.Result.Price, r.Result.PnL)
	}
	w.Flush()
	buf.WriteString("```")
	if sum, ok := scenario.Summarize(results); ok {
		fmt.Fprintf(&buf, "\nBest: %s | Worst: %s", sum.Best.Name, sum.Worst.Name)
	}
	return buf.String()
}
