package bsmslack

import (
	"context"
	"fmt"
	"strings"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/pkg/errors"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const bsmUsage = "Usage: /bsm <spot> <strike> <days> <rate> <vol> <call|put> [market] [hv]"

type BSMHandler struct {
	analyzer *analysis.Analyzer
	log      *zap.Logger
}

func NewBSMHandler(a *analysis.Analyzer, log *zap.Logger) *BSMHandler {
	return &BSMHandler{analyzer: a, log: log}
}

func (h *BSMHandler) HandleCommand(ctx context.Context, cmd slack.SlashCommand, client Poster) error {
	req, err := h.parse(cmd.Text)
	if err != nil {
		_, _, perr := client.PostMessage(cmd.ChannelID,
			slack.MsgOptionText(fmt.Sprintf("%v\n%s", err, bsmUsage), false))
		return perr
	}

	_, ts, err := client.PostMessage(cmd.ChannelID,
		slack.MsgOptionText(fmt.Sprintf("Pricing `%s`...", cmd.Text), false))
	if err != nil {
		return err
	}

	rep, err := h.analyzer.Analyze(ctx, req)
	text := ""
	if err != nil {
		h.log.Warn("bsm analysis failed", zap.String("text", cmd.Text), zap.Error(err))
		text = err.Error()
	} else {
		text = formatReport(rep)
	}
	_, _, err = client.PostMessage(cmd.ChannelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(ts))
	return err
}

func (h *BSMHandler) parse(text string) (analysis.Request, error) {
	c, extra, err := contractArgs(text, h.analyzer.Pricer().Config())
	if err != nil {
		return analysis.Request{}, err
	}
	if len(extra) > 2 {
		return analysis.Request{}, errors.Errorf("expected at most 8 arguments, got %d", 6+len(extra))
	}
	req := analysis.Request{Contract: c}
	if len(extra) > 0 {
		req.Contract = c.WithMarketPrice(extra[0])
	}
	if len(extra) > 1 {
		req.HistoricalVol = extra[1]
	}
	return req, nil
}

func formatReport(rep *analysis.Report) string {
	var b strings.Builder
	c, pr, g := rep.Contract, rep.Pricing, rep.Greeks

	fmt.Fprintf(&b, "*%s* S=%.2f K=%.2f T=%.4fy r=%.2f%% vol=%.2f%%\n",
		strings.ToUpper(string(c.Kind)), c.Spot, c.Strike, pr.Contract.Expiry, c.Rate*100, c.Volatility*100)
	fmt.Fprintf(&b, "Theoretical: $%.4f", pr.Price)
	if pr.Intrinsic {
		b.WriteString(" (discounted intrinsic)")
	}
	b.WriteString("\n")
	if hp := rep.HistoricalPricing; hp != nil {
		fmt.Fprintf(&b, "At HV %.2f%%: $%.4f\n", hp.Contract.Volatility*100, hp.Price)
	}
	fmt.Fprintf(&b, "Delta %.2f | Gamma %.4f | Theta %.4f/day | Vega %.4f | Rho %.4f\n",
		g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho)

	if v := rep.Verdict; v != nil {
		market, _ := c.Market()
		fmt.Fprintf(&b, "Market $%.2f: *%s* (%+.1f%%)\n", market, v.Classification, v.MispricingPct*100)
		fmt.Fprintf(&b, "IV %.1f%%, VRP %+.1f pts: %s\n", *rep.ImpliedVol*100, v.VRP*100, v.VRPSignal)
	}
	h := rep.Hedge
	fmt.Fprintf(&b, "Hedge: %s %.0f shares ($%s)\n", h.Direction, abs(h.Shares), h.Capital.StringFixed(2))
	fmt.Fprintf(&b, "Best: %s | Worst: %s", rep.Best, rep.Worst)
	for _, w := range rep.Warnings {
		fmt.Fprintf(&b, "\n_%s_", w)
	}
	return b.String()
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
