package bsmslack

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/config"
	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/bcdannyboy/bsmrisk/pricing"
	"github.com/bcdannyboy/bsmrisk/scenario"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePoster struct {
	mu       sync.Mutex
	channels []string
}

func (f *fakePoster) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channelID)
	return channelID, "1700000000.000100", nil
}

func (f *fakePoster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.channels)
}

func newAnalyzer(t *testing.T) *analysis.Analyzer {
	return analysis.New(config.Default(), zaptest.NewLogger(t))
}

func TestContractArgs(t *testing.T) {
	cfg := pricing.DefaultConfig()
	c, extra, err := contractArgs("100 105 73 0.05 0.25 put 2.5", cfg)
	require.NoError(t, err)
	assert.Equal(t, 100.0, c.Spot)
	assert.Equal(t, 105.0, c.Strike)
	assert.InDelta(t, 0.2, c.Expiry, 1e-12)
	assert.Equal(t, 0.05, c.Rate)
	assert.Equal(t, 0.25, c.Volatility)
	assert.Equal(t, models.Put, c.Kind)
	assert.Equal(t, []float64{2.5}, extra)

	for name, text := range map[string]string{
		"too few":      "100 105 73 0.05 0.25",
		"not a number": "100 abc 73 0.05 0.25 call",
		"bad kind":     "100 105 73 0.05 0.25 straddle",
		"bad extra":    "100 105 73 0.05 0.25 call x",
		"bad strike":   "100 0 73 0.05 0.25 call",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := contractArgs(text, cfg)
			assert.Error(t, err)
		})
	}
}

func TestBSMHandler_Parse(t *testing.T) {
	h := NewBSMHandler(newAnalyzer(t), zaptest.NewLogger(t))

	req, err := h.parse("100 100 91.25 0.05 0.2 call 6.5 0.18")
	require.NoError(t, err)
	m, ok := req.Contract.Market()
	require.True(t, ok)
	assert.Equal(t, 6.5, m)
	assert.Equal(t, 0.18, req.HistoricalVol)

	_, err = h.parse("100 100 91.25 0.05 0.2 call 6.5 0.18 1")
	assert.Error(t, err)
}

func TestFormatReport(t *testing.T) {
	a := newAnalyzer(t)
	c := models.OptionContract{Spot: 100, Strike: 100, Expiry: 0.25, Rate: 0.05, Volatility: 0.20, Kind: models.Call}
	rep, err := a.Analyze(context.Background(), analysis.Request{Contract: c.WithMarketPrice(6.583084497992466)})
	require.NoError(t, err)

	text := formatReport(rep)
	assert.Contains(t, text, "*CALL*")
	assert.Contains(t, text, "Theoretical: $4.6150")
	assert.Contains(t, text, "*EXPENSIVE*")
	assert.Contains(t, text, "selling-opportunity")
	assert.Contains(t, text, "Hedge: SHORT 57 shares")
	assert.Contains(t, text, "Best: Bull Rally | Worst: Crash")
	assert.NotContains(t, text, "At HV")

	rep, err = a.Analyze(context.Background(), analysis.Request{Contract: c, HistoricalVol: 0.30})
	require.NoError(t, err)
	assert.Contains(t, formatReport(rep), "At HV 30.00%: $6.5831")
}

func TestFormatScenarios(t *testing.T) {
	bs := pricing.NewBlackScholes(pricing.DefaultConfig())
	e := scenario.NewEngine(bs, bs.Config())
	base, err := e.Baseline(models.OptionContract{Spot: 100, Strike: 100, Expiry: 0.25, Rate: 0.05, Volatility: 0.20, Kind: models.Call})
	require.NoError(t, err)
	results, err := e.RunBatch(context.Background(), base, scenario.Presets())
	require.NoError(t, err)

	text := formatScenarios(base, results)
	assert.Contains(t, text, "Base price $4.6150")
	for _, p := range scenario.Presets() {
		assert.Contains(t, text, p.Name)
	}
	assert.Contains(t, text, "Best: Bull Rally | Worst: Crash")
}

func TestHandler_Dispatch(t *testing.T) {
	h := NewHandler(newAnalyzer(t), zaptest.NewLogger(t))
	ctx := context.Background()

	tests := []struct {
		command, text string
		posts         int
	}{
		{"/help", "", 1},
		{"/bsm", "100 100 91.25 0.05 0.2 call", 2},
		{"/bsm", "100 100", 1},
		{"/scenarios", "100 100 91.25 0.05 0.2 put", 1},
		{"/scenarios", "nope", 1},
		{"/unknown", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.command+" "+tt.text, func(t *testing.T) {
			p := &fakePoster{}
			err := h.Handle(ctx, slack.SlashCommand{Command: tt.command, Text: tt.text, ChannelID: "C123"}, p)
			require.NoError(t, err)
			assert.Equal(t, tt.posts, p.count())
		})
	}
}

func TestConsume_StopsOnCancel(t *testing.T) {
	sb := NewSlackBot("xapp-test", "xoxb-test", newAnalyzer(t), false, zaptest.NewLogger(t))
	events := make(chan socketmode.Event)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sb.consume(ctx, events)
		close(done)
	}()

	events <- socketmode.Event{Type: socketmode.EventTypeConnected}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("event loop still running after cancel")
	}
}
