package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhhuango/json"
)

var atmFlags = []string{"--spot", "100", "--strike", "100", "--days", "91.25", "--rate", "0.05", "--vol", "0.2"}

func run(t *testing.T, args ...string) (string, error) {
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyze_JSON(t *testing.T) {
	out, err := run(t, append([]string{"analyze", "--market", "6.583084497992466", "--contracts", "10"}, atmFlags...)...)
	require.NoError(t, err)

	var rep analysis.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.InDelta(t, 4.614997129602855, rep.Pricing.Price, 1e-9)
	require.NotNil(t, rep.Verdict)
	assert.Equal(t, models.Expensive, rep.Verdict.Classification)
	assert.Equal(t, 10, rep.Position.Contracts)
	assert.Nil(t, rep.Surface)
}

func TestAnalyze_ShortPutYAML(t *testing.T) {
	out, err := run(t, append([]string{"analyze", "--kind", "put", "--short", "--format", "yaml"}, atmFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "pricing:")
	assert.Contains(t, out, "kind: put")
	assert.Contains(t, out, "side: short")
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := run(t, "analyze", "--spot", "100")
	assert.Error(t, err, "missing required flags")

	_, err = run(t, append([]string{"analyze", "--format", "xml"}, atmFlags...)...)
	assert.Error(t, err)

	_, err = run(t, append([]string{"analyze", "--kind", "straddle"}, atmFlags...)...)
	assert.Error(t, err)

	_, err = run(t, "analyze", "--spot", "100", "--strike", "-1", "--days", "30", "--vol", "0.2")
	require.Error(t, err)
	assert.True(t, models.IsInvalidContract(err))
}

func TestSurface_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surface.json")
	_, err := run(t, append([]string{"surface", "--quiet", "--vol-steps", "3", "--time-steps", "4", "--out", path}, atmFlags...)...)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var s models.SensitivitySurface
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Len(t, s.Cells, 3)
	assert.Len(t, s.ElapsedDays, 4)
	assert.InDelta(t, 91.25, s.ElapsedDays[3], 1e-9)
}

func TestSurface_WithProgress(t *testing.T) {
	out, err := run(t, append([]string{"surface", "--vol-steps", "2", "--time-steps", "2"}, atmFlags...)...)
	require.NoError(t, err)
	var s models.SensitivitySurface
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.False(t, s.Truncated)
}

func TestSlack_RequiresTokens(t *testing.T) {
	t.Setenv("SLACK_APP_TOKEN", "")
	t.Setenv("SLACK_BOT_TOKEN", "")
	_, err := run(t, "slack")
	assert.Error(t, err)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, append([]string{"analyze", "--config", filepath.Join(t.TempDir(), "none.yaml")}, atmFlags...)...)
	assert.Error(t, err)
}
