package server

import (
	"fmt"
	"net/http"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/bcdannyboy/bsmrisk/scenario"
	"github.com/pkg/errors"
	"github.com/xhhuango/json"
	"go.uber.org/zap"
)

type contractRequest struct {
	Contract models.OptionContract `json:"contract"`
	Side     models.Side           `json:"side,omitempty"`
}

type greeksResponse struct {
	Pricing models.PricingResult `json:"pricing"`
	Greeks  models.GreeksResult  `json:"greeks"`
}

type classifyRequest struct {
	TheoreticalPrice float64 `json:"theoretical_price"`
	MarketPrice      float64 `json:"market_price"`
	ImpliedVol       float64 `json:"implied_vol"`
	HistoricalVol    float64 `json:"historical_vol"`
}

type scenarioRequest struct {
	Contract  models.OptionContract `json:"contract"`
	Scenarios []scenario.Named      `json:"scenarios,omitempty"`
}

type scenarioResponse struct {
	Base    models.PricingResult   `json:"base"`
	Results []scenario.NamedResult `json:"results"`
	Best    string                 `json:"best"`
	Worst   string                 `json:"worst"`
}

type surfaceRequest struct {
	Contract models.OptionContract    `json:"contract"`
	Surface  *analysis.SurfaceRequest `json:"surface,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errMalformed = errors.New("malformed request body")

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if !s.decode(w, r, &req) {
		return
	}
	pr, err := s.analyzer.Pricer().Price(req.Contract)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pr)
}

func (s *Server) handleGreeks(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Side != "" && !req.Side.Valid() {
		s.writeError(w, &models.DegenerateInputError{Op: "greeks", Reason: fmt.Sprintf("unknown side %q", req.Side)})
		return
	}
	pr, g, err := s.analyzer.Pricer().PriceWithGreeks(req.Contract)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Side != "" {
		g = g.ForSide(req.Side)
	}
	s.writeJSON(w, http.StatusOK, greeksResponse{Pricing: pr, Greeks: g})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	v, err := s.analyzer.Classifier().Classify(req.TheoreticalPrice, req.MarketPrice, req.ImpliedVol, req.HistoricalVol)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Scenarios) == 0 {
		req.Scenarios = scenario.Presets()
	}

	engine := s.analyzer.Scenarios()
	base, err := engine.Baseline(req.Contract)
	if err != nil {
		s.writeError(w, err)
		return
	}
	results, err := engine.RunBatch(r.Context(), base, req.Scenarios)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := scenarioResponse{Base: base.Result, Results: results}
	if sum, ok := scenario.Summarize(results); ok {
		resp.Best, resp.Worst = sum.Best.Name, sum.Worst.Name
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	var req surfaceRequest
	if !s.decode(w, r, &req) {
		return
	}
	surf, err := s.analyzer.SurfaceBuilder(req.Surface).Build(r.Context(), req.Contract)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.recordSurface(surf)
	s.writeJSON(w, http.StatusOK, surf)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if !s.decode(w, r, &req) {
		return
	}
	rep, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rep.Surface != nil {
		s.recordSurface(rep.Surface)
	}
	s.writeJSON(w, http.StatusOK, rep)
}

func (s *Server) recordSurface(surf *models.SensitivitySurface) {
	counts := map[models.CellStatus]int{}
	for _, row := range surf.Cells {
		for _, c := range row {
			counts[c.Status]++
		}
	}
	for status, n := range counts {
		s.metrics.SurfaceCellsTotal.WithLabelValues(string(status)).Add(float64(n))
	}
	if surf.Truncated {
		s.metrics.SurfacesTruncated.Inc()
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errMalformed, err.Error()))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errMalformed):
		code = http.StatusBadRequest
	case models.IsInvalidContract(err), models.IsDegenerate(err), errors.Is(err, models.ErrSurfaceTooLarge):
		code = http.StatusUnprocessableEntity
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("writing response", zap.Error(err))
	}
}
