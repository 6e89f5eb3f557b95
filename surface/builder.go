package surface

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bcdannyboy/bsmrisk/models"
	"github.com/bcdannyboy/bsmrisk/scenario"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

const (
	jobBatchSize    = 1000
	resultBatchSize = 1000
)

type job struct {
	i, j       int
	multiplier float64
	spec       models.ScenarioSpec
}

type result struct {
	i, j int
	cell models.Cell
}

// Builder fills a volatility by elapsed-time P&L grid. Cells are independent
// scenarios evaluated on a fixed worker pool.
type Builder struct {
	engine *scenario.Engine
	opts   Options
}

func NewBuilder(engine *scenario.Engine, opts Options) *Builder {
	return &Builder{engine: engine, opts: opts}
}

// Build prices the base contract once, then every cell against it. A
// cancelled ctx stops dispatch: unevaluated cells are marked skipped, the
// surface is flagged Truncated, and no error is returned.
func (b *Builder) Build(ctx context.Context, c models.OptionContract) (*models.SensitivitySurface, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}
	rows, cols := b.opts.VolMultipliers.Steps, b.opts.TimePoints
	// rows and cols are both >= 1 here; divide rather than multiply so huge
	// axes cannot wrap the product.
	if limit := b.opts.maxCells(); rows > limit || cols > limit/rows {
		return nil, errors.Wrapf(models.ErrSurfaceTooLarge, "%d x %d cells, limit %d", rows, cols, limit)
	}

	base, err := b.engine.Baseline(c)
	if err != nil {
		return nil, err
	}

	s := &models.SensitivitySurface{
		Base:           base.Result,
		VolMultipliers: b.opts.VolMultipliers.points(),
		ElapsedDays:    b.elapsedDays(base.Result.Contract.Expiry, cols),
		Cells:          make([][]models.Cell, rows),
	}
	jobs := make([]job, 0, rows*cols)
	for i, m := range s.VolMultipliers {
		s.Cells[i] = make([]models.Cell, cols)
		for j, d := range s.ElapsedDays {
			s.Cells[i][j] = models.Cell{VolMultiplier: m, ElapsedDays: d, Status: models.CellSkipped}
			jobs = append(jobs, job{i: i, j: j, multiplier: m, spec: models.ScenarioSpec{
				SpotShockPct:  b.opts.SpotShockPct,
				VolShockAbs:   c.Volatility * (m - 1),
				TimeShockDays: d,
			}})
		}
	}

	log := b.opts.logger()
	start := time.Now()
	workers := b.opts.workers()
	log.Debug("building sensitivity surface",
		zap.Int("rows", rows), zap.Int("cols", cols), zap.Int("workers", workers))

	done := b.processJobs(ctx, base, jobs, workers, s)

	if done < len(jobs) {
		s.Truncated = true
		log.Warn("sensitivity surface truncated",
			zap.Int("evaluated", done), zap.Int("total", len(jobs)), zap.Error(ctx.Err()))
	}
	log.Debug("sensitivity surface built",
		zap.Int("failed", s.Failed), zap.Duration("elapsed", time.Since(start)))
	return s, nil
}

func (b *Builder) elapsedDays(expiry float64, n int) []float64 {
	if n == 1 {
		return []float64{0}
	}
	horizon := expiry * b.engine.Config().DaysPerYear
	return floats.Span(make([]float64, n), 0, horizon)
}

// processJobs returns the number of cells evaluated.
func (b *Builder) processJobs(ctx context.Context, base scenario.Baseline, jobs []job, numWorkers int, s *models.SensitivitySurface) int {
	var wg sync.WaitGroup
	jobChan := make(chan job, jobBatchSize)
	resultChan := make(chan result, resultBatchSize)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go b.worker(ctx, base, jobChan, resultChan, &wg)
	}

	go func() {
		defer close(jobChan)
		for _, j := range jobs {
			select {
			case jobChan <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	evaluated := 0
	for r := range resultChan {
		s.Cells[r.i][r.j] = r.cell
		if r.cell.Status == models.CellFailed {
			s.Failed++
		}
		evaluated++
		if b.opts.Progress != nil {
			b.opts.Progress(evaluated, len(jobs))
		}
	}
	return evaluated
}

func (b *Builder) worker(ctx context.Context, base scenario.Baseline, jobs <-chan job, results chan<- result, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		if ctx.Err() != nil {
			continue
		}
		results <- result{i: j.i, j: j.j, cell: b.evaluate(base, j)}
	}
}

func (b *Builder) evaluate(base scenario.Baseline, j job) (cell models.Cell) {
	cell = models.Cell{
		VolMultiplier: j.multiplier,
		ElapsedDays:   j.spec.TimeShockDays,
	}
	defer func() {
		if r := recover(); r != nil {
			cell.Status = models.CellFailed
			cell.Result = models.ScenarioResult{}
			cell.Error = (&models.CellFailure{
				VolMultiplier: cell.VolMultiplier,
				ElapsedDays:   cell.ElapsedDays,
				Err:           fmt.Errorf("panic: %v", r),
			}).Error()
		}
	}()

	res, err := b.engine.RunFrom(base, j.spec)
	if err != nil {
		cell.Status = models.CellFailed
		cell.Error = (&models.CellFailure{VolMultiplier: cell.VolMultiplier, ElapsedDays: cell.ElapsedDays, Err: err}).Error()
		return cell
	}
	cell.Status = models.CellOK
	cell.Result = res
	return cell
}
