// Package hillclimb jointly decodes the segmentation, POS tags and
// dependency tree of a sentence by randomized hill climbing.
//
// A decoder owns a fixed pool of workers. Each call dispatches one batch in
// which every worker repeatedly resamples the segmentation and tags of a
// private copy of the sentence, draws a tree with a random walk and improves
// it by local moves. The best structure over all workers is written back to
// the caller's instance. Training runs the same search with a loss
// augmented score and hands the margin violation to the model parameters.
package hillclimb

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"segyap/nlp/types"
)

// minUpdateLoss is the smallest residual loss passed on to the parameters
const minUpdateLoss = 1e-4

type HillClimbing struct {
	Log     *slog.Logger
	Metrics *Metrics

	// number of Train calls so far
	UpdateTimes int

	opts     Options
	threads  int
	converge int
	isTrain  bool

	// serializes batches
	dispatchMu sync.Mutex
	pool       *pool

	// observes every finished round, for tests
	onRound func(worker int, score, best float64)
}

// TrainResult describes one training step
type TrainResult struct {
	BatchID    uuid.UUID
	PredScore  float64
	GoldScore  float64
	Loss       float64
	GoldSeeded bool
	Updated    bool
}

// NewDecoder creates a decoder running threads workers. The pool is not
// started until Initialize.
func NewDecoder(opts Options, mode DecodingMode, threads int, isTrain bool) (*HillClimbing, error) {
	if mode != HillClimb {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMode, mode)
	}
	if threads < 1 {
		return nil, fmt.Errorf("%w: %d threads", ErrInvalidOptions, threads)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &HillClimbing{
		Log:      slog.Default(),
		opts:     opts,
		threads:  threads,
		converge: opts.Converge(isTrain),
		isTrain:  isTrain,
	}, nil
}

func (d *HillClimbing) Threads() int {
	return d.threads
}

func (d *HillClimbing) Options() Options {
	return d.opts
}

// Initialize starts the worker pool
func (d *HillClimbing) Initialize() {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()
	if d.pool != nil {
		return
	}
	d.pool = startPool(d.threads, d.run)
	d.Log.Debug("worker pool started", "threads", d.threads, "train", d.isTrain)
}

// Shutdown stops the workers and waits for them to exit
func (d *HillClimbing) Shutdown() {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()
	if d.pool == nil {
		return
	}
	d.pool.stop()
	d.pool = nil
	d.Log.Debug("worker pool stopped", "threads", d.threads)
}

// startTask runs one batch on pred and writes the best structure back into
// it. Unless both segmentation and tags are frozen, pred is reset first.
func (d *HillClimbing) startTask(pred, gold *types.DependencyInstance, fe FeatureExtractor, sampleSeg, samplePos bool) (uuid.UUID, float64, error) {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()
	if d.pool == nil {
		return uuid.Nil, 0, ErrNotRunning
	}

	if sampleSeg || samplePos {
		InitInst(pred, fe, d.opts)
	}
	goldScore := 0.0
	if gold != nil {
		goldScore = fe.Parameters().Score(fe.Features(gold))
	}
	t := &task{
		id:        uuid.New(),
		pred:      pred,
		gold:      gold,
		fe:        fe,
		sampleSeg: sampleSeg,
		samplePos: samplePos,
		best:      newBestTracker(pred, d.converge, d.opts.EarlyStop, gold != nil, goldScore),
	}
	t.best.metrics = d.Metrics

	start := time.Now()
	d.pool.dispatch(t)
	mode := "decode"
	if gold != nil {
		mode = "train"
	}
	d.Metrics.observeBatch(mode, time.Since(start).Seconds())

	score, snapshot := t.best.best()
	snapshot.Restore(pred)
	d.Log.Debug("batch done", "batch", t.id, "mode", mode, "score", score,
		"seconds", time.Since(start).Seconds())
	return t.id, score, nil
}

// Decode replaces the structure of inst by the best one found and returns
// its score
func (d *HillClimbing) Decode(inst *types.DependencyInstance, fe FeatureExtractor) (float64, error) {
	_, score, err := d.startTask(inst, nil, fe, true, true)
	return score, err
}

// Train decodes pred with a loss augmented score against gold and updates
// the parameters when the result violates the margin. If the search falls
// short of gold by more than its loss, it is redone with gold's
// segmentation and tags.
func (d *HillClimbing) Train(gold, pred *types.DependencyInstance, fe FeatureExtractor) (TrainResult, error) {
	var result TrainResult
	id, _, err := d.startTask(pred, gold, fe, true, true)
	if err != nil {
		return result, err
	}
	result.BatchID = id
	params := fe.Parameters()

	newFV := fe.Features(gold)
	newScore := params.Score(newFV)
	oldFV := fe.Features(pred)
	oldScore := params.Score(oldFV)
	loss := sentenceLoss(gold, pred, params)

	if oldScore+loss < newScore-Epsilon {
		SetGoldSegAndPos(pred, gold)
		if _, _, err := d.startTask(pred, gold, fe, false, false); err != nil {
			return result, err
		}
		oldFV = fe.Features(pred)
		oldScore = params.Score(oldFV)
		loss = sentenceLoss(gold, pred, params)
		result.GoldSeeded = true
	}

	result.PredScore, result.GoldScore, result.Loss = oldScore, newScore, loss
	if newScore-oldScore < loss {
		residual := loss - (newScore - oldScore)
		if residual > minUpdateLoss {
			params.Update(gold, pred, newFV.Subtract(oldFV), residual, d.UpdateTimes)
			result.Updated = true
			d.Metrics.update()
		}
	}
	d.UpdateTimes++
	return result, nil
}

func sentenceLoss(gold, pred *types.DependencyInstance, params Parameters) float64 {
	loss := 0.0
	for i := 1; i < pred.NumWord(); i++ {
		loss += params.WordError(&gold.Word[i], &pred.Word[i])
	}
	return loss
}
