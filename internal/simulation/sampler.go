package simulation

import (
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/google/uuid"
	"github.com/yourusername/sharpeye/internal/models"
)

const (
	// DefaultSampleCount is the number of draws per request
	DefaultSampleCount = 10000
	// DefaultChunkSize is the number of draws generated from one derived seed
	DefaultChunkSize = 1000
)

// SampleSet holds simulated outcomes in generation order
type SampleSet struct {
	Values []float64
	Mean   float64
	Spread float64
	Seed   int64
}

// Len returns the number of samples
func (s SampleSet) Len() int {
	return len(s.Values)
}

// Sampler draws outcome samples around a point estimate
type Sampler struct {
	spread    SpreadPolicy
	workers   int
	chunkSize int
}

// NewSampler creates a sampler. workers <= 0 uses GOMAXPROCS.
func NewSampler(spread SpreadPolicy, workers, chunkSize int) *Sampler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Sampler{spread: spread, workers: workers, chunkSize: chunkSize}
}

// SpreadPolicy returns the blend used by this sampler
func (s *Sampler) SpreadPolicy() SpreadPolicy {
	return s.spread
}

// Simulate draws sampleCount values from Normal(predicted, sigma), clamping
// negatives to zero. The same seed always yields the same SampleSet; a nil
// seed draws a fresh one.
func (s *Sampler) Simulate(estimate models.PointEstimate, consistencyStd float64, sampleCount int, seed *int64) (SampleSet, error) {
	if sampleCount <= 0 {
		return SampleSet{}, &models.PreconditionError{Parameter: "sample_count", Value: float64(sampleCount)}
	}
	if !finite(estimate.PredictedPoints) {
		return SampleSet{}, &models.PreconditionError{Parameter: "predicted_points", Value: estimate.PredictedPoints}
	}
	sigma := s.spread.Blend(estimate.ModelMAE, consistencyStd)
	if !finite(sigma) || sigma < 0 {
		return SampleSet{}, &models.PreconditionError{Parameter: "spread", Value: sigma}
	}

	base := freshSeed()
	if seed != nil {
		base = *seed
	}

	values := make([]float64, sampleCount)
	chunks := (sampleCount + s.chunkSize - 1) / s.chunkSize

	var g errgroup.Group
	g.SetLimit(s.workers)
	for c := 0; c < chunks; c++ {
		start := c * s.chunkSize
		end := min(start+s.chunkSize, sampleCount)
		src := rand.NewSource(chunkSeed(base, c))
		g.Go(func() error {
			dist := distuv.Normal{Mu: estimate.PredictedPoints, Sigma: sigma, Src: src}
			for i := start; i < end; i++ {
				values[i] = math.Max(dist.Rand(), 0)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SampleSet{}, fmt.Errorf("sampling: %w", err)
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return SampleSet{
		Values: values,
		Mean:   sum / float64(sampleCount),
		Spread: sigma,
		Seed:   base,
	}, nil
}

// chunkSeed derives an independent stream per chunk with a splitmix64 step
func chunkSeed(base int64, chunk int) uint64 {
	z := uint64(base) + uint64(chunk+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

var seedCounter atomic.Uint64

func freshSeed() int64 {
	id := uuid.New()
	mix := binary.LittleEndian.Uint64(id[:8]) ^ uint64(time.Now().UnixNano()) ^ seedCounter.Add(1)
	return int64(mix)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
