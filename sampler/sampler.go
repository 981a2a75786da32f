// Package sampler implements the concrete SamplerFeature distributions used
// by the simulation kernel's timer sampling (spec.md §4.7): each Sampler
// draws a non-negative time-to-fire from an owned *rand.Rand.
package sampler

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"

	"github.com/pflow-xyz/stpn/errs"
)

// Sampler draws a single time-to-fire sample.
type Sampler interface {
	Sample(rng *rand.Rand) (float64, error)
}

// ShiftedExponential implements shift + (-ln(1-U))/rate, U in (0,1).
type ShiftedExponential struct {
	Rate  float64
	Shift float64
}

func (s ShiftedExponential) Sample(rng *rand.Rand) (float64, error) {
	u := rng.Float64()
	return s.Shift + (-math.Log(1-u))/s.Rate, nil
}

// TruncatedExponential rejects-and-resamples until the draw is <= Limit.
type TruncatedExponential struct {
	Rate  float64
	Shift float64
	Limit float64
}

func (s TruncatedExponential) Sample(rng *rand.Rand) (float64, error) {
	base := ShiftedExponential{Rate: s.Rate, Shift: s.Shift}
	for i := 0; i < 1_000_000; i++ {
		v, err := base.Sample(rng)
		if err != nil {
			return 0, err
		}
		if v <= s.Limit {
			return v, nil
		}
	}
	return 0, errs.NewDomainError("truncated exponential sampler did not converge within limit %v", s.Limit)
}

// Erlang sums Shape independent exponential(Rate) draws.
type Erlang struct {
	Rate  float64
	Shape int
}

func (s Erlang) Sample(rng *rand.Rand) (float64, error) {
	if s.Shape <= 0 {
		return 0, errs.NewDomainError("erlang shape must be positive, got %d", s.Shape)
	}
	sum := 0.0
	exp := ShiftedExponential{Rate: s.Rate}
	for i := 0; i < s.Shape; i++ {
		v, err := exp.Sample(rng)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

// Uniform samples min + U*(max-min); degenerate (returns min) when min == max.
type Uniform struct {
	Min, Max float64
}

func (s Uniform) Sample(rng *rand.Rand) (float64, error) {
	if s.Min == s.Max {
		return s.Min, nil
	}
	return s.Min + rng.Float64()*(s.Max-s.Min), nil
}

// PDF is an unnormalized probability density used by MetropolisHastings.
type PDF func(x float64) float64

// MetropolisHastings samples from pdf via a random-walk Metropolis sampler:
// an adaptive-sigma burn-in followed by thinned draws from a Gaussian
// proposal centered on the last accepted sample (spec.md §4.7).
type MetropolisHastings struct {
	PDF     PDF
	Support func(x float64) bool // nil => unconstrained support
	Start   float64

	state     float64
	haveState bool
	mhSigma   float64
}

const (
	mhBurnIn       = 10_000
	mhThinning     = 100
	mhSigmaInitial = 1.0
)

func (s *MetropolisHastings) Sample(rng *rand.Rand) (float64, error) {
	if s.PDF == nil {
		return 0, errs.NewDomainError("metropolis-hastings sampler requires a PDF")
	}
	inSupport := func(x float64) bool { return s.Support == nil || s.Support(x) }

	if !s.haveState {
		s.state = s.Start
		sigma := mhSigmaInitial
		accepted, tried := 0, 0
		for i := 0; i < mhBurnIn; i++ {
			cand := s.state + sigma*gaussian(rng)
			tried++
			if inSupport(cand) && accept(rng, s.PDF, s.state, cand) {
				s.state = cand
				accepted++
			}
			if tried == 100 {
				rejRate := 1 - float64(accepted)/float64(tried)
				if rejRate < 0.70 {
					sigma *= 10
				} else if rejRate > 0.80 {
					sigma /= 10
				}
				accepted, tried = 0, 0
			}
		}
		s.haveState = true
		s.mhSigma = sigma
	}
	for i := 0; i < mhThinning; i++ {
		cand := s.state + s.mhSigma*gaussian(rng)
		if inSupport(cand) && accept(rng, s.PDF, s.state, cand) {
			s.state = cand
		}
	}
	return s.state, nil
}

func accept(rng *rand.Rand, pdf PDF, last, cand float64) bool {
	pLast := pdf(last)
	if pLast <= 0 {
		return true
	}
	ratio := pdf(cand) / pLast
	if ratio >= 1 {
		return true
	}
	return rng.Float64() < ratio
}

// gaussian draws a standard normal via Box-Muller.
func gaussian(rng *rand.Rand) float64 {
	u1, u2 := rng.Float64(), rng.Float64()
	for u1 == 0 {
		u1 = rng.Float64()
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Empirical inverts a piecewise-constant CDF built from histogram bins.
type Empirical struct {
	// CDFBins[i] is the cumulative probability at the right edge of bin i;
	// bins are equal-width over [Lower, Upper] and CDFBins must be
	// non-decreasing and end at (approximately) 1.
	CDFBins []float64
	Lower   float64
	Upper   float64
}

func (s Empirical) Sample(rng *rand.Rand) (float64, error) {
	if len(s.CDFBins) == 0 {
		return 0, errs.NewDomainError("empirical sampler requires at least one CDF bin")
	}
	u := rng.Float64()
	binWidth := (s.Upper - s.Lower) / float64(len(s.CDFBins))
	idx := 0
	for idx < len(s.CDFBins) && s.CDFBins[idx] < u {
		idx++
	}
	if idx >= len(s.CDFBins) {
		idx = len(s.CDFBins) - 1
	}
	lo := s.Lower + float64(idx)*binWidth
	prevCum := 0.0
	if idx > 0 {
		prevCum = s.CDFBins[idx-1]
	}
	cum := s.CDFBins[idx]
	if cum == prevCum {
		return lo, nil
	}
	frac := (u - prevCum) / (cum - prevCum)
	return lo + frac*binWidth, nil
}

// Piece is one (mass, Sampler) arm of a Partitioned sampler.
type Piece struct {
	Mass    float64
	Sampler Sampler
}

// Partitioned samples a piece by probability mass, then delegates to it.
type Partitioned struct {
	Pieces []Piece
}

const partitionMassEpsilon = 1e-6

func (s Partitioned) Sample(rng *rand.Rand) (float64, error) {
	sum := 0.0
	for _, p := range s.Pieces {
		sum += p.Mass
	}
	if math.Abs(sum-1) > partitionMassEpsilon {
		return 0, errs.InvalidPartitionError(sum)
	}
	u := rng.Float64()
	acc := 0.0
	for _, p := range s.Pieces {
		acc += p.Mass
		if u <= acc {
			return p.Sampler.Sample(rng)
		}
	}
	return s.Pieces[len(s.Pieces)-1].Sampler.Sample(rng)
}

// Pseudo cycles through a fixed sample list starting at a random offset.
type Pseudo struct {
	Sequence []float64
	offset   int
	started  bool
	idx      int
}

// NewPseudoFromFile reads a single-column CSV of sample values from path
// eagerly, closing the file before returning (spec.md §5: "Samplers hold no
// file handles except PseudoSampler(filename), which reads eagerly and
// closes before returning"), and returns a Pseudo cycling through them.
func NewPseudoFromFile(path string) (*Pseudo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIoError(path, err)
	}
	defer f.Close()

	var sequence []float64
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.NewIoError(path, err)
		}
		if len(record) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, errs.NewIoError(path, err)
		}
		sequence = append(sequence, v)
	}
	if len(sequence) == 0 {
		return nil, errs.NewIoError(path, errs.NewDomainError("file contains no sample values"))
	}
	return &Pseudo{Sequence: sequence}, nil
}

func (s *Pseudo) Sample(rng *rand.Rand) (float64, error) {
	if len(s.Sequence) == 0 {
		return 0, errs.NewDomainError("pseudo sampler requires a non-empty sequence")
	}
	if !s.started {
		s.offset = rng.Intn(len(s.Sequence))
		s.idx = 0
		s.started = true
	}
	v := s.Sequence[(s.offset+s.idx)%len(s.Sequence)]
	s.idx++
	return v, nil
}
