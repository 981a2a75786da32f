package sampler

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func newRNG() *rand.Rand { return rand.New(rand.NewSource(1)) }

func TestShiftedExponentialNonNegative(t *testing.T) {
	s := ShiftedExponential{Rate: 1.0, Shift: 2.0}
	rng := newRNG()
	for i := 0; i < 1000; i++ {
		v, err := s.Sample(rng)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		if v < 2.0 {
			t.Fatalf("sample %v below shift 2.0", v)
		}
	}
}

func TestTruncatedExponentialRespectsLimit(t *testing.T) {
	s := TruncatedExponential{Rate: 0.1, Shift: 0, Limit: 5}
	rng := newRNG()
	for i := 0; i < 1000; i++ {
		v, err := s.Sample(rng)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		if v > 5 {
			t.Fatalf("sample %v exceeds limit 5", v)
		}
	}
}

func TestErlangMeanApproachesShapeOverRate(t *testing.T) {
	s := Erlang{Rate: 2.0, Shape: 3}
	rng := newRNG()
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		v, err := s.Sample(rng)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		sum += v
	}
	mean := sum / n
	want := float64(s.Shape) / s.Rate
	if math.Abs(mean-want) > 0.05 {
		t.Fatalf("mean %v, want ~%v", mean, want)
	}
}

func TestUniformDegenerate(t *testing.T) {
	s := Uniform{Min: 3, Max: 3}
	v, err := s.Sample(newRNG())
	if err != nil || v != 3 {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestUniformRange(t *testing.T) {
	s := Uniform{Min: 1, Max: 2}
	rng := newRNG()
	for i := 0; i < 1000; i++ {
		v, _ := s.Sample(rng)
		if v < 1 || v > 2 {
			t.Fatalf("sample %v out of [1,2]", v)
		}
	}
}

func TestPartitionedInvalidMass(t *testing.T) {
	s := Partitioned{Pieces: []Piece{{Mass: 0.4, Sampler: Uniform{Min: 0, Max: 1}}}}
	if _, err := s.Sample(newRNG()); err == nil {
		t.Fatal("expected InvalidPartitionError")
	}
}

func TestPartitionedDelegates(t *testing.T) {
	s := Partitioned{Pieces: []Piece{
		{Mass: 1.0, Sampler: Uniform{Min: 10, Max: 10}},
	}}
	v, err := s.Sample(newRNG())
	if err != nil || v != 10 {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestPseudoCyclesFromRandomOffset(t *testing.T) {
	s := &Pseudo{Sequence: []float64{1, 2, 3}}
	rng := newRNG()
	v1, _ := s.Sample(rng)
	v2, _ := s.Sample(rng)
	v3, _ := s.Sample(rng)
	v4, _ := s.Sample(rng)
	if v4 != v1 {
		t.Fatalf("expected cycle of length 3, got %v %v %v %v", v1, v2, v3, v4)
	}
}

func TestNewPseudoFromFileReadsSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	if err := os.WriteFile(path, []byte("1.5\n2.5\n3.5\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := NewPseudoFromFile(path)
	if err != nil {
		t.Fatalf("NewPseudoFromFile: %v", err)
	}
	if len(s.Sequence) != 3 || s.Sequence[0] != 1.5 || s.Sequence[2] != 3.5 {
		t.Fatalf("got sequence %v", s.Sequence)
	}
}

func TestNewPseudoFromFileMissingFile(t *testing.T) {
	if _, err := NewPseudoFromFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected an IoError for a missing file")
	}
}

func TestNewPseudoFromFileRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := NewPseudoFromFile(path); err == nil {
		t.Fatal("expected an IoError for an empty file")
	}
}

func TestEmpiricalWithinBounds(t *testing.T) {
	s := Empirical{CDFBins: []float64{0.2, 0.6, 1.0}, Lower: 0, Upper: 30}
	rng := newRNG()
	for i := 0; i < 1000; i++ {
		v, err := s.Sample(rng)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		if v < 0 || v > 30 {
			t.Fatalf("sample %v out of bounds", v)
		}
	}
}

func TestMetropolisHastingsStandardNormalMean(t *testing.T) {
	pdf := func(x float64) float64 { return math.Exp(-x * x / 2) }
	s := &MetropolisHastings{PDF: pdf}
	rng := newRNG()
	sum := 0.0
	const n = 2000
	for i := 0; i < n; i++ {
		v, err := s.Sample(rng)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		sum += v
	}
	mean := sum / n
	if math.Abs(mean) > 0.5 {
		t.Fatalf("mean %v too far from 0", mean)
	}
}
