// Package stats provides running summary statistics and normal-distribution
// fitting for sampled stream values. It is self-contained: nothing in the
// graph builder depends on it.
package stats

import (
	"fmt"
	"math"
)

// Summary accumulates count, mean and variance of a sequence of observations
// incrementally, without retaining them
type Summary struct {
	n    int64
	mean float64
	m2   float64
}

// Add folds a single observation into this Summary
func (s *Summary) Add(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

// N returns the number of observations folded so far
func (s *Summary) N() int64 {
	return s.n
}

// Mean returns the running mean of the observations
func (s *Summary) Mean() float64 {
	return s.mean
}

// Variance returns the running sample variance of the observations
func (s *Summary) Variance() float64 {
	if s.n < 2 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

// StdDev returns the running sample standard deviation of the observations
func (s *Summary) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// Merge folds another Summary into this one
func (s *Summary) Merge(o *Summary) {
	if o.n == 0 {
		return
	}
	if s.n == 0 {
		*s = *o
		return
	}
	n := s.n + o.n
	delta := o.mean - s.mean
	mean := s.mean + delta*float64(o.n)/float64(n)
	m2 := s.m2 + o.m2 + delta*delta*float64(s.n)*float64(o.n)/float64(n)
	s.n, s.mean, s.m2 = n, mean, m2
}

// NormalDistribution is a normal distribution parameterized by mean and
// standard deviation
type NormalDistribution struct {
	Mean   float64
	StdDev float64
}

// PDF returns the probability density of this distribution at x
func (d NormalDistribution) PDF(x float64) float64 {
	if d.StdDev == 0 {
		return 0
	}
	z := (x - d.Mean) / d.StdDev
	return math.Exp(-0.5*z*z) / (d.StdDev * math.Sqrt(2*math.Pi))
}

// CDF returns the cumulative probability of this distribution at x
func (d NormalDistribution) CDF(x float64) float64 {
	if d.StdDev == 0 {
		if x < d.Mean {
			return 0
		}
		return 1
	}
	return 0.5 * (1 + math.Erf((x-d.Mean)/(d.StdDev*math.Sqrt2)))
}

// String returns a textual representation of this distribution
func (d NormalDistribution) String() string {
	return fmt.Sprintf("N(%g, %g)", d.Mean, d.StdDev)
}

// FitNormal fits a normal distribution to the observations folded into a Summary
func FitNormal(s *Summary) NormalDistribution {
	return NormalDistribution{Mean: s.Mean(), StdDev: s.StdDev()}
}

// DistributionOrigin tags a Comparison with the side that produced its distribution
type DistributionOrigin int

const (
	// RealDistribution marks a distribution supplied as ground truth
	RealDistribution DistributionOrigin = iota + 1
	// EmpiricalDistribution marks a distribution fitted to a stream sample
	EmpiricalDistribution
)

// Comparison pairs a distribution with its origin, mirroring the tagged output
// of the stream evaluator that consumes samples on one input and reference
// distributions on the other
type Comparison struct {
	Distribution NormalDistribution
	Origin       DistributionOrigin
}

// CompareSample fits a normal distribution to a sample and tags it empirical
func CompareSample(sample *Summary) Comparison {
	return Comparison{Distribution: FitNormal(sample), Origin: EmpiricalDistribution}
}

// CompareReference tags a ground-truth distribution for comparison
func CompareReference(d NormalDistribution) Comparison {
	return Comparison{Distribution: d, Origin: RealDistribution}
}
