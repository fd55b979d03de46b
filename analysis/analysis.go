// Package analysis aggregates statistics over repeated, independent BB84
// protocol runs. It consumes the engine's result records only; no protocol
// logic lives here.
package analysis

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/qkdlab/bb84sim/bb84"
)

// RunTrials executes trials independent protocol runs of cfg and returns the
// per-run results in trial order. Trial i draws its randomness from seed+i,
// so runs are reproducible and safely executed in parallel; cfg.Rand is
// ignored. Runs are fanned out over a worker pool bounded by GOMAXPROCS.
func RunTrials(cfg bb84.Config, trials int, seed int64) ([]bb84.Result, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("trial count must be positive, got %d", trials)
	}
	results := make([]bb84.Result, trials)
	errs := make([]error, trials)
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i := 0; i < trials; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			c := cfg
			c.Rand = rand.New(rand.NewSource(seed + int64(i)))
			results[i], errs[i] = bb84.Run(c)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// A Summary condenses a batch of protocol runs into the headline metrics of
// the reference analysis: error-rate distribution, key-rate performance and
// the fraction of runs that produced a secure key.
type Summary struct {
	Trials int

	QBERMean   float64
	QBERStd    float64
	QBERMedian float64
	QBERMin    float64
	QBERMax    float64

	KeyRateMean float64
	KeyRateStd  float64

	SiftedLengthMean   float64
	FinalKeyLengthMean float64
	SecurityRate       float64
}

// Aggregate summarizes a batch of results. An empty batch yields a zero
// Summary.
func Aggregate(results []bb84.Result) Summary {
	if len(results) == 0 {
		return Summary{}
	}
	qbers := make([]float64, len(results))
	rates := make([]float64, len(results))
	sifted := make([]float64, len(results))
	finals := make([]float64, len(results))
	secure := 0
	for i, r := range results {
		qbers[i] = r.QBERAfterSifting
		rates[i] = r.OverallKeyRate
		sifted[i] = float64(r.SiftedKeyLength)
		finals[i] = float64(r.FinalKeyLength)
		if r.Secure {
			secure++
		}
	}
	sorted := append([]float64(nil), qbers...)
	sort.Float64s(sorted)

	return Summary{
		Trials:             len(results),
		QBERMean:           stat.Mean(qbers, nil),
		QBERStd:            stat.StdDev(qbers, nil),
		QBERMedian:         stat.Quantile(0.5, stat.Empirical, sorted, nil),
		QBERMin:            floats.Min(sorted),
		QBERMax:            floats.Max(sorted),
		KeyRateMean:        stat.Mean(rates, nil),
		KeyRateStd:         stat.StdDev(rates, nil),
		SiftedLengthMean:   stat.Mean(sifted, nil),
		FinalKeyLengthMean: stat.Mean(finals, nil),
		SecurityRate:       float64(secure) / float64(len(results)),
	}
}

// An Interval is a two-sided confidence interval.
type Interval struct {
	Low, High float64
}

// A Comparison reports how two metric samples differ: Welch's t-test on the
// means, Cohen's d for effect size, and per-sample 95% confidence intervals.
type Comparison struct {
	TStat       float64
	PValue      float64
	Significant bool

	CohensD float64
	Effect  string

	CI95A Interval
	CI95B Interval
}

// Compare runs Welch's t-test between samples a and b (positive TStat means b
// has the larger mean). Both samples need at least two observations;
// degenerate inputs yield a zero Comparison. Zero-variance samples report an
// infinite statistic, mirroring the reference analysis.
func Compare(a, b []float64) Comparison {
	if len(a) < 2 || len(b) < 2 {
		return Comparison{}
	}
	meanA, stdA := stat.MeanStdDev(a, nil)
	meanB, stdB := stat.MeanStdDev(b, nil)
	na, nb := float64(len(a)), float64(len(b))
	varA, varB := stdA*stdA, stdB*stdB

	cmp := Comparison{
		CI95A: confidenceInterval(meanA, stdA, len(a)),
		CI95B: confidenceInterval(meanB, stdB, len(b)),
	}

	se := math.Sqrt(varA/na + varB/nb)
	if se == 0 {
		cmp.TStat = math.Inf(sign(meanB - meanA))
		cmp.PValue = 0
		cmp.Significant = meanA != meanB
	} else {
		cmp.TStat = (meanB - meanA) / se
		// Welch–Satterthwaite degrees of freedom.
		df := math.Pow(varA/na+varB/nb, 2) /
			(math.Pow(varA/na, 2)/(na-1) + math.Pow(varB/nb, 2)/(nb-1))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		cmp.PValue = 2 * dist.CDF(-math.Abs(cmp.TStat))
		cmp.Significant = cmp.PValue < 0.05
	}

	pooled := math.Sqrt(((na-1)*varA + (nb-1)*varB) / (na + nb - 2))
	if pooled == 0 {
		cmp.CohensD = math.Inf(sign(meanB - meanA))
	} else {
		cmp.CohensD = (meanB - meanA) / pooled
	}
	cmp.Effect = effectSize(cmp.CohensD)
	return cmp
}

func confidenceInterval(mean, std float64, n int) Interval {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	margin := dist.Quantile(0.975) * std / math.Sqrt(float64(n))
	return Interval{Low: mean - margin, High: mean + margin}
}

func effectSize(d float64) string {
	switch ad := math.Abs(d); {
	case ad < 0.2:
		return "negligible"
	case ad < 0.5:
		return "small"
	case ad < 0.8:
		return "medium"
	default:
		return "large"
	}
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}
