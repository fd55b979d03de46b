// bench.go runs repeated BB84 simulation trials for each entry in the
// cartesian product of a collection of tuning parameters, e.g. transmitted
// bit count and eavesdropper presence, and outputs a CSV of summary
// statistics for each combination.
package main

import (
	"fmt"
	"log"
	"os"
	"text/template"

	flag "github.com/spf13/pflag"

	"github.com/qkdlab/bb84sim/analysis"
	"github.com/qkdlab/bb84sim/bb84"
)

var (
	bitCounts = flag.IntSlice("bits", []int{100, 500, 1000},
		"The numbers of qubits to transmit per protocol run.")
	eves = flag.BoolSlice("eve", []bool{false, true},
		"Whether to place an intercept-resend eavesdropper on the channel.")
	trials = flag.Int("trials", 100,
		"The number of independent runs per scenario.")
	seed = flag.Int64("seed", 42,
		"The base randomness seed; trial i of a scenario draws from seed+i.")
	errorCorrection = flag.Bool("error-correction", true,
		"Whether to run block-parity error correction.")
	privacyAmplification = flag.Bool("privacy-amplification", true,
		"Whether to run hash-based privacy amplification.")
)

const (
	header   = "Bits, Eve, Trials, QBERMean, QBERStd, SiftedMean, FinalKeyMean, KeyRateMean, SecurityRate"
	lineTmpl = "{{.Bits}}, {{.Eve}}, {{.Trials}}, {{printf \"%.4f\" .QBERMean}}, " +
		"{{printf \"%.4f\" .QBERStd}}, {{printf \"%.1f\" .SiftedMean}}, " +
		"{{printf \"%.1f\" .FinalKeyMean}}, {{printf \"%.4f\" .KeyRateMean}}, " +
		"{{printf \"%.3f\" .SecurityRate}}\n"
)

// A Row packages together one scenario's summary for easy formatting.
type Row struct {
	Bits         int
	Eve          bool
	Trials       int
	QBERMean     float64
	QBERStd      float64
	SiftedMean   float64
	FinalKeyMean float64
	KeyRateMean  float64
	SecurityRate float64
}

func main() {
	flag.Parse()
	fmt.Println(header)
	tmpl := template.Must(template.New("line").Parse(lineTmpl))
	for _, bits := range *bitCounts {
		for _, eve := range *eves {
			cfg := bb84.Config{
				BitCount:             bits,
				Eavesdropper:         eve,
				EveStrategy:          bb84.InterceptResend,
				ErrorCorrection:      *errorCorrection,
				PrivacyAmplification: *privacyAmplification,
			}
			results, err := analysis.RunTrials(cfg, *trials, *seed)
			if err != nil {
				log.Fatalf("Running %d-bit trials (eve: %v): %v", bits, eve, err)
			}
			s := analysis.Aggregate(results)
			row := Row{
				Bits:         bits,
				Eve:          eve,
				Trials:       s.Trials,
				QBERMean:     s.QBERMean,
				QBERStd:      s.QBERStd,
				SiftedMean:   s.SiftedLengthMean,
				FinalKeyMean: s.FinalKeyLengthMean,
				KeyRateMean:  s.KeyRateMean,
				SecurityRate: s.SecurityRate,
			}
			if err := tmpl.Execute(os.Stdout, row); err != nil {
				log.Fatalf("BUG: could not fill in line template: %v", err)
			}
		}
	}
}
