// Package telemetry accumulates per-step simulation statistics for
// post-run analysis and CSV export.
package telemetry

import (
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"bartergrid/internal/sim/world"
)

// Row is one step's worth of telemetry.
type Row struct {
	Tick         uint64  `csv:"tick"`
	Trades       int     `csv:"trades"`
	Collections  int     `csv:"collections"`
	Deposits     int     `csv:"deposits"`
	Withdrawals  int     `csv:"withdrawals"`
	Pairings     int     `csv:"pairings"`
	Unpairings   int     `csv:"unpairings"`
	Resources    int     `csv:"resources"`
	MeanUtility  float64 `csv:"mean_utility"`
	StdevUtility float64 `csv:"stdev_utility"`
	Gini         float64 `csv:"gini"`
}

type Collector struct {
	rows []Row
}

func NewCollector() *Collector {
	return &Collector{}
}

// Observe folds one step report plus the post-step population into a row.
// Utility statistics are computed on total (carrying+home) bundles.
func (c *Collector) Observe(report world.StepReport, agents []world.Agent, resources int) {
	utils := make([]float64, 0, len(agents))
	for _, a := range agents {
		utils = append(utils, a.Util.Value(a.Total()))
	}

	row := Row{
		Tick:        report.Tick,
		Trades:      report.Trades,
		Collections: report.Collections,
		Deposits:    report.Deposits,
		Withdrawals: report.Withdrawals,
		Pairings:    report.Pairings,
		Unpairings:  report.Unpairings,
		Resources:   resources,
	}
	if len(utils) > 0 {
		row.MeanUtility = stat.Mean(utils, nil)
		if len(utils) > 1 {
			row.StdevUtility = stat.StdDev(utils, nil)
		}
		row.Gini = Gini(utils)
	}
	c.rows = append(c.rows, row)
}

func (c *Collector) Rows() []Row {
	return c.rows
}

// WriteCSV dumps all collected rows with a header line.
func (c *Collector) WriteCSV(w io.Writer) error {
	return gocsv.Marshal(&c.rows, w)
}

// Gini computes the Gini coefficient of a non-negative sample:
// 0 for perfect equality, approaching 1 for maximal inequality.
func Gini(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}
	n := float64(len(sorted))
	return (2*weighted)/(n*sum) - (n+1)/n
}
