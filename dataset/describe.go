package dataset

import (
	"github.com/montanaflynn/stats"
)

// Summary holds descriptive statistics for one numeric column. Missing
// observations are excluded before computation; N counts the observed values.
type Summary struct {
	Column  string  `json:"column"`
	N       int     `json:"n"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Q25     float64 `json:"q25"`
	Median  float64 `json:"median"`
	Q75     float64 `json:"q75"`
	Max     float64 `json:"max"`
}

// DescribeColumn computes a Summary for a numeric column. Columns with no
// observed values report zero statistics.
func DescribeColumn(c *Column) Summary {
	s := Summary{Column: c.Name()}

	var observed []float64
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			s.Missing++
			continue
		}
		observed = append(observed, c.Float(i))
	}
	s.N = len(observed)
	if s.N == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(observed)
	s.StdDev, _ = stats.StandardDeviation(observed)
	s.Min, _ = stats.Min(observed)
	s.Max, _ = stats.Max(observed)
	s.Median, _ = stats.Median(observed)
	s.Q25, _ = stats.Percentile(observed, 25)
	s.Q75, _ = stats.Percentile(observed, 75)

	return s
}

// Describe summarizes every numeric column of the dataset in declaration
// order.
func Describe(d *Dataset) []Summary {
	var out []Summary
	for _, name := range d.ColumnNames() {
		col, _ := d.Column(name)
		if col.Kind() != Numeric {
			continue
		}
		out = append(out, DescribeColumn(col))
	}
	return out
}
