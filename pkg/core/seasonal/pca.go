package seasonal

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// principalComponent standardizes each column of rows to zero mean and
// unit population variance, then projects every row onto the first
// principal component. Constant columns keep their centered values
// (divisor forced to one). Fewer than two rows yields empty results.
func principalComponent(rows [][]float64) PCAResult {
	empty := PCAResult{Projections: []float64{}, Coefficients: []float64{}}
	if len(rows) < 2 {
		return empty
	}
	cols := len(rows[0])
	if cols == 0 {
		return empty
	}
	for _, row := range rows {
		if len(row) != cols {
			return empty
		}
	}
	n := len(rows)

	standardized := standardizeColumns(rows)
	m := mat.NewDense(n, cols, nil)
	for i, row := range standardized {
		m.SetRow(i, row)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(m, nil); !ok {
		return empty
	}
	var vectors mat.Dense
	pc.VectorsTo(&vectors)

	projections := make([]float64, n)
	for i := 0; i < n; i++ {
		var dot float64
		for j := 0; j < cols; j++ {
			dot += standardized[i][j] * vectors.At(j, 0)
		}
		projections[i] = dot
	}

	var sumAbs float64
	for _, p := range projections {
		sumAbs += math.Abs(p)
	}
	coefficients := make([]float64, n)
	if sumAbs != 0 {
		for i, p := range projections {
			coefficients[i] = p / sumAbs
		}
	}

	return PCAResult{Projections: projections, Coefficients: coefficients}
}

func standardizeColumns(rows [][]float64) [][]float64 {
	n := len(rows)
	cols := len(rows[0])
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, cols)
	}

	col := make([]float64, n)
	for j := 0; j < cols; j++ {
		for i := 0; i < n; i++ {
			col[i] = rows[i][j]
		}
		m := stat.Mean(col, nil)
		sd := stat.PopStdDev(col, nil)
		if sd == 0 {
			sd = 1
		}
		for i := 0; i < n; i++ {
			out[i][j] = (col[i] - m) / sd
		}
	}
	return out
}
