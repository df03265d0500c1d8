package tracker

import (
	"errors"
	"fmt"
	"math"
)

const (
	large = 1000000.0
)

var (
	// ErrNonSquare is returned when a non square cost matrix is given to
	// LAPJV without cost extension
	ErrNonSquare = errors.New("cost matrix is not square and extendCost is false")
	// ErrRaggedCost is returned when the rows of a cost matrix differ in length
	ErrRaggedCost = errors.New("cost matrix rows have different lengths")
	// ErrSolverFailed is returned when the augmentation phase could not find
	// a valid augmenting path
	ErrSolverFailed = errors.New("lapjv failed to find augmenting path")
)

// Assignment is the solution of a linear assignment problem
type Assignment struct {
	// RowSol holds the column assigned to each row or -1 if unassigned
	RowSol []int
	// ColSol holds the row assigned to each column or -1 if unassigned
	ColSol []int
	// Cost is the summed cost of all assigned row/column pairs
	Cost float64
}

// LAPJV solves the rectangular minimum cost assignment problem for the given
// cost matrix using the Jonker-Volgenant algorithm.
//
// When extendCost is set the matrix is padded to a square of size
// rows+cols.  If costLimit is below math.MaxFloat32 the padding cells hold
// costLimit/2 so a real pair is only preferred over leaving both sides
// unassigned when its cost is below costLimit, otherwise the padding holds
// the maximum cost plus one.  Padded cells are never reported as matches.
func LAPJV(cost [][]float32, extendCost bool,
	costLimit float32) (Assignment, error) {

	nRows := len(cost)

	if nRows == 0 {
		return Assignment{}, nil
	}

	nCols := len(cost[0])

	for _, row := range cost {
		if len(row) != nCols {
			return Assignment{}, ErrRaggedCost
		}
	}

	res := Assignment{
		RowSol: make([]int, nRows),
		ColSol: make([]int, nCols),
	}

	if nCols == 0 {
		for i := range res.RowSol {
			res.RowSol[i] = -1
		}
		return res, nil
	}

	if nRows != nCols && !extendCost {
		return Assignment{}, ErrNonSquare
	}

	limited := costLimit < float32(math.MaxFloat32)
	n := nRows
	var buf []float64

	if extendCost || limited {
		n = nRows + nCols
		buf = make([]float64, n*n)

		var fill float64

		if limited {
			fill = float64(costLimit / 2.0)
		} else {
			costMax := float32(-1)
			for _, row := range cost {
				for _, c := range row {
					if c > costMax {
						costMax = c
					}
				}
			}
			fill = float64(costMax + 1)
		}

		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				switch {
				case i < nRows && j < nCols:
					buf[i*n+j] = float64(cost[i][j])
				case i >= nRows && j >= nCols:
					buf[i*n+j] = 0
				default:
					buf[i*n+j] = fill
				}
			}
		}

	} else {
		buf = make([]float64, n*n)
		for i, row := range cost {
			for j, c := range row {
				buf[i*n+j] = float64(c)
			}
		}
	}

	x := make([]int, n)
	y := make([]int, n)

	if err := lapjvInternal(n, buf, x, y); err != nil {
		return Assignment{}, fmt.Errorf("lapjvInternal failed on %dx%d matrix: %w", nRows, nCols, err)
	}

	for i := 0; i < nRows; i++ {
		if x[i] >= nCols {
			res.RowSol[i] = -1
			continue
		}
		res.RowSol[i] = x[i]
		res.Cost += buf[i*n+x[i]]
	}

	for j := 0; j < nCols; j++ {
		if y[j] >= nRows {
			res.ColSol[j] = -1
			continue
		}
		res.ColSol[j] = y[j]
	}

	return res, nil
}

// lapjvInternal solves the dense square n x n assignment problem held in
// cost (row major, cost[i*n+j]).  On return x[i] is the column of row i and
// y[j] the row of column j.
func lapjvInternal(n int, cost []float64, x, y []int) error {

	freeRows := make([]int, n)
	v := make([]float64, n)

	ret := ccrrtDense(n, cost, freeRows, x, y, v)

	i := 0

	for ret > 0 && i < 2 {
		ret = carrDense(n, cost, ret, freeRows, x, y, v)
		i++
	}

	if ret > 0 {
		return caDense(n, cost, ret, freeRows, x, y, v)
	}

	return nil
}

// ccrrtDense performs column-reduction and reduction transfer for a dense cost matrix
func ccrrtDense(n int, cost []float64, freeRows, x, y []int, v []float64) int {

	unique := make([]bool, n)

	for i := 0; i < n; i++ {
		x[i] = -1
		v[i] = large
		y[i] = 0
	}

	for i := 0; i < n; i++ {
		row := cost[i*n : (i+1)*n]
		for j, c := range row {
			if c < v[j] {
				v[j] = c
				y[j] = i
			}
		}
	}

	for i := 0; i < n; i++ {
		unique[i] = true
	}

	j := n

	for j > 0 {
		j--
		i := y[j]
		if x[i] < 0 {
			x[i] = j
		} else {
			unique[i] = false
			y[j] = -1
		}
	}

	nFreeRows := 0

	for i := 0; i < n; i++ {

		if x[i] < 0 {
			freeRows[nFreeRows] = i
			nFreeRows++

		} else if unique[i] {

			j := x[i]
			minVal := large

			for j2 := 0; j2 < n; j2++ {
				if j2 == j {
					continue
				}

				c := cost[i*n+j2] - v[j2]

				if c < minVal {
					minVal = c
				}
			}

			v[j] -= minVal
		}
	}

	return nFreeRows
}

// carrDense performs augmenting row reduction for a dense cost matrix
func carrDense(n int, cost []float64, nFreeRows int, freeRows,
	x, y []int, v []float64) int {

	current := 0
	newFreeRows := 0
	rrCnt := 0

	for current < nFreeRows {

		rrCnt++
		freeI := freeRows[current]
		current++

		row := cost[freeI*n : (freeI+1)*n]

		j1 := 0
		v1 := row[0] - v[0]
		j2 := -1
		v2 := large

		for j := 1; j < n; j++ {
			c := row[j] - v[j]
			if c < v2 {
				if c >= v1 {
					v2 = c
					j2 = j
				} else {
					v2 = v1
					v1 = c
					j2 = j1
					j1 = j
				}
			}
		}

		i0 := y[j1]
		v1New := v[j1] - (v2 - v1)
		v1Lowers := v1New < v[j1]

		if rrCnt < current*n {
			if v1Lowers {
				v[j1] = v1New
			} else if i0 >= 0 && j2 >= 0 {
				j1 = j2
				i0 = y[j2]
			}

			if i0 >= 0 {
				if v1Lowers {
					current--
					freeRows[current] = i0
				} else {
					freeRows[newFreeRows] = i0
					newFreeRows++
				}
			}
		} else {
			if i0 >= 0 {
				freeRows[newFreeRows] = i0
				newFreeRows++
			}
		}

		x[freeI] = j1
		y[j1] = freeI
	}

	return newFreeRows
}

// findDense finds columns with minimum d[j] and put them on the SCAN list
func findDense(n int, lo int, d []float64, cols []int) int {

	hi := lo + 1
	mind := d[cols[lo]]

	for k := hi; k < n; k++ {

		j := cols[k]

		if d[j] <= mind {
			if d[j] < mind {
				hi = lo
				mind = d[j]
			}

			cols[k] = cols[hi]
			cols[hi] = j
			hi++
		}
	}

	return hi
}

// scanDense scans all columns in TODO starting from arbitrary column in SCAN
// and try to decrease d of the TODO columns using the SCAN column
func scanDense(n int, cost []float64, lo, hi *int, d []float64,
	cols, pred, y []int, v []float64) int {

	for *lo != *hi {

		j := cols[*lo]
		*lo++
		i := y[j]
		mind := d[j]
		h := cost[i*n+j] - v[j] - mind

		for k := *hi; k < n; k++ {
			j = cols[k]
			credIJ := cost[i*n+j] - v[j] - h

			if credIJ < d[j] {
				d[j] = credIJ
				pred[j] = i

				if credIJ == mind {
					if y[j] < 0 {
						return j
					}

					cols[k] = cols[*hi]
					cols[*hi] = j
					(*hi)++
				}
			}
		}
	}

	return -1
}

// findPathDense performs a single iteration of modified Dijkstra shortest path
// algorithm as explained in the JV paper.  This is a dense matrix version.
func findPathDense(n int, cost []float64, startI int, y []int, v []float64,
	pred []int) int {

	lo := 0
	hi := 0
	finalJ := -1
	nReady := 0
	cols := make([]int, n)
	d := make([]float64, n)

	for i := 0; i < n; i++ {
		cols[i] = i
		pred[i] = startI
		d[i] = cost[startI*n+i] - v[i]
	}

	for finalJ == -1 {
		// No columns left on the SCAN list
		if lo == hi {
			nReady = lo
			hi = findDense(n, lo, d, cols)

			for k := lo; k < hi; k++ {
				j := cols[k]

				if y[j] < 0 {
					finalJ = j
				}
			}
		}

		if finalJ == -1 {
			finalJ = scanDense(n, cost, &lo, &hi, d, cols, pred, y, v)
		}
	}

	mind := d[cols[lo]]

	for k := 0; k < nReady; k++ {
		j := cols[k]
		v[j] += d[j] - mind
	}

	return finalJ
}

// caDense performs augmenting for a dense cost matrix
func caDense(n int, cost []float64, nFreeRows int, freeRows,
	x, y []int, v []float64) error {

	pred := make([]int, n)

	for _, freeI := range freeRows[:nFreeRows] {

		i := -1
		k := 0

		j := findPathDense(n, cost, freeI, y, v, pred)

		if j < 0 || j >= n {
			return fmt.Errorf("%w: column %d out of range", ErrSolverFailed, j)
		}

		for i != freeI {

			i = pred[j]
			y[j] = i
			j, x[i] = x[i], j
			k++

			if k > n {
				return fmt.Errorf("%w: path longer than %d", ErrSolverFailed, n)
			}
		}
	}

	return nil
}
