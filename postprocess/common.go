package postprocess

import (
	"math"
	"sort"
)

// NMS implements a class aware Non-Maximum Suppression (NMS) over detection
// results.  Results are visited in order of decreasing probability, equal
// probabilities keeping their input order, and any result of the same class
// overlapping a kept result by more than threshold is discarded.
func NMS(results []DetectResult, threshold float32) []DetectResult {

	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].Probability > results[order[b]].Probability
	})

	suppressed := make([]bool, len(results))
	keep := make([]DetectResult, 0, len(results))

	for i, n := range order {

		if suppressed[n] {
			continue
		}

		keep = append(keep, results[n])

		for _, m := range order[i+1:] {

			if suppressed[m] || results[m].Class != results[n].Class {
				continue
			}

			if boxOverlap(results[n].Box, results[m].Box) > threshold {
				suppressed[m] = true
			}
		}
	}

	return keep
}

// boxOverlap works out the Intersection of Union (IoU) value of two
// pixel boxes
func boxOverlap(a, b BoxRect) float32 {
	return calculateOverlap(
		float32(a.Left), float32(a.Top), float32(a.Right), float32(a.Bottom),
		float32(b.Left), float32(b.Top), float32(b.Right), float32(b.Bottom),
	)
}

// calculateOverlap works out the Intersection of Union (IoU) value of two
// boxes dimensions
func calculateOverlap(xmin0, ymin0, xmax0, ymax0, xmin1, ymin1,
	xmax1, ymax1 float32) float32 {

	w := math.Max(0.0, math.Min(float64(xmax0), float64(xmax1))-math.Max(float64(xmin0), float64(xmin1))+1.0)
	h := math.Max(0.0, math.Min(float64(ymax0), float64(ymax1))-math.Max(float64(ymin0), float64(ymin1))+1.0)
	intersection := w * h

	// Calculate the area of both rectangles with added 1.0 for inclusive pixel calculation
	area0 := (xmax0 - xmin0 + 1) * (ymax0 - ymin0 + 1)
	area1 := (xmax1 - xmin1 + 1) * (ymax1 - ymin1 + 1)

	// Calculate union
	union := area0 + area1 - float32(intersection)

	if union <= 0 {
		return 0.0
	}

	// Return Intersection of Union (IoU)
	return float32(intersection) / union
}
