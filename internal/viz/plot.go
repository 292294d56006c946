package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// ErrorCurve renders log10 of the far-field relative error against
// probe distance as an ascii plot. Errors at or below machine epsilon
// are clamped so the log stays finite.
func ErrorCurve(relErrors []float64, caption string) string {
	data := make([]float64, len(relErrors))
	for i, e := range relErrors {
		if e < 1e-16 {
			e = 1e-16
		}
		data[i] = math.Log10(e)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}
