package resp

import (
	"math"
	"strconv"
)

// Shared Double sentinels: RESP3 doubles spell infinities and NaN as
// ASCII tokens on the wire rather than using a binary float format.
var (
	posInf = math.Inf(1)
	negInf = math.Inf(-1)
	nanVal = math.NaN()
)

func formatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
