// Package arc interpolates arc positions along their curves.
package arc

import (
	"math"
	"strings"
)

// CurveKind is the easing of an arc between its start and end positions.
type CurveKind int

const (
	CurveS CurveKind = iota
	CurveB
	CurveSi
	CurveSo
	CurveSiSi
	CurveSiSo
	CurveSoSi
	CurveSoSo
)

var curveNames = map[string]CurveKind{
	"s":    CurveS,
	"b":    CurveB,
	"si":   CurveSi,
	"so":   CurveSo,
	"sisi": CurveSiSi,
	"siso": CurveSiSo,
	"sosi": CurveSoSi,
	"soso": CurveSoSo,
}

// Kinds lists every curve kind.
var Kinds = []CurveKind{CurveS, CurveB, CurveSi, CurveSo, CurveSiSi, CurveSiSo, CurveSoSi, CurveSoSo}

// ParseCurveKind maps a chart line-type name to its kind. Unknown names fall
// back to CurveS and report false.
func ParseCurveKind(name string) (CurveKind, bool) {
	k, ok := curveNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return CurveS, false
	}
	return k, true
}

var kindNames = [...]string{"s", "b", "si", "so", "sisi", "siso", "sosi", "soso"}

func (k CurveKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "s"
	}
	return kindNames[k]
}

type basis int

const (
	basisLinear basis = iota
	basisBezier
	basisEaseIn  // sine, fast start
	basisEaseOut // 1-cos, slow start
)

// axes returns the basis applied to X and Y for a curve kind. The first half
// of a two-part name drives X, the second drives Y; single Si/So only bend X.
func (k CurveKind) axes() (x basis, y basis) {
	switch k {
	case CurveB:
		return basisBezier, basisBezier
	case CurveSi:
		return basisEaseIn, basisLinear
	case CurveSo:
		return basisEaseOut, basisLinear
	case CurveSiSi:
		return basisEaseIn, basisEaseIn
	case CurveSiSo:
		return basisEaseIn, basisEaseOut
	case CurveSoSi:
		return basisEaseOut, basisEaseIn
	case CurveSoSo:
		return basisEaseOut, basisEaseOut
	default:
		return basisLinear, basisLinear
	}
}

// X returns the horizontal position at progress p in [0,1].
func X(start, end, p float64, kind CurveKind) float64 {
	b, _ := kind.axes()
	return eval(start, end, p, b)
}

// Y returns the vertical position at progress p in [0,1].
func Y(start, end, p float64, kind CurveKind) float64 {
	_, b := kind.axes()
	return eval(start, end, p, b)
}

// Interp applies the curve's X basis. Endpoints are returned exactly for
// every kind.
func Interp(start, end, p float64, kind CurveKind) float64 {
	return X(start, end, p, kind)
}

// Point returns the (x, y) position of an arc at progress p.
func Point(xStart, xEnd, yStart, yEnd, p float64, kind CurveKind) (float64, float64) {
	return X(xStart, xEnd, p, kind), Y(yStart, yEnd, p, kind)
}

func eval(start, end, p float64, b basis) float64 {
	if p <= 0 || math.IsNaN(p) {
		return start
	}
	if p >= 1 {
		return end
	}
	switch b {
	case basisBezier:
		o := 1 - p
		return o*o*o*start + 3*o*o*p*start + 3*o*p*p*end + p*p*p*end
	case basisEaseIn:
		return start + (end-start)*math.Sin(math.Pi/2*p)
	case basisEaseOut:
		return start + (end-start)*(1-math.Cos(math.Pi/2*p))
	default:
		return (1-p)*start + p*end
	}
}
