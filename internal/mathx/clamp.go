// Package mathx holds small generic numeric helpers.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp maps v from [inLo, inHi] onto [outLo, outHi] after clamping it to the input range.
func Lerp[T constraints.Integer | constraints.Float](v, inLo, inHi, outLo, outHi T) T {
	if inHi == inLo {
		return outLo
	}
	v = Clamp(v, inLo, inHi)
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}
