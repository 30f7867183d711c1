// SPDX-License-Identifier: GPL-2.0-or-later

package math

import (
	"golang.org/x/exp/constraints"
)

func Clamp[K constraints.Ordered](min, val, max K) K {
	if min > val {
		return min
	} else if max < val {
		return max
	}
	return val
}

// NextPow2 returns the smallest power of two >= v, 1 for v <= 1.
func NextPow2[K constraints.Integer](v K) K {
	p := K(1)
	for p < v {
		p <<= 1
	}
	return p
}
