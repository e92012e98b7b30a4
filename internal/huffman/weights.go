// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package huffman

import "slices"

// Weights holds the number of occurrences of each distinct byte value.
// Absent keys did not occur; present keys are always at least 1.
type Weights map[byte]int

func CountWeights(data []byte) Weights {
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	w := make(Weights)
	for b, n := range counts {
		if n != 0 {
			w[byte(b)] = n
		}
	}
	return w
}

// Symbols returns the byte values in ascending order.
func (w Weights) Symbols() []byte {
	ret := make([]byte, 0, len(w))
	for b := range w {
		ret = append(ret, b)
	}
	slices.Sort(ret)
	return ret
}

// Total is the length of the input the weights were counted from.
func (w Weights) Total() int {
	n := 0
	for _, c := range w {
		n += c
	}
	return n
}
