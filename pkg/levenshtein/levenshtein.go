// Copyright (c) 2015, Arbo von Monkiewitsch All rights reserved.
// Use of this source code is governed by a BSD-style
// license.

// Package levenshtein calculates edit distances and the normalized edit ratio
// between strings.
package levenshtein

import "sync"

// Context is the object which allows to calculate the edit distances
// with Distance() and Ratio() methods. It reuses its scratch buffer between
// calls and must not be shared between goroutines.
type Context struct {
	intSlice []int
}

func (ctx *Context) getIntSlice(length int) []int {
	if cap(ctx.intSlice) < length {
		ctx.intSlice = make([]int, length)
	}

	return ctx.intSlice[:length]
}

// Distance calculates the Levenshtein distance between two strings which
// is defined as the minimum number of edits needed to transform one string
// into the other, with the allowable edit operations being insertion, deletion,
// or substitution of a single character.
// http://en.wikipedia.org/wiki/Levenshtein_distance
//
// This implementation is optimized to use O(min(m,n)) space.
func (ctx *Context) Distance(str1, str2 string) int {
	s1 := []rune(str1)
	s2 := []rune(str2)

	lenS1 := len(s1)
	lenS2 := len(s2)

	if lenS2 == 0 {
		return lenS1
	}

	column := ctx.getIntSlice(lenS1 + 1)
	// Column[0] will be initialized at the start of the first loop before it
	// is read, unless lenS2 is zero, which we deal with above.
	for idx := 1; idx <= lenS1; idx++ {
		column[idx] = idx
	}

	for col := range lenS2 {
		s2Rune := s2[col]
		column[0] = col + 1
		lastdiag := col

		for row := range lenS1 {
			olddiag := column[row+1]

			cost := 0
			if s1[row] != s2Rune {
				cost = 1
			}

			column[row+1] = min(
				column[row+1]+1,
				column[row]+1,
				lastdiag+cost,
			)
			lastdiag = olddiag
		}
	}

	return column[lenS1]
}

// lcs returns the length of the longest common subsequence of s1 and s2.
func (ctx *Context) lcs(s1, s2 []rune) int {
	if len(s1) == 0 || len(s2) == 0 {
		return 0
	}

	column := ctx.getIntSlice(len(s1) + 1)
	clear(column)

	for _, s2Rune := range s2 {
		lastdiag := 0

		for row, s1Rune := range s1 {
			olddiag := column[row+1]

			if s1Rune == s2Rune {
				column[row+1] = lastdiag + 1
			} else {
				column[row+1] = max(column[row+1], column[row])
			}

			lastdiag = olddiag
		}
	}

	return column[len(s1)]
}

// Ratio returns the normalized edit similarity of two strings in [0, 1]:
// 2*LCS(s1, s2) / (len(s1) + len(s2)), counted in runes. A substitution costs
// a deletion plus an insertion. Identical strings, including two empty
// strings, score 1.0.
func (ctx *Context) Ratio(str1, str2 string) float64 {
	s1 := []rune(str1)
	s2 := []rune(str2)

	total := len(s1) + len(s2)
	if total == 0 {
		return 1.0
	}

	return float64(2*ctx.lcs(s1, s2)) / float64(total)
}

var contextPool = sync.Pool{
	New: func() any { return &Context{} },
}

// Ratio is the goroutine-safe form of Context.Ratio backed by a pool of contexts.
func Ratio(str1, str2 string) float64 {
	ctx, _ := contextPool.Get().(*Context)
	defer contextPool.Put(ctx)

	return ctx.Ratio(str1, str2)
}

// Distance is the goroutine-safe form of Context.Distance.
func Distance(str1, str2 string) int {
	ctx, _ := contextPool.Get().(*Context)
	defer contextPool.Put(ctx)

	return ctx.Distance(str1, str2)
}
