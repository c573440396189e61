// Package cluster holds the static PDF417 codeword tables and the lookups
// shared by the encoder and the decoder.
//
// Every codeword value in [0, 928] has one 17-module bar/space pattern in
// each of the three clusters. Row r of a symbol uses cluster r mod 3, whose
// patterns all fall in bucket 3*(r mod 3).
package cluster

import "sort"

const (
	NumberOfCodewords     = 929
	MaxCodewordsInBarcode = NumberOfCodewords - 1
	MinRowsInBarcode      = 3
	MaxRowsInBarcode      = 90
	MinColumns            = 1
	MaxColumns            = 30
	ModulesInCodeword     = 17
	ModulesInStopPattern  = 18
	BarsInModule          = 8
)

const (
	// StartPattern is the 17-module start guard, 81111113.
	StartPattern = 0x1fea8
	// StopPattern is the 18-module stop guard, 711311121.
	StopPattern = 0x3fa29
)

// symbol index sorted by pattern, built once from codewordPatterns.
var (
	symbols        []int
	symbolValues   []int
	symbolClusters []int
)

func init() {
	type entry struct{ pattern, value, cluster int }
	entries := make([]entry, 0, 3*NumberOfCodewords)
	for c := 0; c < 3; c++ {
		for v, p := range codewordPatterns[c] {
			entries = append(entries, entry{int(p), v, c})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pattern < entries[j].pattern })

	symbols = make([]int, len(entries))
	symbolValues = make([]int, len(entries))
	symbolClusters = make([]int, len(entries))
	for i, e := range entries {
		symbols[i] = e.pattern
		symbolValues[i] = e.value
		symbolClusters[i] = e.cluster
	}
}

// Pattern returns the bar/space pattern of value in the given cluster.
func Pattern(cluster, value int) int {
	return int(codewordPatterns[cluster][value])
}

// Lookup maps a 17-module pattern to its codeword value and cluster.
// ok is false when the pattern belongs to no cluster table.
func Lookup(pattern int) (value, cluster int, ok bool) {
	i := sort.SearchInts(symbols, pattern&0x3ffff)
	if i == len(symbols) || symbols[i] != pattern&0x3ffff {
		return -1, -1, false
	}
	return symbolValues[i], symbolClusters[i], true
}

// LookupInCluster maps a pattern to a codeword value only if the pattern
// is a member of the given cluster table.
func LookupInCluster(cluster, pattern int) (int, bool) {
	value, c, ok := Lookup(pattern)
	if !ok || c != cluster {
		return -1, false
	}
	return value, true
}

// Symbols returns every pattern of the three tables in ascending order.
// The returned slice must not be modified.
func Symbols() []int {
	return symbols
}

// ElementWidths splits a 17-module pattern into its 8 bar and space widths,
// leading bar first.
func ElementWidths(pattern int) [BarsInModule]int {
	var result [BarsInModule]int
	previous := 0
	i := BarsInModule - 1
	for {
		if pattern&0x1 != previous {
			previous = pattern & 0x1
			i--
			if i < 0 {
				break
			}
		}
		result[i]++
		pattern >>= 1
	}
	return result
}

// Bucket returns the cluster bucket (0, 3 or 6) of the given element widths.
func Bucket(widths []int) int {
	return (widths[0] - widths[2] + widths[4] - widths[6] + 9) % 9
}
