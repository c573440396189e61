package decoder

import (
	"math"

	"github.com/ericlevine/pdf417scan/pdf417/cluster"
)

// ratiosTable holds, for every pattern of cluster.Symbols, the width of
// each of its 8 elements as a fraction of 17 modules.
var ratiosTable [][cluster.BarsInModule]float32

func init() {
	symbols := cluster.Symbols()
	ratiosTable = make([][cluster.BarsInModule]float32, len(symbols))
	for i, symbol := range symbols {
		widths := cluster.ElementWidths(symbol)
		for j, w := range widths {
			ratiosTable[i][j] = float32(w) / cluster.ModulesInCodeword
		}
	}
}

// decodedPattern turns 8 measured element widths in pixels into a
// 17-module pattern. The widths are first resampled to 17 modules; when
// that gives no valid pattern the closest pattern by width ratios wins.
// The result is -1 when nothing plausible matches.
func decodedPattern(moduleBitCount []int) int {
	pattern := bitValue(sampleBitCounts(moduleBitCount))
	if _, _, ok := cluster.Lookup(pattern); ok {
		return pattern
	}
	return closestPattern(moduleBitCount)
}

// sampleBitCounts samples the run lengths at the centre of each of 17
// equally spaced modules.
func sampleBitCounts(moduleBitCount []int) []int {
	bitCountSum := sumInts(moduleBitCount)
	result := make([]int, cluster.BarsInModule)
	bitCountIndex := 0
	sumPreviousBits := 0
	for i := 0; i < cluster.ModulesInCodeword; i++ {
		sampleIndex := float64(bitCountSum)/(2*cluster.ModulesInCodeword) +
			float64(i*bitCountSum)/cluster.ModulesInCodeword
		if float64(sumPreviousBits+moduleBitCount[bitCountIndex]) <= sampleIndex {
			sumPreviousBits += moduleBitCount[bitCountIndex]
			bitCountIndex++
		}
		result[bitCountIndex]++
	}
	return result
}

// bitValue packs module counts into a pattern, bars as 1 bits.
func bitValue(moduleBitCount []int) int {
	result := 0
	for i, count := range moduleBitCount {
		for bit := 0; bit < count; bit++ {
			result <<= 1
			if i%2 == 0 {
				result |= 1
			}
		}
	}
	return result
}

func closestPattern(moduleBitCount []int) int {
	bitCountSum := sumInts(moduleBitCount)
	var ratios [cluster.BarsInModule]float32
	if bitCountSum > 1 {
		for i, count := range moduleBitCount {
			ratios[i] = float32(count) / float32(bitCountSum)
		}
	}
	bestError := float32(math.MaxFloat32)
	best := -1
	for j, row := range ratiosTable {
		var e float32
		for k := range row {
			diff := row[k] - ratios[k]
			e += diff * diff
			if e >= bestError {
				break
			}
		}
		if e < bestError {
			bestError = e
			best = cluster.Symbols()[j]
		}
	}
	return best
}

func sumInts(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}
