// Package detector finds PDF417 start and stop guard patterns in a binary
// image and reports the corners of each symbol found.
package detector

import (
	"context"
	"math"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
	"github.com/ericlevine/pdf417scan/pdf417/decoder"
)

var (
	indexesStartPattern = [4]int{0, 4, 1, 5}
	indexesStopPattern  = [4]int{6, 2, 7, 3}
)

const (
	maxAvgVariance               = 0.42
	maxIndividualVariance        = 0.8
	maxStopPatternHeightVariance = 0.5
	maxPixelDrift                = 3
	maxPatternDrift              = 5
	skippedRowCountMax           = 25
	rowStep                      = 5
	barcodeMinHeight             = 10
)

// B S B S B S B S Bar/Space pattern
// 11111111 0 1 0 1 0 1 000
var startPattern = [8]int{8, 1, 1, 1, 1, 1, 1, 3}

// 1111111 0 1 000 1 0 1 00 1
var stopPattern = [9]int{7, 1, 1, 3, 1, 1, 1, 2, 1}

// Rotations lists the counterclockwise rotations tried, in order.
var Rotations = [4]int{0, 180, 270, 90}

// Symbol holds the vertices of one detected symbol:
//
//	[0] top left of the symbol
//	[1] bottom left of the symbol
//	[2] top right of the symbol
//	[3] bottom right of the symbol
//	[4] top left of the codeword area
//	[5] bottom left of the codeword area
//	[6] top right of the codeword area
//	[7] bottom right of the codeword area
//
// A side whose guard pattern was not found has nil vertices.
type Symbol [8]*pdf417scan.ResultPoint

// CodewordArea returns the corners of the area between the guard patterns.
func (s Symbol) CodewordArea() decoder.Vertices {
	return decoder.Vertices{TopLeft: s[4], BottomLeft: s[5], TopRight: s[6], BottomRight: s[7]}
}

// MinCodewordWidth is the narrowest guard pattern width measured, the
// lower bound for a codeword width.
func (s Symbol) MinCodewordWidth() int {
	return min(
		width(s[0], s[4], math.MaxInt32),
		width(s[6], s[2], math.MaxInt32),
		width(s[1], s[5], math.MaxInt32),
		width(s[7], s[3], math.MaxInt32),
	)
}

// MaxCodewordWidth is the widest guard pattern width measured.
func (s Symbol) MaxCodewordWidth() int {
	return max(
		width(s[0], s[4], 0)|1,
		width(s[6], s[2], 0)|1,
		width(s[1], s[5], 0)|1,
		width(s[7], s[3], 0)|1,
	)
}

func width(p1, p2 *pdf417scan.ResultPoint, missing int) int {
	if p1 == nil || p2 == nil {
		return missing
	}
	return int(math.Abs(p1.X - p2.X))
}

// Result is the outcome of detection at one rotation.
type Result struct {
	// Bits is the image rotated by Rotation degrees counterclockwise.
	Bits     *bitutil.BitMatrix
	Symbols  []Symbol
	Rotation int
}

// DetectAt searches the matrix rotated counterclockwise by rotation
// degrees. An empty Symbols slice means nothing was found.
func DetectAt(ctx context.Context, matrix *bitutil.BitMatrix, rotation int, multiple, tryHarder bool) (*Result, error) {
	bits := applyRotation(matrix, rotation)
	symbols, err := detect(ctx, bits, multiple, tryHarder)
	if err != nil {
		return nil, err
	}
	return &Result{Bits: bits, Symbols: symbols, Rotation: rotation}, nil
}

func applyRotation(matrix *bitutil.BitMatrix, rotation int) *bitutil.BitMatrix {
	if rotation%360 == 0 {
		return matrix
	}
	rotated := matrix.Clone()
	rotated.Rotate(rotation)
	return rotated
}

// detect scans the unrotated matrix top to bottom. After a symbol is found
// the search resumes to its right, then below every symbol found so far.
func detect(ctx context.Context, bitMatrix *bitutil.BitMatrix, multiple, tryHarder bool) ([]Symbol, error) {
	var symbols []Symbol
	row := 0
	column := 0
	foundBarcodeInRow := false

	for row < bitMatrix.Height() {
		if err := pdf417scan.ContextError(ctx); err != nil {
			return nil, err
		}
		vertices, err := findVertices(ctx, bitMatrix, row, column, tryHarder)
		if err != nil {
			return nil, err
		}

		if vertices[0] == nil && vertices[3] == nil {
			if !foundBarcodeInRow {
				if !tryHarder {
					break
				}
				row += rowStep
				continue
			}
			foundBarcodeInRow = false
			column = 0
			for _, s := range symbols {
				if s[1] != nil {
					row = max(row, int(s[1].Y))
				}
				if s[3] != nil {
					row = max(row, int(s[3].Y))
				}
			}
			row += rowStep
			continue
		}
		foundBarcodeInRow = true
		symbols = append(symbols, vertices)
		if !multiple {
			break
		}
		if vertices[2] != nil {
			column = int(vertices[2].X)
			row = int(vertices[2].Y)
		} else {
			column = int(vertices[4].X)
			row = int(vertices[4].Y)
		}
	}
	return symbols, nil
}

// findVertices locates the start pattern at or below startRow, then the
// stop pattern to its right.
func findVertices(ctx context.Context, matrix *bitutil.BitMatrix, startRow, startColumn int, tryHarder bool) (Symbol, error) {
	var result Symbol
	minHeight := barcodeMinHeight

	rows, err := findRowsWithPattern(ctx, matrix, startRow, startColumn, minHeight, startPattern[:], tryHarder)
	if err != nil {
		return result, err
	}
	copyToResult(&result, rows, indexesStartPattern)

	if result[4] != nil {
		startColumn = int(result[4].X)
		startRow = int(result[4].Y)
		if result[5] != nil {
			startPatternHeight := int(result[5].Y) - startRow
			minHeight = max(int(float64(startPatternHeight)*maxStopPatternHeightVariance), barcodeMinHeight)
		}
	}

	rows, err = findRowsWithPattern(ctx, matrix, startRow, startColumn, minHeight, stopPattern[:], tryHarder)
	if err != nil {
		return result, err
	}
	copyToResult(&result, rows, indexesStopPattern)
	return result, nil
}

func copyToResult(result *Symbol, rows [4]*pdf417scan.ResultPoint, destinationIndexes [4]int) {
	for i, idx := range destinationIndexes {
		result[idx] = rows[i]
	}
}

// findRowsWithPattern returns the left and right ends of the first and
// last pixel rows carrying pattern, following it down while it drifts by
// less than maxPatternDrift. All four are nil when the run is shorter
// than minHeight.
func findRowsWithPattern(ctx context.Context, matrix *bitutil.BitMatrix, startRow, startColumn, minHeight int,
	pattern []int, tryHarder bool) ([4]*pdf417scan.ResultPoint, error) {

	var result [4]*pdf417scan.ResultPoint
	height, width := matrix.Height(), matrix.Width()
	found := false
	counters := make([]int, len(pattern))

	for ; startRow < height; startRow += rowStep {
		if err := pdf417scan.ContextError(ctx); err != nil {
			return result, err
		}
		loc := findGuardPattern(matrix, startColumn, startRow, width, pattern, counters)
		if loc == nil {
			continue
		}
		for startRow > 0 {
			startRow--
			previousRowLoc := findGuardPattern(matrix, startColumn, startRow, width, pattern, counters)
			if previousRowLoc == nil {
				startRow++
				break
			}
			loc = previousRowLoc
		}
		result[0] = &pdf417scan.ResultPoint{X: float64(loc[0]), Y: float64(startRow)}
		result[1] = &pdf417scan.ResultPoint{X: float64(loc[1]), Y: float64(startRow)}
		found = true
		break
	}

	stopRow := startRow + 1
	if found {
		skippedRowCount := 0
		previousRowLoc := [2]int{int(result[0].X), int(result[1].X)}
		for ; stopRow < height; stopRow++ {
			loc := findGuardPattern(matrix, previousRowLoc[0], stopRow, width, pattern, counters)
			// A pattern belongs to the same symbol only while its ends drift
			// by less than maxPatternDrift from the last row seen.
			if loc != nil &&
				abs(previousRowLoc[0]-loc[0]) < maxPatternDrift &&
				abs(previousRowLoc[1]-loc[1]) < maxPatternDrift {
				previousRowLoc = [2]int{loc[0], loc[1]}
				skippedRowCount = 0
			} else {
				if skippedRowCount > skippedRowCountMax {
					break
				}
				skippedRowCount++
			}
		}
		stopRow -= skippedRowCount + 1
		result[2] = &pdf417scan.ResultPoint{X: float64(previousRowLoc[0]), Y: float64(stopRow)}
		result[3] = &pdf417scan.ResultPoint{X: float64(previousRowLoc[1]), Y: float64(stopRow)}
	}

	if stopRow-startRow < minHeight {
		if tryHarder && found {
			// Too short to be a symbol; resume below it.
			return findRowsWithPattern(ctx, matrix, stopRow+1+rowStep, startColumn, minHeight, pattern, tryHarder)
		}
		return [4]*pdf417scan.ResultPoint{}, nil
	}
	return result, nil
}

// findGuardPattern searches a row for pattern starting near column and
// returns its start and end offsets, or nil.
func findGuardPattern(matrix *bitutil.BitMatrix, column, row, width int, pattern, counters []int) []int {
	for i := range counters {
		counters[i] = 0
	}
	patternStart := column
	pixelDrift := 0

	// Back up over black pixels left of column, at most maxPixelDrift.
	for patternStart > 0 && pixelDrift < maxPixelDrift && matrix.Get(patternStart, row) {
		patternStart--
		pixelDrift++
	}

	x := patternStart
	counterPosition := 0
	patternLength := len(pattern)
	isWhite := false

	for ; x < width; x++ {
		pixel := matrix.Get(x, row)
		if pixel != isWhite {
			counters[counterPosition]++
			continue
		}
		if counterPosition == patternLength-1 {
			if patternMatchVariance(counters, pattern) < maxAvgVariance {
				return []int{patternStart, x}
			}
			patternStart += counters[0] + counters[1]
			copy(counters, counters[2:counterPosition+1])
			counters[counterPosition-1] = 0
			counters[counterPosition] = 0
			counterPosition--
		} else {
			counterPosition++
		}
		counters[counterPosition] = 1
		isWhite = !isWhite
	}

	if counterPosition == patternLength-1 && patternMatchVariance(counters, pattern) < maxAvgVariance {
		return []int{patternStart, x - 1}
	}
	return nil
}

// patternMatchVariance is the summed deviation of the observed run lengths
// from pattern scaled to the same total, relative to the total. It is
// +Inf when any single run deviates by more than maxIndividualVariance
// modules.
func patternMatchVariance(counters, pattern []int) float64 {
	total := 0
	patternLength := 0
	for i := range counters {
		total += counters[i]
		patternLength += pattern[i]
	}
	if total < patternLength {
		// Less than one pixel per module.
		return math.Inf(1)
	}

	unitBarWidth := float64(total) / float64(patternLength)
	maxIndVar := maxIndividualVariance * unitBarWidth

	totalVariance := 0.0
	for x := range counters {
		variance := math.Abs(float64(counters[x]) - float64(pattern[x])*unitBarWidth)
		if variance > maxIndVar {
			return math.Inf(1)
		}
		totalVariance += variance
	}
	return totalVariance / float64(total)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
