package binarizer

import (
	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/bitutil"
)

const (
	blockSizePower   = 3
	blockSize        = 1 << blockSizePower
	blockSizeMask    = blockSize - 1
	minimumDimension = blockSize * 5
	minDynamicRange  = 24
)

// Hybrid thresholds each 8x8 block against the average black point of the
// surrounding 5x5 blocks, which copes with shadows and uneven lighting.
// Images smaller than 40 pixels on a side fall back to GlobalHistogram.
// Blocks without contrast are treated as background.
type Hybrid struct {
	GlobalHistogram
	matrix *bitutil.BitMatrix
}

// NewHybrid creates a new Hybrid binarizer.
func NewHybrid(source pdf417scan.LuminanceSource) *Hybrid {
	return &Hybrid{
		GlobalHistogram: *NewGlobalHistogram(source),
	}
}

// BlackMatrix computes the matrix once and returns the same value on later
// calls.
func (h *Hybrid) BlackMatrix() (*bitutil.BitMatrix, error) {
	if h.matrix != nil {
		return h.matrix, nil
	}
	source := h.LuminanceSource()
	width := source.Width()
	height := source.Height()
	if width < minimumDimension || height < minimumDimension {
		m, err := h.GlobalHistogram.BlackMatrix()
		if err != nil {
			return nil, err
		}
		h.matrix = m
		return m, nil
	}

	g := blockGrid{
		luminances: source.Matrix(),
		width:      width,
		height:     height,
		subWidth:   (width + blockSizeMask) >> blockSizePower,
		subHeight:  (height + blockSizeMask) >> blockSizePower,
	}
	blackPoints := g.blackPoints()
	matrix := bitutil.NewBitMatrixWithSize(width, height)
	g.threshold(blackPoints, matrix)
	h.matrix = matrix
	return matrix, nil
}

// blockGrid divides a luminance image into 8x8 blocks. The last block of
// each row and column is shifted back to stay inside the image.
type blockGrid struct {
	luminances          []byte
	width, height       int
	subWidth, subHeight int
}

func (g *blockGrid) origin(bx, by int) (int, int) {
	x := bx << blockSizePower
	if x > g.width-blockSize {
		x = g.width - blockSize
	}
	y := by << blockSizePower
	if y > g.height-blockSize {
		y = g.height - blockSize
	}
	return x, y
}

// blackPoints estimates a black point per block. A block whose dynamic
// range is at most minDynamicRange gets half its minimum, raised to the
// neighbours' estimate when that is above the block's minimum, so flat
// areas next to dark content stay white.
func (g *blockGrid) blackPoints() [][]int {
	points := make([][]int, g.subHeight)
	for by := range points {
		points[by] = make([]int, g.subWidth)
		for bx := range points[by] {
			x0, y0 := g.origin(bx, by)
			sum, lo, hi := g.stats(x0, y0)
			if hi-lo > minDynamicRange {
				points[by][bx] = sum >> (2 * blockSizePower)
				continue
			}
			average := lo / 2
			if by > 0 && bx > 0 {
				neighbours := (points[by-1][bx] + 2*points[by][bx-1] + points[by-1][bx-1]) / 4
				if lo < neighbours {
					average = neighbours
				}
			}
			points[by][bx] = average
		}
	}
	return points
}

func (g *blockGrid) stats(x0, y0 int) (sum, lo, hi int) {
	lo = 0xFF
	for y := y0; y < y0+blockSize; y++ {
		for _, p := range g.luminances[y*g.width+x0 : y*g.width+x0+blockSize] {
			v := int(p)
			sum += v
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return sum, lo, hi
}

func (g *blockGrid) threshold(points [][]int, matrix *bitutil.BitMatrix) {
	for by := 0; by < g.subHeight; by++ {
		top := clampCenter(by, g.subHeight-3)
		for bx := 0; bx < g.subWidth; bx++ {
			left := clampCenter(bx, g.subWidth-3)
			sum := 0
			for dy := -2; dy <= 2; dy++ {
				row := points[top+dy]
				for dx := -2; dx <= 2; dx++ {
					sum += row[left+dx]
				}
			}
			limit := sum / 25
			x0, y0 := g.origin(bx, by)
			for y := y0; y < y0+blockSize; y++ {
				for x := x0; x < x0+blockSize; x++ {
					if int(g.luminances[y*g.width+x]) <= limit {
						matrix.Set(x, y)
					}
				}
			}
		}
	}
}

// clampCenter keeps a 5x5 window centred on value inside [0, max+2].
func clampCenter(value, max int) int {
	if value < 2 {
		return 2
	}
	if value > max {
		return max
	}
	return value
}
