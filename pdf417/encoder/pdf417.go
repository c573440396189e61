// Copyright 2006 Jeremias Maerki in part, and ZXing Authors in part.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Ported from Java ZXing library.

package encoder

import (
	"errors"
	"fmt"
	"math"

	"github.com/ericlevine/pdf417scan/charset"
	"github.com/ericlevine/pdf417scan/pdf417/cluster"
	"github.com/ericlevine/pdf417scan/pdf417/ec"
)

const (
	// defaultModuleWidth and heightRatio give the nominal module aspect used
	// to pick dimensions, in millimetres.
	defaultModuleWidth = 0.357
	heightRatio        = 2.0
	preferredRatio     = 3.0

	padCodeword = 900
)

// ErrMessageTooBig is returned when a message does not fit any symbol.
var ErrMessageTooBig = errors.New("encoded message contains too many code words, message too big")

var errorCorrection = ec.NewEncoder(ec.PDF417)

// Symbol is a fully encoded PDF417 symbol: the symbol length descriptor,
// data, padding and error correction codewords in reading order.
type Symbol struct {
	Codewords []int
	Columns   int
	Rows      int
	ECLevel   int
}

// Encoder turns messages into PDF417 symbols.
type Encoder struct {
	compaction Compaction
	eci        *charset.ECI
	minCols    int
	maxCols    int
	minRows    int
	maxRows    int
}

// New returns an Encoder with automatic compaction and the default
// dimension limits.
func New() *Encoder {
	return &Encoder{
		compaction: CompactionAuto,
		minCols:    2,
		maxCols:    cluster.MaxColumns,
		minRows:    cluster.MinRowsInBarcode,
		maxRows:    cluster.MaxRowsInBarcode,
	}
}

// SetCompaction sets the compaction mode.
func (e *Encoder) SetCompaction(c Compaction) { e.compaction = c }

// SetCharset sets the character set; nil picks one per message.
func (e *Encoder) SetCharset(eci *charset.ECI) { e.eci = eci }

// SetDimensions sets the allowed column and row ranges.
func (e *Encoder) SetDimensions(maxCols, minCols, maxRows, minRows int) {
	e.maxCols = maxCols
	e.minCols = minCols
	e.maxRows = maxRows
	e.minRows = minRows
}

// Encode compacts msg and wraps it in a symbol at error correction level
// ecLevel.
func (e *Encoder) Encode(msg string, ecLevel int) (*Symbol, error) {
	if ecLevel < 0 || ecLevel > ec.MaxLevel {
		return nil, fmt.Errorf("invalid error correction level %d", ecLevel)
	}
	highLevel, err := EncodeHighLevel(msg, e.compaction, e.eci)
	if err != nil {
		return nil, err
	}
	return e.symbol(highLevel, ecLevel)
}

func (e *Encoder) symbol(highLevel []int, ecLevel int) (*Symbol, error) {
	sourceCodewords := len(highLevel)
	ecCodewords := ec.CodewordCount(ecLevel)

	cols, rows, err := e.determineDimensions(sourceCodewords, ecCodewords)
	if err != nil {
		return nil, err
	}
	pad := numberOfPadCodewords(sourceCodewords, ecCodewords, cols, rows)

	n := sourceCodewords + pad + 1
	if n+ecCodewords > cluster.MaxCodewordsInBarcode+1 {
		return nil, ErrMessageTooBig
	}

	codewords := make([]int, 0, n+ecCodewords)
	codewords = append(codewords, n)
	codewords = append(codewords, highLevel...)
	for i := 0; i < pad; i++ {
		codewords = append(codewords, padCodeword)
	}
	codewords = append(codewords, make([]int, ecCodewords)...)
	errorCorrection.Encode(codewords, ecCodewords)

	return &Symbol{Codewords: codewords, Columns: cols, Rows: rows, ECLevel: ecLevel}, nil
}

// Matrix lays the symbol out in rows of start pattern, left row indicator,
// data, right row indicator and stop pattern.
func (s *Symbol) Matrix() *BarcodeMatrix {
	bm := NewBarcodeMatrix(s.Rows, s.Columns)
	idx := 0
	for y := 0; y < s.Rows; y++ {
		c := y % 3
		row := bm.StartRow()
		encodeChar(cluster.StartPattern, cluster.ModulesInCodeword, row)

		base := (y / 3) * 30
		var left, right int
		switch c {
		case 0:
			left = base + (s.Rows-1)/3
			right = base + (s.Columns - 1)
		case 1:
			left = base + s.ECLevel*3 + (s.Rows-1)%3
			right = base + (s.Rows-1)/3
		default:
			left = base + (s.Columns - 1)
			right = base + s.ECLevel*3 + (s.Rows-1)%3
		}

		encodeChar(cluster.Pattern(c, left), cluster.ModulesInCodeword, row)
		for x := 0; x < s.Columns; x++ {
			encodeChar(cluster.Pattern(c, s.Codewords[idx]), cluster.ModulesInCodeword, row)
			idx++
		}
		encodeChar(cluster.Pattern(c, right), cluster.ModulesInCodeword, row)
		encodeChar(cluster.StopPattern, cluster.ModulesInStopPattern, row)
	}
	return bm
}

// calculateNumberOfRows calculates the necessary number of rows as described
// in annex Q of ISO/IEC 15438:2001(E).
func calculateNumberOfRows(m, k, c int) int {
	r := (m+1+k)/c + 1
	if c*r >= m+1+k+c {
		r--
	}
	return r
}

// numberOfPadCodewords calculates the number of pad codewords as described
// in 4.9.2 of ISO/IEC 15438:2001(E).
func numberOfPadCodewords(m, k, c, r int) int {
	n := c*r - k
	if n > m+1 {
		return n - m - 1
	}
	return 0
}

// determineDimensions picks columns and rows whose aspect ratio comes
// closest to the preferred one.
func (e *Encoder) determineDimensions(sourceCodewords, ecCodewords int) (cols, rows int, err error) {
	ratio := 0.0
	found := false

	for c := e.minCols; c <= e.maxCols; c++ {
		r := calculateNumberOfRows(sourceCodewords, ecCodewords, c)
		if r < e.minRows {
			break
		}
		if r > e.maxRows {
			continue
		}
		newRatio := float64(17*c+69) * defaultModuleWidth / (float64(r) * heightRatio)
		if found && math.Abs(newRatio-preferredRatio) > math.Abs(ratio-preferredRatio) {
			continue
		}
		ratio = newRatio
		cols, rows, found = c, r, true
	}

	// Handle case when min values were larger than necessary
	if !found {
		r := calculateNumberOfRows(sourceCodewords, ecCodewords, e.minCols)
		if r < e.minRows {
			return e.minCols, e.minRows, nil
		}
		return 0, 0, errors.New("unable to fit message in columns")
	}
	return cols, rows, nil
}
