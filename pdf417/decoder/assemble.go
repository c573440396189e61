package decoder

import (
	"errors"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/charset"
	"github.com/ericlevine/pdf417scan/observability"
	"github.com/ericlevine/pdf417scan/pdf417/cluster"
	"github.com/ericlevine/pdf417scan/pdf417/ec"
)

// maxAmbiguityTries bounds the combinations of ambiguous cell values tried.
const maxAmbiguityTries = 100

var errorCorrection = ec.NewDecoder(ec.PDF417)

// Assemble error-corrects the matrix and decodes its data codewords.
// defaultCharset applies to byte data before any ECI; nil means
// ISO-8859-1.
func Assemble(m *CodewordMatrix, defaultCharset *charset.ECI, log observability.Logger) (*pdf417scan.Result, error) {
	log = observability.OrNop(log)
	numECCodewords := ec.CodewordCount(m.ECLevel)
	if err := adjustCodewordCount(m, numECCodewords); err != nil {
		return nil, err
	}

	codewords := make([]int, m.Rows*m.Columns)
	var erasures, ambiguousIndexes []int
	var ambiguousValues [][]int
	for row := 0; row < m.Rows; row++ {
		for column := 0; column < m.Columns; column++ {
			values := m.Cell(row, column).Value()
			index := row*m.Columns + column
			switch len(values) {
			case 0:
				erasures = append(erasures, index)
			case 1:
				codewords[index] = values[0]
			default:
				ambiguousIndexes = append(ambiguousIndexes, index)
				ambiguousValues = append(ambiguousValues, values)
			}
		}
	}
	if len(erasures) > numECCodewords {
		return nil, pdf417scan.Errorf(pdf417scan.UncorrectableData,
			"%d unreadable codewords exceed %d error correction codewords", len(erasures), numECCodewords)
	}
	log.Debug("assembling codewords",
		observability.Int("codewords", len(codewords)),
		observability.Int("erasures", len(erasures)),
		observability.Int("ambiguous", len(ambiguousIndexes)))

	choice := make([]int, len(ambiguousIndexes))
	var lastErr error
	for try := 0; try < maxAmbiguityTries; try++ {
		for i, index := range ambiguousIndexes {
			codewords[index] = ambiguousValues[i][choice[i]]
		}
		received := append([]int(nil), codewords...)
		result, err := decodeCodewords(received, m, numECCodewords, erasures, defaultCharset)
		if err == nil {
			log.Debug("error correction applied",
				observability.Int("errors", result.ErrorsCorrected),
				observability.Int("erasures", result.ErasuresCorrected),
				observability.Int("attempt", try+1))
			return result, nil
		}
		if !errors.Is(err, pdf417scan.ErrUncorrectableData) {
			return nil, err
		}
		lastErr = err
		if !nextChoice(choice, ambiguousValues) {
			break
		}
	}
	var de *pdf417scan.DecodeError
	if errors.As(lastErr, &de) {
		return nil, lastErr
	}
	return nil, &pdf417scan.DecodeError{Kind: pdf417scan.UncorrectableData, Row: -1, Column: -1, Err: lastErr}
}

// nextChoice advances the ambiguous value combination like an odometer and
// reports false once every combination was tried.
func nextChoice(choice []int, values [][]int) bool {
	for i := range choice {
		if choice[i] < len(values[i])-1 {
			choice[i]++
			return true
		}
		choice[i] = 0
	}
	return false
}

// adjustCodewordCount makes the symbol length descriptor cell agree with
// the size the row indicators imply, outvoting any misreads.
func adjustCodewordCount(m *CodewordMatrix, numECCodewords int) error {
	cell := m.Cell(0, 0)
	calculated := m.Columns*m.Rows - numECCodewords
	if calculated < 1 || calculated > cluster.MaxCodewordsInBarcode {
		return pdf417scan.Errorf(pdf417scan.InconsistentMetadata,
			"%d rows x %d columns at level %d hold %d data codewords", m.Rows, m.Columns, m.ECLevel, calculated)
	}
	for {
		values := cell.Value()
		if len(values) == 1 && values[0] == calculated {
			return nil
		}
		cell.SetValue(calculated)
	}
}

func decodeCodewords(codewords []int, m *CodewordMatrix, numECCodewords int, erasures []int,
	defaultCharset *charset.ECI) (*pdf417scan.Result, error) {

	if len(codewords) < 4 {
		return nil, pdf417scan.Errorf(pdf417scan.InconsistentMetadata, "only %d codewords", len(codewords))
	}
	correction, err := errorCorrection.Decode(codewords, numECCodewords, erasures)
	if err != nil {
		return nil, err
	}
	dataCount := len(codewords) - numECCodewords
	sld := codewords[0]
	switch {
	case sld == 0:
		sld = dataCount
	case sld > dataCount:
		return nil, pdf417scan.Errorf(pdf417scan.InconsistentMetadata,
			"symbol length descriptor %d exceeds %d data codewords", sld, dataCount).At(0, 0)
	}

	p, err := decodeBitStream(codewords[:sld], defaultCharset)
	if err != nil {
		return nil, err
	}
	return &pdf417scan.Result{
		Text:              p.text,
		RawBytes:          p.raw,
		Codewords:         append([]int(nil), codewords[:sld]...),
		Modes:             p.modes,
		CharacterSet:      p.charset,
		ECLevel:           m.ECLevel,
		ErrorsCorrected:   correction.Errors,
		ErasuresCorrected: correction.Erasures,
		Rows:              m.Rows,
		Columns:           m.Columns,
		Macro:             p.macro,
	}, nil
}
