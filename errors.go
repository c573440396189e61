package pdf417scan

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies why a decode failed.
type Kind int

const (
	KindUnknown Kind = iota
	UnsupportedFormat
	ImageTooSmall
	BinarizationFailed
	SymbolNotFound
	AmbiguousSymbol
	RowDecodeFailed
	InconsistentMetadata
	UncorrectableData
	MalformedCompaction
	Cancelled
)

var kindNames = [...]string{
	KindUnknown:          "Unknown",
	UnsupportedFormat:    "UnsupportedFormat",
	ImageTooSmall:        "ImageTooSmall",
	BinarizationFailed:   "BinarizationFailed",
	SymbolNotFound:       "SymbolNotFound",
	AmbiguousSymbol:      "AmbiguousSymbol",
	RowDecodeFailed:      "RowDecodeFailed",
	InconsistentMetadata: "InconsistentMetadata",
	UncorrectableData:    "UncorrectableData",
	MalformedCompaction:  "MalformedCompaction",
	Cancelled:            "Cancelled",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

var (
	// ErrUnsupportedFormat is returned when no image decoder recognizes the input.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrImageTooSmall is returned when the image cannot hold a PDF417 symbol.
	ErrImageTooSmall = errors.New("image too small")

	// ErrBinarizationFailed is returned when the image has no usable contrast.
	ErrBinarizationFailed = errors.New("binarization failed")

	// ErrSymbolNotFound is returned when no start/stop pattern pair is found.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrAmbiguousSymbol is returned when several symbols decode to
	// different payloads and one was requested.
	ErrAmbiguousSymbol = errors.New("ambiguous symbol")

	// ErrRowDecodeFailed is returned when a whole symbol row is unreadable.
	ErrRowDecodeFailed = errors.New("row decode failed")

	// ErrInconsistentMetadata is returned when row indicators or the symbol
	// length descriptor contradict each other.
	ErrInconsistentMetadata = errors.New("inconsistent metadata")

	// ErrUncorrectableData is returned when errors exceed the error
	// correction capacity.
	ErrUncorrectableData = errors.New("uncorrectable data")

	// ErrMalformedCompaction is returned when the data codewords violate
	// the compaction rules.
	ErrMalformedCompaction = errors.New("malformed compaction")

	// ErrCancelled is returned when the context ends before decoding completes.
	ErrCancelled = errors.New("cancelled")

	// ErrWriter is returned when contents cannot be encoded into a symbol.
	ErrWriter = errors.New("writer error")
)

var kindErrors = map[Kind]error{
	UnsupportedFormat:    ErrUnsupportedFormat,
	ImageTooSmall:        ErrImageTooSmall,
	BinarizationFailed:   ErrBinarizationFailed,
	SymbolNotFound:       ErrSymbolNotFound,
	AmbiguousSymbol:      ErrAmbiguousSymbol,
	RowDecodeFailed:      ErrRowDecodeFailed,
	InconsistentMetadata: ErrInconsistentMetadata,
	UncorrectableData:    ErrUncorrectableData,
	MalformedCompaction:  ErrMalformedCompaction,
	Cancelled:            ErrCancelled,
}

// Sentinel returns the sentinel error of k, or nil for KindUnknown.
func (k Kind) Sentinel() error {
	return kindErrors[k]
}

// DecodeError carries the failure kind and, where known, the symbol row and
// column the failure was detected at. Row and Column are -1 when unknown.
type DecodeError struct {
	Kind   Kind
	Row    int
	Column int
	Err    error
}

// Errorf builds a DecodeError of the given kind with a formatted diagnostic.
func Errorf(kind Kind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Row: -1, Column: -1, Err: fmt.Errorf(format, args...)}
}

// At returns a copy of e located at row and column.
func (e *DecodeError) At(row, column int) *DecodeError {
	c := *e
	c.Row, c.Column = row, column
	return &c
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Sentinel()
	if e.Err != nil {
		msg = e.Err
	}
	switch {
	case msg == nil:
		return e.Kind.String()
	case e.Row >= 0 && e.Column >= 0:
		return fmt.Sprintf("row %d column %d: %v", e.Row, e.Column, msg)
	case e.Row >= 0:
		return fmt.Sprintf("row %d: %v", e.Row, msg)
	}
	return msg.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind.
func (e *DecodeError) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && target == s
}

// KindOf classifies err. Context cancellation and deadline errors map to
// Cancelled; errors carrying no known sentinel map to KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var de *DecodeError
	if errors.As(err, &de) && de.Kind != KindUnknown {
		return de.Kind
	}
	for k := UnsupportedFormat; k <= Cancelled; k++ {
		if errors.Is(err, kindErrors[k]) {
			return k
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Cancelled
	}
	return KindUnknown
}

// ContextError returns a Cancelled DecodeError if ctx is done, nil otherwise.
func ContextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &DecodeError{Kind: Cancelled, Row: -1, Column: -1, Err: err}
	}
	return nil
}

// Further returns whichever failure came from the later pipeline stage, as
// ordered by Kind. Ties keep current.
func Further(current, candidate error) error {
	if current == nil || KindOf(candidate) > KindOf(current) {
		return candidate
	}
	return current
}
