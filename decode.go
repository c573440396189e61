package pdf417scan

import "github.com/ericlevine/pdf417scan/observability"

// DecodeOptions configures symbol decoding.
type DecodeOptions struct {
	// TryHarder searches every row instead of every fifth when no symbol
	// was found on the first pass.
	TryHarder bool

	// AlsoInverted also tries the inverted bitmap, for light symbols on a
	// dark background.
	AlsoInverted bool

	// Multiple returns every symbol in the image instead of requiring
	// exactly one distinct payload.
	Multiple bool

	// CharacterSet is the encoding assumed for byte data before any ECI
	// designator. Empty means ISO-8859-1.
	CharacterSet string

	// Logger receives debug records from the pipeline. Nil disables logging.
	Logger observability.Logger
}

// Log returns the configured logger or a no-op one. It is safe on a nil
// receiver.
func (o *DecodeOptions) Log() observability.Logger {
	if o == nil {
		return observability.NopLogger{}
	}
	return observability.OrNop(o.Logger)
}
