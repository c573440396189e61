package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"io/fs"
	"os"
	"strings"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/aamva"
	"github.com/ericlevine/pdf417scan/internal/config"
	"github.com/ericlevine/pdf417scan/observability"
	"github.com/ericlevine/pdf417scan/pdf417"
	"github.com/ericlevine/pdf417scan/scan"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const (
	generateColumns = 10
	generateScale   = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks failures caused by the invocation rather than the image.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

type options struct {
	simple, full, raw bool
	multi             bool
	tryHarder         bool
	inverted          bool
	charset           string
	generate          string
	output            string
	logLevel          string
	cfg               *config.Config
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	fset := flag.NewFlagSet("pdf417decode", flag.ContinueOnError)
	fset.SetOutput(stderr)
	o := options{cfg: cfg}
	fset.BoolVar(&o.simple, "s", false, "print the common AAMVA fields as JSON")
	fset.BoolVar(&o.full, "f", false, "print all known AAMVA fields as JSON")
	fset.BoolVar(&o.raw, "r", false, "print the payload followed by symbol metadata")
	fset.BoolVar(&o.simple, "simple", false, "same as -s")
	fset.BoolVar(&o.full, "full", false, "same as -f")
	fset.BoolVar(&o.raw, "raw", false, "same as -r")
	fset.BoolVar(&o.multi, "multi", false, "print every symbol found in the image")
	fset.BoolVar(&o.tryHarder, "try-harder", cfg.TryHarder, "scan every row when the quick pass finds nothing")
	fset.BoolVar(&o.inverted, "inverted", false, "also look for light symbols on a dark background")
	fset.StringVar(&o.charset, "charset", "", "character set of byte data before any ECI (default ISO-8859-1)")
	fset.StringVar(&o.generate, "g", "", "generate a barcode from a JSON object of AAMVA element IDs to values")
	fset.StringVar(&o.output, "o", "barcode.png", "output PNG file for -g")
	fset.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "give up decoding after this long")
	fset.StringVar(&o.logLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	fset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pdf417decode [flags] <image_file>\n")
		fmt.Fprintf(stderr, "       pdf417decode -g JSON_FILE [-o OUT.png]\n\n")
		fmt.Fprintf(stderr, "Decode a PDF417 barcode from an image (PNG, JPEG, GIF, BMP, TIFF, WebP).\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	level, err := observability.ParseLevel(o.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	log := observability.NewSlogLogger(stderr, level)

	if o.generate != "" {
		err = generate(o, fset.Args(), log)
		if err == nil {
			return exitOK
		}
	} else {
		err = decode(o, fset.Args(), stdout, log)
		if err == nil {
			return exitOK
		}
	}
	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "error: %s\n", ue.msg)
		if ue.msg == "missing image file" {
			fset.Usage()
		}
		return exitUsage
	}
	fmt.Fprintf(stderr, "error: %s: %v\n", kindLabel(err), err)
	return exitFailure
}

func kindLabel(err error) string {
	if errors.Is(err, pdf417scan.ErrWriter) {
		return "WriterError"
	}
	return pdf417scan.KindOf(err).String()
}

func decode(o options, args []string, stdout io.Writer, log observability.Logger) error {
	modes := 0
	for _, set := range []bool{o.simple, o.full, o.raw} {
		if set {
			modes++
		}
	}
	switch {
	case modes > 1:
		return usagef("-s, -f and -r are mutually exclusive")
	case len(args) == 0:
		return usagef("missing image file")
	case len(args) > 1:
		return usagef("expected one image file, got %d", len(args))
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return usagef("%s: file not found", path)
		}
		return usagef("%s: %v", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.Timeout)
	defer cancel()
	scanner := scan.New(&pdf417scan.DecodeOptions{
		TryHarder:    o.tryHarder,
		AlsoInverted: o.inverted,
		Multiple:     o.multi,
		CharacterSet: o.charset,
		Logger:       log,
	})
	cache := scan.NewCache(scanner, o.cfg.CacheSize)
	results, err := tryScan(ctx, cache, data)
	if err != nil {
		return err
	}
	for i, r := range results {
		log.Info("decoded symbol",
			observability.String("file", path),
			observability.Int("rows", r.Rows),
			observability.Int("columns", r.Columns),
			observability.Int("ec_level", r.ECLevel),
			observability.String("modes", r.ModeNames()))
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		if err := printResult(stdout, o, r); err != nil {
			return err
		}
	}
	return nil
}

// tryScan runs the scan but recovers from panics raised on malformed input,
// converting them to errors.
func tryScan(ctx context.Context, cache *scan.Cache, data []byte) (results []*pdf417scan.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = pdf417scan.Errorf(pdf417scan.RowDecodeFailed, "decoder panic: %v", r)
		}
	}()
	return cache.ScanBytes(ctx, data)
}

func printResult(w io.Writer, o options, r *pdf417scan.Result) error {
	switch {
	case o.simple, o.full:
		elements := aamva.Simple
		if o.full {
			elements = aamva.Full
		}
		out, err := aamva.Parse(r.Text, elements).JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	case o.raw:
		fmt.Fprintln(w, r.Text)
		printMetadata(w, r)
	default:
		fmt.Fprintln(w, r.Text)
	}
	return nil
}

func printMetadata(w io.Writer, r *pdf417scan.Result) {
	fmt.Fprintf(w, "# rows: %d\n", r.Rows)
	fmt.Fprintf(w, "# columns: %d\n", r.Columns)
	fmt.Fprintf(w, "# ec level: %d\n", r.ECLevel)
	fmt.Fprintf(w, "# modes: %s\n", r.ModeNames())
	fmt.Fprintf(w, "# charset: %s\n", r.CharacterSet)
	fmt.Fprintf(w, "# errors corrected: %d\n", r.ErrorsCorrected)
	fmt.Fprintf(w, "# erasures corrected: %d\n", r.ErasuresCorrected)
	fmt.Fprintf(w, "# rotation: %d\n", r.Rotation)
	if m := r.Macro; m != nil {
		fmt.Fprintf(w, "# segment: %d\n", m.SegmentIndex)
		fmt.Fprintf(w, "# file id: %s\n", m.FileID)
		fmt.Fprintf(w, "# last segment: %t\n", m.LastSegment)
	}
	codewords := make([]string, len(r.Codewords))
	for i, cw := range r.Codewords {
		codewords[i] = fmt.Sprint(cw)
	}
	fmt.Fprintf(w, "# codewords: %s\n", strings.Join(codewords, " "))
}

func generate(o options, args []string, log observability.Logger) error {
	switch {
	case o.simple || o.full || o.raw || o.multi:
		return usagef("-g cannot be combined with -s, -f, -r or -multi")
	case len(args) > 0:
		return usagef("-g takes no image file")
	}
	data, err := os.ReadFile(o.generate)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return usagef("%s: file not found", o.generate)
		}
		return usagef("%s: %v", o.generate, err)
	}
	pairs, err := aamva.DecodePairs(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", pdf417scan.ErrWriter, o.generate, err)
	}
	payload := aamva.Payload(pairs)

	opts := &pdf417.EncodeOptions{
		Dimensions: &pdf417.Dimensions{
			MinCols: generateColumns,
			MaxCols: generateColumns,
			MinRows: 3,
			MaxRows: 90,
		},
		Scale: generateScale,
	}
	sym, err := pdf417.NewWriter().Symbol(payload, opts)
	if err != nil {
		return err
	}
	img := pdf417scan.BitMatrixToImage(pdf417.Render(sym, 0, 0, opts))

	f, err := os.Create(o.output)
	if err != nil {
		return fmt.Errorf("%w: %v", pdf417scan.ErrWriter, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %v", pdf417scan.ErrWriter, o.output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", pdf417scan.ErrWriter, o.output, err)
	}
	log.Info("wrote barcode",
		observability.String("file", o.output),
		observability.Int("rows", sym.Rows),
		observability.Int("columns", sym.Columns))
	return nil
}
