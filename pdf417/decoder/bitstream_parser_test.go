package decoder

import (
	"errors"
	"testing"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/charset"
	"github.com/ericlevine/pdf417scan/pdf417/encoder"
)

// withLength prefixes data codewords with their symbol length descriptor.
func withLength(data ...int) []int {
	return append([]int{len(data) + 1}, data...)
}

func TestDecodeText(t *testing.T) {
	p, err := decodeBitStream(withLength(214, 341, 446, 674, 521, 119), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.text != "HELLO WORLD" {
		t.Errorf("text = %q", p.text)
	}
	if len(p.modes) != 1 || p.modes[0] != pdf417scan.ModeText {
		t.Errorf("modes = %v", p.modes)
	}
	if p.charset != charset.Default.Name {
		t.Errorf("charset = %q", p.charset)
	}
}

func TestDecodeBytePerCodeword(t *testing.T) {
	p, err := decodeBitStream(withLength(901, 65, 66, 67), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.text != "ABC" || string(p.raw) != "ABC" {
		t.Errorf("text = %q raw = %q", p.text, p.raw)
	}
	if p.modes[0] != pdf417scan.ModeByte {
		t.Errorf("modes = %v", p.modes)
	}
}

func TestDecodeDefaultCharset(t *testing.T) {
	p, err := decodeBitStream(withLength(901, 0xE9), charset.ISO8859_1)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.text != "é" {
		t.Errorf("text = %q", p.text)
	}
}

func TestDecodeECISwitch(t *testing.T) {
	p, err := decodeBitStream(withLength(927, 26, 901, 0xC3, 0xA9), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.text != "é" {
		t.Errorf("text = %q", p.text)
	}
	if p.charset != charset.UTF8.Name {
		t.Errorf("charset = %q", p.charset)
	}
}

func TestDecodeRoundTripsEncoder(t *testing.T) {
	tests := []struct {
		contents   string
		compaction encoder.Compaction
		mode       pdf417scan.Mode
	}{
		{"HELLO WORLD", encoder.CompactionAuto, pdf417scan.ModeText},
		{"Mixed case, digits 42 & punctuation!?", encoder.CompactionAuto, pdf417scan.ModeText},
		{"a{b}c|d~e;f<g>h@i[j]k\n", encoder.CompactionText, pdf417scan.ModeText},
		{"123456789012345", encoder.CompactionAuto, pdf417scan.ModeNumeric},
		{"0000000000000000000000000000000000000000000000000001", encoder.CompactionNumeric, pdf417scan.ModeNumeric},
		{"sixbyt", encoder.CompactionByte, pdf417scan.ModeByte},
		{"seven b", encoder.CompactionByte, pdf417scan.ModeByte},
		{"elevenbytes", encoder.CompactionByte, pdf417scan.ModeByte},
		{"\x01\x02\x03\x00 binary run", encoder.CompactionAuto, pdf417scan.ModeByte},
		{"abc\x01def", encoder.CompactionAuto, pdf417scan.ModeByte},
		{"abcdef\x01", encoder.CompactionAuto, pdf417scan.ModeText},
		{"abcdef\x011234567890123", encoder.CompactionAuto, pdf417scan.ModeText},
		{"text then 12345678901234567890 then text", encoder.CompactionAuto, pdf417scan.ModeText},
		{"Ünïcödé ✓", encoder.CompactionAuto, pdf417scan.ModeByte},
	}
	for _, tc := range tests {
		codewords, err := encoder.EncodeHighLevel(tc.contents, tc.compaction, nil)
		if err != nil {
			t.Fatalf("%q: encode: %v", tc.contents, err)
		}
		p, err := decodeBitStream(withLength(codewords...), nil)
		if err != nil {
			t.Fatalf("%q: decode: %v", tc.contents, err)
		}
		if p.text != tc.contents {
			t.Errorf("got %q, want %q", p.text, tc.contents)
		}
		if p.modes[0] != tc.mode {
			t.Errorf("%q: first mode %v, want %v", tc.contents, p.modes[0], tc.mode)
		}
	}
}

func TestDecodeNumericWithoutLeadingOne(t *testing.T) {
	_, err := decodeBitStream(withLength(902, 0), nil)
	if !errors.Is(err, pdf417scan.ErrMalformedCompaction) {
		t.Fatalf("got %v, want MalformedCompaction", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name      string
		codewords []int
	}{
		{"empty", withLength()},
		{"truncated shift", withLength(1, 913)},
		{"shifted value above 255", withLength(1, 913, 300)},
		{"truncated ECI", withLength(1, 927)},
		{"unknown ECI", withLength(927, 899, 1)},
		{"terminator outside macro", withLength(1, 922)},
		{"optional field outside macro", withLength(923, 1)},
		{"reserved codeword", withLength(1, 905, 1)},
		{"byte value above 255", withLength(901, 1, 2, 300)},
		{"byte group too large", withLength(924, 899, 899, 899, 899, 899)},
		{"unknown macro field", withLength(1, 928, 111, 102, 17, 923, 9, 1)},
		{"stray codeword in macro", withLength(1, 928, 111, 102, 17, 900, 1)},
	}
	for _, tc := range tests {
		_, err := decodeBitStream(tc.codewords, nil)
		if !errors.Is(err, pdf417scan.ErrMalformedCompaction) {
			t.Errorf("%s: got %v, want MalformedCompaction", tc.name, err)
		}
	}
}

func TestDecodeMacroBlock(t *testing.T) {
	// "AB", segment 2 of 4 of file 017053 named "AB", last segment.
	p, err := decodeBitStream(withLength(1, 928, 111, 102, 17, 53, 923, 1, 14, 923, 0, 1, 922), nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.text != "AB" {
		t.Errorf("text = %q", p.text)
	}
	m := p.macro
	if m == nil {
		t.Fatal("no macro metadata")
	}
	if m.SegmentIndex != 2 {
		t.Errorf("segment index = %d", m.SegmentIndex)
	}
	if m.FileID != "017053" {
		t.Errorf("file id = %q", m.FileID)
	}
	if m.SegmentCount != 4 {
		t.Errorf("segment count = %d", m.SegmentCount)
	}
	if m.FileName != "AB" {
		t.Errorf("file name = %q", m.FileName)
	}
	if !m.LastSegment {
		t.Error("last segment flag not set")
	}
	if m.Timestamp != -1 || m.FileSize != -1 || m.Checksum != -1 {
		t.Errorf("absent fields = %d %d %d, want -1", m.Timestamp, m.FileSize, m.Checksum)
	}
}

func TestNextMode(t *testing.T) {
	tests := []struct {
		code     int
		mode     compactionMode
		consumed bool
	}{
		{0, modeText, false},
		{899, modeText, false},
		{900, modeText, true},
		{901, modeByte, true},
		{902, modeNumeric, true},
		{913, modeByteShift, true},
		{922, modeMalformed, true},
		{923, modeMalformed, true},
		{924, modeByte6, true},
		{925, modeECI, true},
		{926, modeECI, true},
		{927, modeECI, true},
		{928, modeMacro, true},
		{910, modeMalformed, true},
	}
	for _, tc := range tests {
		mode, consumed := nextMode(tc.code)
		if mode != tc.mode || consumed != tc.consumed {
			t.Errorf("nextMode(%d) = %v, %v; want %v, %v", tc.code, mode, consumed, tc.mode, tc.consumed)
		}
	}
}
