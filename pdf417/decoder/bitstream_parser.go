package decoder

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	pdf417scan "github.com/ericlevine/pdf417scan"
	"github.com/ericlevine/pdf417scan/charset"
)

// Mode and function codewords.
const (
	textLatch       = 900
	byteLatch       = 901
	numericLatch    = 902
	byteShift       = 913
	macroTerminator = 922
	macroOptional   = 923
	byteLatch6      = 924
	eciUserDefined  = 925
	eciGeneral      = 926
	eciCharset      = 927
	macroControl    = 928

	maxNumericCodewords = 15
	segmentIndexLength  = 2
)

// Macro PDF417 optional field designators.
const (
	macroFileName = iota
	macroSegmentCount
	macroTimestamp
	macroSender
	macroAddressee
	macroFileSize
	macroChecksum
)

// compactionMode is a state of the data codeword state machine.
type compactionMode int

const (
	modeText compactionMode = iota
	modeByte
	modeByte6
	modeByteShift
	modeNumeric
	modeECI
	modeMacro
	modeMalformed
)

var compactionModeNames = [...]string{
	modeText:      "text",
	modeByte:      "byte",
	modeByte6:     "byte6",
	modeByteShift: "byte shift",
	modeNumeric:   "numeric",
	modeECI:       "ECI",
	modeMacro:     "macro",
	modeMalformed: "malformed",
}

func (m compactionMode) String() string { return compactionModeNames[m] }

// nextMode is the transition function of the state machine. consumed is
// false for data codewords, which continue in text compaction without a
// latch.
func nextMode(code int) (mode compactionMode, consumed bool) {
	switch {
	case code < textLatch:
		return modeText, false
	case code == textLatch:
		return modeText, true
	case code == byteLatch:
		return modeByte, true
	case code == byteLatch6:
		return modeByte6, true
	case code == byteShift:
		return modeByteShift, true
	case code == numericLatch:
		return modeNumeric, true
	case code == eciCharset || code == eciGeneral || code == eciUserDefined:
		return modeECI, true
	case code == macroControl:
		return modeMacro, true
	}
	// 922 and 923 only occur inside a macro control block; the remaining
	// values are reserved.
	return modeMalformed, true
}

// endsRun reports whether code terminates a text or numeric run.
func endsRun(code int) bool {
	return code >= textLatch && code != byteShift
}

type textMode int

const (
	textAlpha textMode = iota
	textLower
	textMixed
	textPunct
	textAlphaShift
	textPunctShift
)

// Text compaction sub-mode switches.
const (
	tcPL  = 25
	tcLL  = 27
	tcAS  = 27
	tcML  = 28
	tcAL  = 28
	tcPS  = 29
	tcPAL = 29
)

var (
	punctChars = []byte(";<>@[\\]_`~!\r\t,:\n-.$/\"|*()?{}'")
	mixedChars = []byte("0123456789&\r\t,:#-.$/+%*=^")
)

// exp900 holds powers of 900 for numeric compaction.
var exp900 [maxNumericCodewords + 1]*big.Int

func init() {
	exp900[0] = big.NewInt(1)
	nineHundred := big.NewInt(900)
	for i := 1; i < len(exp900); i++ {
		exp900[i] = new(big.Int).Mul(exp900[i-1], nineHundred)
	}
}

// textState tracks the latched and shifted text sub-mode.
type textState struct {
	subMode      textMode
	priorToShift textMode
}

// decode consumes one base-30 text value and returns the character it
// produces, if any.
func (s *textState) decode(v int) (byte, bool) {
	switch s.subMode {
	case textAlpha, textLower:
		switch {
		case v < 26 && s.subMode == textAlpha:
			return byte('A' + v), true
		case v < 26:
			return byte('a' + v), true
		case v == 26:
			return ' ', true
		case v == tcLL && s.subMode == textAlpha:
			s.subMode = textLower
		case v == tcAS:
			s.priorToShift, s.subMode = s.subMode, textAlphaShift
		case v == tcML:
			s.subMode = textMixed
		case v == tcPS:
			s.priorToShift, s.subMode = s.subMode, textPunctShift
		}
	case textMixed:
		switch {
		case v < tcPL:
			return mixedChars[v], true
		case v == tcPL:
			s.subMode = textPunct
		case v == 26:
			return ' ', true
		case v == tcLL:
			s.subMode = textLower
		case v == tcAL:
			s.subMode = textAlpha
		case v == tcPS:
			s.priorToShift, s.subMode = s.subMode, textPunctShift
		}
	case textPunct:
		if v < tcPAL {
			return punctChars[v], true
		}
		s.subMode = textAlpha
	case textAlphaShift:
		s.subMode = s.priorToShift
		switch {
		case v < 26:
			return byte('A' + v), true
		case v == 26:
			return ' ', true
		}
	case textPunctShift:
		s.subMode = s.priorToShift
		if v < tcPAL {
			return punctChars[v], true
		}
		s.subMode = textAlpha
	}
	return 0, false
}

// endShift drops a pending single-character shift.
func (s *textState) endShift() {
	if s.subMode == textAlphaShift || s.subMode == textPunctShift {
		s.subMode = s.priorToShift
	}
}

// payloadBuffer accumulates output bytes in the character set currently
// designated by ECI and converts each run to UTF-8 on a switch.
type payloadBuffer struct {
	eci     *charset.ECI
	pending []byte
	raw     []byte
	text    strings.Builder
	modes   []pdf417scan.Mode
}

func newPayloadBuffer(eci *charset.ECI) *payloadBuffer {
	if eci == nil {
		eci = charset.Default
	}
	return &payloadBuffer{eci: eci}
}

func (b *payloadBuffer) writeByte(mode pdf417scan.Mode, c byte) {
	b.used(mode)
	b.pending = append(b.pending, c)
	b.raw = append(b.raw, c)
}

func (b *payloadBuffer) writeString(mode pdf417scan.Mode, s string) {
	if s == "" {
		return
	}
	b.used(mode)
	b.pending = append(b.pending, s...)
	b.raw = append(b.raw, s...)
}

func (b *payloadBuffer) used(mode pdf417scan.Mode) {
	for _, m := range b.modes {
		if m == mode {
			return
		}
	}
	b.modes = append(b.modes, mode)
}

func (b *payloadBuffer) flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	s, err := charset.Decode(b.pending, b.eci)
	if err != nil {
		return err
	}
	b.text.WriteString(s)
	b.pending = b.pending[:0]
	return nil
}

func (b *payloadBuffer) switchCharset(eci *charset.ECI) error {
	if err := b.flush(); err != nil {
		return err
	}
	b.eci = eci
	return nil
}

func (b *payloadBuffer) String() (string, error) {
	if err := b.flush(); err != nil {
		return "", err
	}
	return b.text.String(), nil
}

func (b *payloadBuffer) empty() bool {
	return len(b.raw) == 0
}

// payload is the outcome of running the state machine over the data
// codewords.
type payload struct {
	text    string
	raw     []byte
	modes   []pdf417scan.Mode
	charset string
	macro   *pdf417scan.MacroMetadata
}

// bitstreamParser runs the compaction state machine. codewords holds the
// data codewords only, symbol length descriptor first.
type bitstreamParser struct {
	codewords []int
	pos       int
	out       *payloadBuffer
	text      textState
	macro     *pdf417scan.MacroMetadata
}

func malformed(pos int, format string, args ...any) error {
	return pdf417scan.Errorf(pdf417scan.MalformedCompaction, "codeword %d: %s", pos, fmt.Sprintf(format, args...))
}

// decodeBitStream decodes the data codewords into a payload, starting in
// text compaction with the given default character set.
func decodeBitStream(codewords []int, defaultCharset *charset.ECI) (*payload, error) {
	p := &bitstreamParser{
		codewords: codewords,
		pos:       1,
		out:       newPayloadBuffer(defaultCharset),
	}
	for p.pos < len(p.codewords) {
		code := p.codewords[p.pos]
		mode, consumed := nextMode(code)
		if consumed {
			p.pos++
		}
		if err := p.run(mode, code); err != nil {
			return nil, err
		}
	}
	if p.out.empty() && p.macro == nil {
		return nil, malformed(p.pos, "no data")
	}
	text, err := p.out.String()
	if err != nil {
		return nil, malformed(p.pos, "%v", err)
	}
	return &payload{
		text:    text,
		raw:     p.out.raw,
		modes:   p.out.modes,
		charset: p.out.eci.Name,
		macro:   p.macro,
	}, nil
}

func (p *bitstreamParser) run(mode compactionMode, code int) error {
	switch mode {
	case modeText:
		p.text = textState{}
		return p.textCompaction(p.out)
	case modeByte, modeByte6:
		return p.byteCompaction(mode)
	case modeByteShift:
		return p.shiftedByte(p.out)
	case modeNumeric:
		return p.numericCompaction(p.out)
	case modeECI:
		return p.eci(code)
	case modeMacro:
		return p.macroBlock()
	}
	return malformed(p.pos-1, "mode codeword %d not permitted here", code)
}

// textCompaction decodes codeword pairs until a codeword that ends the
// run. Latches back to alpha, byte shifts and ECIs are handled in place.
func (p *bitstreamParser) textCompaction(out *payloadBuffer) error {
	for p.pos < len(p.codewords) {
		code := p.codewords[p.pos]
		switch {
		case code < textLatch:
			p.pos++
			for _, v := range [2]int{code / 30, code % 30} {
				if ch, ok := p.text.decode(v); ok {
					out.writeByte(pdf417scan.ModeText, ch)
				}
			}
		case code == textLatch:
			p.pos++
			p.text = textState{}
		case code == byteShift:
			p.pos++
			p.text.endShift()
			if err := p.shiftedByte(out); err != nil {
				return err
			}
		case code == eciCharset && out == p.out:
			p.pos++
			if err := p.eci(code); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// shiftedByte emits the single byte following a byte shift.
func (p *bitstreamParser) shiftedByte(out *payloadBuffer) error {
	if p.pos >= len(p.codewords) {
		return malformed(p.pos, "byte shift at end of data")
	}
	code := p.codewords[p.pos]
	if code > 0xff {
		return malformed(p.pos, "byte shift value %d", code)
	}
	p.pos++
	out.writeByte(pdf417scan.ModeByte, byte(code))
	return nil
}

// byteCompaction packs groups of 5 codewords into 6 bytes. Under latch
// 901 a group shorter than 5, or the last group of the run, is sent one
// byte per codeword instead.
func (p *bitstreamParser) byteCompaction(mode compactionMode) error {
	for p.pos < len(p.codewords) {
		code := p.codewords[p.pos]
		if code == eciCharset {
			p.pos++
			if err := p.eci(code); err != nil {
				return err
			}
			continue
		}
		if code >= textLatch {
			return nil
		}
		count := 0
		for p.pos+count < len(p.codewords) && count < 5 && p.codewords[p.pos+count] < textLatch {
			count++
		}
		more := p.pos+count < len(p.codewords) && p.codewords[p.pos+count] < textLatch
		if count == 5 && (mode == modeByte6 || more) {
			var value int64
			for i := 0; i < 5; i++ {
				value = 900*value + int64(p.codewords[p.pos+i])
			}
			if value >= 1<<48 {
				return malformed(p.pos, "byte group value exceeds 6 bytes")
			}
			for i := 0; i < 6; i++ {
				p.out.writeByte(pdf417scan.ModeByte, byte(value>>uint(8*(5-i))))
			}
			p.pos += 5
			continue
		}
		for i := 0; i < count; i++ {
			v := p.codewords[p.pos]
			if v > 0xff {
				return malformed(p.pos, "byte value %d", v)
			}
			p.out.writeByte(pdf417scan.ModeByte, byte(v))
			p.pos++
		}
	}
	return nil
}

// numericCompaction converts groups of up to 15 codewords from base 900 to
// decimal. A numeric latch inside the run closes the current group.
func (p *bitstreamParser) numericCompaction(out *payloadBuffer) error {
	group := make([]int, 0, maxNumericCodewords)
	flush := func() error {
		if len(group) == 0 {
			return nil
		}
		s, err := base900ToBase10(group)
		if err != nil {
			return malformed(p.pos, "%v", err)
		}
		out.writeString(pdf417scan.ModeNumeric, s)
		group = group[:0]
		return nil
	}
	for p.pos < len(p.codewords) {
		code := p.codewords[p.pos]
		switch {
		case code < textLatch:
			group = append(group, code)
			p.pos++
			if len(group) == maxNumericCodewords {
				if err := flush(); err != nil {
					return err
				}
			}
		case code == numericLatch:
			p.pos++
			if err := flush(); err != nil {
				return err
			}
		default:
			return flush()
		}
	}
	return flush()
}

// base900ToBase10 converts a numeric group. Every group carries a leading
// 1 digit that is not part of the data.
func base900ToBase10(codewords []int) (string, error) {
	result := new(big.Int)
	term := new(big.Int)
	for i, c := range codewords {
		term.Mul(exp900[len(codewords)-i-1], big.NewInt(int64(c)))
		result.Add(result, term)
	}
	s := result.String()
	if s == "" || s[0] != '1' {
		return "", fmt.Errorf("numeric group %s lacks the leading 1", s)
	}
	return s[1:], nil
}

// eci applies the designator following an ECI codeword. Only character
// set designators change the output; the others are skipped.
func (p *bitstreamParser) eci(code int) error {
	operands := 1
	if code == eciGeneral {
		operands = 2
	}
	if p.pos+operands > len(p.codewords) {
		return malformed(p.pos, "truncated ECI")
	}
	value := p.codewords[p.pos]
	p.pos += operands
	if code != eciCharset {
		return nil
	}
	eci, err := charset.ByValue(value)
	if err != nil {
		return malformed(p.pos-1, "%v", err)
	}
	if err := p.out.switchCharset(eci); err != nil {
		return malformed(p.pos-1, "%v", err)
	}
	return nil
}

// macroBlock parses a Macro PDF417 control block, which runs to the end of
// the data.
func (p *bitstreamParser) macroBlock() error {
	if p.macro != nil {
		return malformed(p.pos-1, "second macro control block")
	}
	if p.pos+segmentIndexLength > len(p.codewords) {
		return malformed(p.pos, "truncated segment index")
	}
	meta := &pdf417scan.MacroMetadata{
		SegmentCount: -1,
		Timestamp:    -1,
		FileSize:     -1,
		Checksum:     -1,
	}
	segmentIndex, err := base900ToBase10(p.codewords[p.pos : p.pos+segmentIndexLength])
	if err != nil {
		return malformed(p.pos, "segment index: %v", err)
	}
	p.pos += segmentIndexLength
	if segmentIndex != "" {
		if meta.SegmentIndex, err = strconv.Atoi(segmentIndex); err != nil {
			return malformed(p.pos, "segment index %q", segmentIndex)
		}
	}

	var fileID strings.Builder
	for p.pos < len(p.codewords) && p.codewords[p.pos] < textLatch {
		fmt.Fprintf(&fileID, "%03d", p.codewords[p.pos])
		p.pos++
	}
	if fileID.Len() == 0 {
		return malformed(p.pos, "missing file ID")
	}
	meta.FileID = fileID.String()

	optionalStart := -1
	if p.pos < len(p.codewords) && p.codewords[p.pos] == macroOptional {
		optionalStart = p.pos + 1
	}
	for p.pos < len(p.codewords) {
		switch p.codewords[p.pos] {
		case macroOptional:
			p.pos++
			if err := p.macroField(meta); err != nil {
				return err
			}
		case macroTerminator:
			p.pos++
			meta.LastSegment = true
		default:
			return malformed(p.pos, "codeword %d inside macro control block", p.codewords[p.pos])
		}
	}
	if optionalStart >= 0 {
		end := p.pos
		if meta.LastSegment {
			end--
		}
		if end > optionalStart {
			meta.OptionalData = append([]int(nil), p.codewords[optionalStart:end]...)
		}
	}
	p.macro = meta
	return nil
}

func (p *bitstreamParser) macroField(meta *pdf417scan.MacroMetadata) error {
	if p.pos >= len(p.codewords) {
		return malformed(p.pos, "missing macro field designator")
	}
	field := p.codewords[p.pos]
	p.pos++
	sub := newPayloadBuffer(charset.Default)
	switch field {
	case macroFileName, macroSender, macroAddressee:
		p.text = textState{}
		if err := p.textCompaction(sub); err != nil {
			return err
		}
	case macroSegmentCount, macroTimestamp, macroFileSize, macroChecksum:
		if err := p.numericCompaction(sub); err != nil {
			return err
		}
	default:
		return malformed(p.pos-1, "unknown macro field %d", field)
	}
	value, err := sub.String()
	if err != nil {
		return malformed(p.pos, "%v", err)
	}
	switch field {
	case macroFileName:
		meta.FileName = value
	case macroSender:
		meta.Sender = value
	case macroAddressee:
		meta.Addressee = value
	case macroSegmentCount:
		meta.SegmentCount, err = strconv.Atoi(value)
	case macroTimestamp:
		meta.Timestamp, err = strconv.ParseInt(value, 10, 64)
	case macroFileSize:
		meta.FileSize, err = strconv.ParseInt(value, 10, 64)
	case macroChecksum:
		meta.Checksum, err = strconv.Atoi(value)
	}
	if err != nil {
		return malformed(p.pos, "macro field %d: %q", field, value)
	}
	return nil
}
