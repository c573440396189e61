// Copyright 2006 Jeremias Maerki in part, and ZXing Authors in part.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Ported from Java ZXing library.

package encoder

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ericlevine/pdf417scan/charset"
)

// Compaction mode constants
const (
	textCompaction    = 0
	byteCompaction    = 1
	numericCompaction = 2
)

// Text compaction submode constants
const (
	submodeAlpha       = 0
	submodeLower       = 1
	submodeMixed       = 2
	submodePunctuation = 3
)

// Mode latch and shift constants
const (
	latchToText       = 900
	latchToBytePadded = 901
	latchToNumeric    = 902
	shiftToByte       = 913
	latchToByte       = 924
	eciCharset        = 927
)

// numericChunk is the number of digits packed per numeric group; with the
// leading 1 they fit 15 codewords.
const numericChunk = 44

// Compaction represents possible PDF417 barcode compaction types.
type Compaction int

const (
	// CompactionAuto selects compaction mode automatically.
	CompactionAuto Compaction = iota
	// CompactionText forces text compaction mode.
	CompactionText
	// CompactionByte forces byte compaction mode.
	CompactionByte
	// CompactionNumeric forces numeric compaction mode.
	CompactionNumeric
)

// ParseCompaction maps "auto", "text", "byte" or "numeric" to a Compaction.
func ParseCompaction(name string) (Compaction, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return CompactionAuto, nil
	case "text":
		return CompactionText, nil
	case "byte", "binary":
		return CompactionByte, nil
	case "numeric":
		return CompactionNumeric, nil
	}
	return CompactionAuto, fmt.Errorf("unknown compaction %q", name)
}

// textMixedRaw is the raw code table for text compaction Mixed sub-mode.
var textMixedRaw = []byte{
	48, 49, 50, 51, 52, 53, 54, 55, 56, 57, 38, 13, 9, 44, 58,
	35, 45, 46, 36, 47, 43, 37, 42, 61, 94, 0, 32, 0, 0, 0,
}

// textPunctuationRaw is the raw code table for text compaction Punctuation sub-mode.
var textPunctuationRaw = []byte{
	59, 60, 62, 64, 91, 92, 93, 95, 96, 126, 33, 13, 9, 44, 58,
	10, 45, 46, 36, 47, 34, 124, 42, 40, 41, 63, 123, 125, 39, 0,
}

// mixed and punctuation are the inverse lookups of the tables above.
var (
	mixed       [256]int
	punctuation [256]int
)

func init() {
	for i := range mixed {
		mixed[i] = -1
		punctuation[i] = -1
	}
	for i, b := range textMixedRaw {
		if b > 0 {
			mixed[b] = i
		}
	}
	for i, b := range textPunctuationRaw {
		if b > 0 {
			punctuation[b] = i
		}
	}
}

// EncodeHighLevel performs high-level encoding of a PDF417 message using the
// algorithm described in annex P of ISO/IEC 15438:2001(E). The message is
// first converted to eci; a nil eci means ISO-8859-1 when every character
// fits it and UTF-8 otherwise. Any character set other than ISO-8859-1 is
// announced with an ECI designator.
func EncodeHighLevel(msg string, compaction Compaction, eci *charset.ECI) ([]int, error) {
	if len(msg) == 0 {
		return nil, errors.New("empty message not allowed")
	}
	if eci == nil {
		eci = charset.Default
		if !charset.CanEncode(msg, eci) {
			eci = charset.UTF8
		}
	}
	data, err := charset.Encode(msg, eci)
	if err != nil {
		return nil, err
	}

	var out []int
	if eci != charset.Default {
		out = append(out, eciCharset, eci.Value)
	}

	switch compaction {
	case CompactionText:
		for i, ch := range data {
			if !isText(ch) {
				return nil, fmt.Errorf("non-encodable character detected: %q at position #%d", ch, i)
			}
		}
		out, _ = encodeText(data, 0, len(data), out, submodeAlpha)

	case CompactionByte:
		out = encodeBinary(data, 0, len(data), byteCompaction, out)

	case CompactionNumeric:
		if n := determineConsecutiveDigitCount(data, 0); n != len(data) {
			return nil, fmt.Errorf("non-digit character detected: %q at position #%d", data[n], n)
		}
		out = append(out, latchToNumeric)
		out = encodeNumeric(data, 0, len(data), out)

	default: // CompactionAuto
		out = encodeAuto(data, out)
	}
	return out, nil
}

func encodeAuto(data []byte, out []int) []int {
	p := 0
	encodingMode := textCompaction // Default mode, see 4.4.2.1
	textSubMode := submodeAlpha
	for p < len(data) {
		n := determineConsecutiveDigitCount(data, p)
		if n >= 13 {
			out = append(out, latchToNumeric)
			encodingMode = numericCompaction
			textSubMode = submodeAlpha
			out = encodeNumeric(data, p, n, out)
			p += n
			continue
		}
		t := determineConsecutiveTextCount(data, p)
		if t >= 5 || n == len(data) {
			if encodingMode != textCompaction {
				out = append(out, latchToText)
				encodingMode = textCompaction
				textSubMode = submodeAlpha
			}
			out, textSubMode = encodeText(data, p, t, out, textSubMode)
			p += t
			continue
		}
		b := determineConsecutiveBinaryCount(data, p)
		if b == 0 {
			b = 1
		}
		if b == 1 && encodingMode == textCompaction {
			// Shift for one byte instead of latching.
			out = encodeBinary(data, p, 1, textCompaction, out)
		} else {
			out = encodeBinary(data, p, b, encodingMode, out)
			encodingMode = byteCompaction
			textSubMode = submodeAlpha
		}
		p += b
	}
	return out
}

// encodeText encodes parts of the message using Text Compaction as described
// in ISO/IEC 15438:2001(E), chapter 4.4.2. It returns the sub-mode in force
// at the end.
func encodeText(msg []byte, startpos, count int, out []int, initialSubmode int) ([]int, int) {
	tmp := make([]int, 0, count)
	submode := initialSubmode
	idx := 0

	for idx < count {
		ch := msg[startpos+idx]
		switch submode {
		case submodeAlpha:
			switch {
			case isAlphaUpper(ch):
				if ch == ' ' {
					tmp = append(tmp, 26) // space
				} else {
					tmp = append(tmp, int(ch-'A'))
				}
			case isAlphaLower(ch):
				submode = submodeLower
				tmp = append(tmp, 27) // ll
				continue
			case isMixed(ch):
				submode = submodeMixed
				tmp = append(tmp, 28) // ml
				continue
			default:
				tmp = append(tmp, 29, punctuation[ch]) // ps
			}

		case submodeLower:
			switch {
			case isAlphaLower(ch):
				if ch == ' ' {
					tmp = append(tmp, 26) // space
				} else {
					tmp = append(tmp, int(ch-'a'))
				}
			case isAlphaUpper(ch):
				tmp = append(tmp, 27, int(ch-'A')) // as
			case isMixed(ch):
				submode = submodeMixed
				tmp = append(tmp, 28) // ml
				continue
			default:
				tmp = append(tmp, 29, punctuation[ch]) // ps
			}

		case submodeMixed:
			switch {
			case isMixed(ch):
				tmp = append(tmp, mixed[ch])
			case isAlphaUpper(ch):
				submode = submodeAlpha
				tmp = append(tmp, 28) // al
				continue
			case isAlphaLower(ch):
				submode = submodeLower
				tmp = append(tmp, 27) // ll
				continue
			default:
				if idx+1 < count && isPunctuation(msg[startpos+idx+1]) {
					submode = submodePunctuation
					tmp = append(tmp, 25) // pl
					continue
				}
				tmp = append(tmp, 29, punctuation[ch]) // ps
			}

		default: // submodePunctuation
			if !isPunctuation(ch) {
				submode = submodeAlpha
				tmp = append(tmp, 29) // al
				continue
			}
			tmp = append(tmp, punctuation[ch])
		}
		idx++
	}

	for i := 0; i+1 < len(tmp); i += 2 {
		out = append(out, tmp[i]*30+tmp[i+1])
	}
	if len(tmp)%2 != 0 {
		out = append(out, tmp[len(tmp)-1]*30+29) // ps
	}
	return out, submode
}

// encodeBinary encodes parts of the message using Byte Compaction as described
// in ISO/IEC 15438:2001(E), chapter 4.4.3.
func encodeBinary(bytes []byte, startpos, count, startmode int, out []int) []int {
	switch {
	case count == 1 && startmode == textCompaction:
		out = append(out, shiftToByte)
	case count%6 == 0:
		out = append(out, latchToByte)
	default:
		out = append(out, latchToBytePadded)
	}

	idx := startpos
	// Encode sixpacks
	var chars [5]int
	for startpos+count-idx >= 6 {
		var t int64
		for i := 0; i < 6; i++ {
			t = t<<8 | int64(bytes[idx+i])
		}
		for i := len(chars) - 1; i >= 0; i-- {
			chars[i] = int(t % 900)
			t /= 900
		}
		out = append(out, chars[:]...)
		idx += 6
	}
	// Encode rest (remaining n<6 bytes if any)
	for i := idx; i < startpos+count; i++ {
		out = append(out, int(bytes[i]))
	}
	return out
}

// encodeNumeric encodes parts of the message using Numeric Compaction.
func encodeNumeric(msg []byte, startpos, count int, out []int) []int {
	num900 := big.NewInt(900)
	for idx := 0; idx < count; {
		length := min(numericChunk, count-idx)
		part := "1" + string(msg[startpos+idx:startpos+idx+length])
		bigint, _ := new(big.Int).SetString(part, 10)

		var group []int
		mod := new(big.Int)
		for bigint.Sign() != 0 {
			bigint.DivMod(bigint, num900, mod)
			group = append(group, int(mod.Int64()))
		}
		for i := len(group) - 1; i >= 0; i-- {
			out = append(out, group[i])
		}
		idx += length
	}
	return out
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaUpper(ch byte) bool {
	return ch == ' ' || (ch >= 'A' && ch <= 'Z')
}

func isAlphaLower(ch byte) bool {
	return ch == ' ' || (ch >= 'a' && ch <= 'z')
}

func isMixed(ch byte) bool {
	return mixed[ch] != -1
}

func isPunctuation(ch byte) bool {
	return punctuation[ch] != -1
}

func isText(ch byte) bool {
	return ch == '\t' || ch == '\n' || ch == '\r' || (ch >= 32 && ch <= 126)
}

// determineConsecutiveDigitCount determines the number of consecutive
// characters that are encodable using numeric compaction.
func determineConsecutiveDigitCount(msg []byte, startpos int) int {
	count := 0
	for idx := startpos; idx < len(msg) && isDigit(msg[idx]); idx++ {
		count++
	}
	return count
}

// determineConsecutiveTextCount determines the number of consecutive
// characters that are encodable using text compaction.
func determineConsecutiveTextCount(msg []byte, startpos int) int {
	idx := startpos
	for idx < len(msg) {
		numericCount := 0
		for numericCount < 13 && idx < len(msg) && isDigit(msg[idx]) {
			numericCount++
			idx++
		}
		if numericCount >= 13 {
			return idx - startpos - numericCount
		}
		if numericCount > 0 {
			// Heuristic: All text-encodable chars or digits are binary encodable
			continue
		}
		if !isText(msg[idx]) {
			break
		}
		idx++
	}
	return idx - startpos
}

// determineConsecutiveBinaryCount determines the number of consecutive
// characters that are encodable using binary compaction.
func determineConsecutiveBinaryCount(msg []byte, startpos int) int {
	idx := startpos
	for idx < len(msg) {
		numericCount := 0
		for i := idx; i < len(msg) && numericCount < 13 && isDigit(msg[i]); i++ {
			numericCount++
		}
		if numericCount >= 13 {
			return idx - startpos
		}
		idx++
	}
	return idx - startpos
}
