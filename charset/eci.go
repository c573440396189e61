// Package charset maps Extended Channel Interpretation (ECI) designators to
// character encodings and converts payload bytes to and from UTF-8.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownECI is returned for ECI designators outside the table.
var ErrUnknownECI = errors.New("charset: unknown ECI value")

// ECI is a character set designator.
type ECI struct {
	Value    int
	Name     string
	Encoding encoding.Encoding
	Aliases  []string
}

var (
	Cp437      = &ECI{0, "Cp437", charmap.CodePage437, []string{"IBM437"}}
	ISO8859_1  = &ECI{1, "ISO8859_1", charmap.ISO8859_1, []string{"ISO-8859-1", "latin1"}}
	ISO8859_2  = &ECI{4, "ISO8859_2", charmap.ISO8859_2, []string{"ISO-8859-2"}}
	ISO8859_3  = &ECI{5, "ISO8859_3", charmap.ISO8859_3, []string{"ISO-8859-3"}}
	ISO8859_4  = &ECI{6, "ISO8859_4", charmap.ISO8859_4, []string{"ISO-8859-4"}}
	ISO8859_5  = &ECI{7, "ISO8859_5", charmap.ISO8859_5, []string{"ISO-8859-5"}}
	ISO8859_6  = &ECI{8, "ISO8859_6", charmap.ISO8859_6, []string{"ISO-8859-6"}}
	ISO8859_7  = &ECI{9, "ISO8859_7", charmap.ISO8859_7, []string{"ISO-8859-7"}}
	ISO8859_8  = &ECI{10, "ISO8859_8", charmap.ISO8859_8, []string{"ISO-8859-8"}}
	ISO8859_9  = &ECI{11, "ISO8859_9", charmap.ISO8859_9, []string{"ISO-8859-9"}}
	ISO8859_10 = &ECI{12, "ISO8859_10", charmap.ISO8859_10, []string{"ISO-8859-10"}}
	ISO8859_11 = &ECI{13, "ISO8859_11", charmap.Windows874, []string{"ISO-8859-11", "TIS-620"}}
	ISO8859_13 = &ECI{15, "ISO8859_13", charmap.ISO8859_13, []string{"ISO-8859-13"}}
	ISO8859_14 = &ECI{16, "ISO8859_14", charmap.ISO8859_14, []string{"ISO-8859-14"}}
	ISO8859_15 = &ECI{17, "ISO8859_15", charmap.ISO8859_15, []string{"ISO-8859-15"}}
	ISO8859_16 = &ECI{18, "ISO8859_16", charmap.ISO8859_16, []string{"ISO-8859-16"}}
	SJIS       = &ECI{20, "SJIS", japanese.ShiftJIS, []string{"Shift_JIS"}}
	Cp1250     = &ECI{21, "Cp1250", charmap.Windows1250, []string{"windows-1250"}}
	Cp1251     = &ECI{22, "Cp1251", charmap.Windows1251, []string{"windows-1251"}}
	Cp1252     = &ECI{23, "Cp1252", charmap.Windows1252, []string{"windows-1252"}}
	Cp1256     = &ECI{24, "Cp1256", charmap.Windows1256, []string{"windows-1256"}}
	UTF16BE    = &ECI{25, "UnicodeBigUnmarked", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), []string{"UTF-16BE", "UnicodeBig"}}
	UTF8       = &ECI{26, "UTF8", unicode.UTF8, []string{"UTF-8"}}
	ASCII      = &ECI{27, "ASCII", charmap.ISO8859_1, []string{"US-ASCII"}}
	Big5       = &ECI{28, "Big5", traditionalchinese.Big5, nil}
	GB18030    = &ECI{29, "GB18030", simplifiedchinese.GB18030, []string{"GB2312", "EUC_CN", "GBK"}}
	EUCKR      = &ECI{30, "EUC_KR", korean.EUCKR, []string{"EUC-KR"}}
)

var (
	byValue = map[int]*ECI{}
	byName  = map[string]*ECI{}
)

func init() {
	all := []*ECI{
		Cp437, ISO8859_1, ISO8859_2, ISO8859_3, ISO8859_4, ISO8859_5,
		ISO8859_6, ISO8859_7, ISO8859_8, ISO8859_9, ISO8859_10, ISO8859_11,
		ISO8859_13, ISO8859_14, ISO8859_15, ISO8859_16, SJIS, Cp1250,
		Cp1251, Cp1252, Cp1256, UTF16BE, UTF8, ASCII, Big5, GB18030, EUCKR,
	}
	for _, eci := range all {
		byValue[eci.Value] = eci
		byName[strings.ToUpper(eci.Name)] = eci
		for _, alias := range eci.Aliases {
			byName[strings.ToUpper(alias)] = eci
		}
	}
	// Legacy designators from the original AIM ECI assignment.
	byValue[2] = Cp437
	byValue[3] = ISO8859_1
	byValue[170] = ASCII
}

// ByValue returns the ECI for a designator value in [0, 899].
func ByValue(value int) (*ECI, error) {
	if eci, ok := byValue[value]; ok {
		return eci, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownECI, value)
}

// ByName returns the ECI for an encoding name or alias, ignoring case, or
// nil when the name is unknown.
func ByName(name string) *ECI {
	return byName[strings.ToUpper(name)]
}

// Default is the character set PDF417 assumes before any ECI designator.
var Default = ISO8859_1

// Decode converts data from the ECI's encoding to UTF-8.
func Decode(data []byte, eci *ECI) (string, error) {
	if eci == nil {
		eci = Default
	}
	out, err := eci.Encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("charset: decoding %s: %w", eci.Name, err)
	}
	return string(out), nil
}

// Encode converts UTF-8 text to the ECI's encoding. It fails when a
// character has no representation in the target encoding.
func Encode(s string, eci *ECI) ([]byte, error) {
	if eci == nil {
		eci = Default
	}
	out, err := eci.Encoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("charset: encoding %s: %w", eci.Name, err)
	}
	return out, nil
}

// CanEncode reports whether every character of s exists in the encoding.
func CanEncode(s string, eci *ECI) bool {
	_, err := eci.Encoding.NewEncoder().String(s)
	return err == nil
}
