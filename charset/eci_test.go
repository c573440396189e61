package charset

import (
	"bytes"
	"errors"
	"testing"
)

func TestByValue(t *testing.T) {
	tests := []struct {
		value int
		want  *ECI
	}{
		{0, Cp437},
		{2, Cp437},
		{3, ISO8859_1},
		{20, SJIS},
		{26, UTF8},
		{170, ASCII},
	}
	for _, tt := range tests {
		got, err := ByValue(tt.value)
		if err != nil || got != tt.want {
			t.Errorf("ByValue(%d) = %v, %v; want %s", tt.value, got, err, tt.want.Name)
		}
	}
	if _, err := ByValue(899); !errors.Is(err, ErrUnknownECI) {
		t.Errorf("ByValue(899) err = %v, want ErrUnknownECI", err)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf8", "Shift_JIS", "iso-8859-1", "GBK"} {
		if ByName(name) == nil {
			t.Errorf("ByName(%q) = nil", name)
		}
	}
	if ByName("klingon") != nil {
		t.Error("unknown name should return nil")
	}
}

func TestDecodeLatin1Default(t *testing.T) {
	got, err := Decode([]byte{'c', 'a', 'f', 0xE9}, nil)
	if err != nil || got != "café" {
		t.Errorf("Decode = %q, %v; want café", got, err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		eci  *ECI
		text string
	}{
		{SJIS, "日本語"},
		{GB18030, "中文"},
		{ISO8859_7, "Ελληνικά"},
		{UTF16BE, "héllo"},
		{EUCKR, "한국어"},
	}
	for _, tt := range tests {
		b, err := Encode(tt.text, tt.eci)
		if err != nil {
			t.Fatalf("Encode(%q, %s): %v", tt.text, tt.eci.Name, err)
		}
		if bytes.Equal(b, []byte(tt.text)) && tt.eci != UTF8 {
			t.Errorf("%s: encoding left UTF-8 bytes unchanged", tt.eci.Name)
		}
		got, err := Decode(b, tt.eci)
		if err != nil || got != tt.text {
			t.Errorf("Decode(%s) = %q, %v; want %q", tt.eci.Name, got, err, tt.text)
		}
	}
}

func TestEncodeUnsupported(t *testing.T) {
	if _, err := Encode("日本", ISO8859_1); err == nil {
		t.Error("Encode should fail for characters outside ISO-8859-1")
	}
	if CanEncode("日本", ISO8859_1) || !CanEncode("abc", ISO8859_1) {
		t.Error("CanEncode mismatch")
	}
}
