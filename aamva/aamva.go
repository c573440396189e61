// Package aamva extracts driver licence fields from AAMVA formatted PDF417
// payloads.
package aamva

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Element maps a three letter AAMVA element ID to a field name.
type Element struct {
	ID   string
	Name string
}

// Simple lists the commonly displayed elements.
var Simple = []Element{
	{"DCS", "LastName"},
	{"DAC", "FirstName"},
	{"DAD", "MiddleName"},
	{"DBB", "DOB"},
	{"DBA", "ExpirationDate"},
	{"DAQ", "LicenseNumber"},
	{"DAG", "Address"},
	{"DAI", "City"},
	{"DAJ", "State"},
	{"DAK", "ZipCode"},
}

// Full lists every element the parser knows.
var Full = append(append([]Element(nil), Simple...),
	Element{"DAY", "EyeColor"},
	Element{"DAU", "Height"},
	Element{"DBC", "Sex"},
	Element{"DCG", "Country"},
	Element{"DBD", "IssueDate"},
	Element{"DCF", "DocumentDiscriminator"},
	Element{"DCK", "InventoryControlNumber"},
	Element{"DDE", "ComplianceType"},
	Element{"DDF", "CardRevisionDate"},
	Element{"DDG", "HazmatEndorsement"},
	Element{"DDH", "LimitedTermIndicator"},
	Element{"DCU", "NameSuffix"},
	Element{"DDC", "MedicalIndicator"},
	Element{"DDD", "NonResidentIndicator"},
)

var patterns = map[string]*regexp.Regexp{}

func init() {
	for _, e := range Full {
		patterns[e.ID] = regexp.MustCompile(regexp.QuoteMeta(e.ID) + `([^\n\r]+)`)
	}
}

func pattern(id string) *regexp.Regexp {
	if re, ok := patterns[id]; ok {
		return re
	}
	return regexp.MustCompile(regexp.QuoteMeta(id) + `([^\n\r]+)`)
}

// Field is one extracted value.
type Field struct {
	Name  string
	Value string
}

// Record holds extracted fields in element order.
type Record []Field

// Parse extracts elements from payload. For each element the first
// occurrence of its ID wins and the rest of that line, trimmed, is the
// value. Elements that do not occur are left out.
func Parse(payload string, elements []Element) Record {
	var r Record
	for _, e := range elements {
		m := pattern(e.ID).FindStringSubmatch(payload)
		if m == nil {
			continue
		}
		r = append(r, Field{Name: e.Name, Value: strings.TrimSpace(m[1])})
	}
	return r
}

// Get returns the value of the named field.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON encodes the record as an object keeping field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, f.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeString(&buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSON renders the record indented by four spaces without escaping
// non-ASCII or HTML characters.
func (r Record) JSON() (string, error) {
	raw, err := r.MarshalJSON()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Payload joins element ID and value pairs into an AAMVA style payload, one
// element per line, in the order given.
func Payload(pairs [][2]string) string {
	lines := make([]string, len(pairs))
	for i, p := range pairs {
		lines[i] = p[0] + p[1]
	}
	return strings.Join(lines, "\n")
}

// DecodePairs reads a JSON object of element ID to value, keeping the
// order of its keys. Non-string values are rejected.
func DecodePairs(data []byte) ([][2]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("aamva: expected a JSON object, got %v", tok)
	}
	var pairs [][2]string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("aamva: element %s: %w", key, err)
		}
		pairs = append(pairs, [2]string{key, value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return pairs, nil
}
