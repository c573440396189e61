package aamva

import "testing"

const sample = "@\n\x1e\rANSI 636014080102DL00410288ZC03290024DLDAQD1234567\n" +
	"DCSPUBLIC\nDDEN\nDACJOHN\nDDFN\nDADQUINCY\nDDGN\nDCAC\nDCBNONE\nDCDNONE\n" +
	"DBD08312013\nDBB08311977\nDBA08312018\nDBC1\nDAU070 in\nDAYBRO\n" +
	"DAG789 E OAK ST\nDAIANYTOWN\nDAJCA\nDAK902230000  \nDCF83D9BN217QO983B1\n" +
	"DCGUSA\nDAW180\nDAZBRO\nDCK12345678900000000000\nDDB02142014\r"

func TestParseSimple(t *testing.T) {
	r := Parse(sample, Simple)
	want := []Field{
		{"LastName", "PUBLIC"},
		{"FirstName", "JOHN"},
		{"MiddleName", "QUINCY"},
		{"DOB", "08311977"},
		{"ExpirationDate", "08312018"},
		{"LicenseNumber", "D1234567"},
		{"Address", "789 E OAK ST"},
		{"City", "ANYTOWN"},
		{"State", "CA"},
		{"ZipCode", "902230000"},
	}
	if len(r) != len(want) {
		t.Fatalf("got %d fields: %v", len(r), r)
	}
	for i := range want {
		if r[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, r[i], want[i])
		}
	}
}

func TestParseFull(t *testing.T) {
	r := Parse(sample, Full)
	for name, want := range map[string]string{
		"EyeColor":               "BRO",
		"Height":                 "070 in",
		"Sex":                    "1",
		"Country":                "USA",
		"IssueDate":              "08312013",
		"ComplianceType":         "N",
		"InventoryControlNumber": "12345678900000000000",
	} {
		if got, ok := r.Get(name); !ok || got != want {
			t.Errorf("%s = %q (%v), want %q", name, got, ok, want)
		}
	}
	if _, ok := r.Get("NameSuffix"); ok {
		t.Error("absent element NameSuffix was reported")
	}
}

func TestParseFirstMatchWins(t *testing.T) {
	r := Parse("DCSFIRST\nDCSSECOND", Simple)
	if v, _ := r.Get("LastName"); v != "FIRST" {
		t.Errorf("LastName = %q", v)
	}
}

func TestJSON(t *testing.T) {
	r := Record{{"LastName", "Müller"}, {"Address", "1 <Main> & Co"}}
	got, err := r.JSON()
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n    \"LastName\": \"Müller\",\n    \"Address\": \"1 <Main> & Co\"\n}"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}

	empty, err := Record(nil).JSON()
	if err != nil || empty != "{}" {
		t.Errorf("empty record = %q, %v", empty, err)
	}
}

func TestDecodePairsKeepsOrder(t *testing.T) {
	pairs, err := DecodePairs([]byte(`{"DCS": "SMITH", "DAC": "JANE", "DAQ": "X1"}`))
	if err != nil {
		t.Fatal(err)
	}
	got := Payload(pairs)
	if got != "DCSSMITH\nDACJANE\nDAQX1" {
		t.Errorf("payload = %q", got)
	}
	round := Parse(got, Simple)
	if v, _ := round.Get("FirstName"); v != "JANE" {
		t.Errorf("FirstName = %q", v)
	}
}

func TestDecodePairsRejects(t *testing.T) {
	for _, in := range []string{`[1, 2]`, `{"DCS": 5}`, `{"DCS": "A"`, ``} {
		if _, err := DecodePairs([]byte(in)); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}
