package objects

import (
	"reflect"
	"testing"
)

func TestParseTextStructuredLines(t *testing.T) {
	text := "R3TR PROG ZFI_POSTING_REPORT\nR3TR CMOD ZFI_EXIT_001"

	objs := ParseText(text)
	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2", len(objs))
	}

	wantKeys := []string{"R3TR:PROG:ZFI_POSTING_REPORT", "R3TR:CMOD:ZFI_EXIT_001"}
	if !reflect.DeepEqual(Keys(objs), wantKeys) {
		t.Errorf("keys = %v, want %v", Keys(objs), wantKeys)
	}
	if objs[0].Raw != "R3TR PROG ZFI_POSTING_REPORT" {
		t.Errorf("Raw = %q, want original line", objs[0].Raw)
	}
}

func TestParseTextCaseInsensitiveUppercased(t *testing.T) {
	objs := ParseText("r3tr prog zfi_report")
	if len(objs) != 1 {
		t.Fatalf("got %d objects, want 1", len(objs))
	}
	o := objs[0]
	if o.Class != ClassFull || o.Type != "PROG" || o.Name != "ZFI_REPORT" {
		t.Errorf("fields not upper-cased: %+v", o)
	}
	if o.NormalizedKey != "R3TR:PROG:ZFI_REPORT" {
		t.Errorf("NormalizedKey = %q", o.NormalizedKey)
	}
}

func TestParseTextFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantKey string
	}{
		{"classing token split", "LIMU METH ZCL_FOO METHOD_BAR", "LIMU:METH:ZCL_FOO"},
		{"known type without class", "PROG ZFOO", "R3TR:PROG:ZFOO"},
		{"namespaced object name", "R3TR TABL /ACME/ZCONFIG", "R3TR:TABL:/ACME/ZCONFIG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs := ParseText(tt.line)
			if len(objs) != 1 {
				t.Fatalf("got %d objects, want 1", len(objs))
			}
			if objs[0].NormalizedKey != tt.wantKey {
				t.Errorf("key = %q, want %q", objs[0].NormalizedKey, tt.wantKey)
			}
		})
	}
}

func TestParseTextSkipsUnmatchedLines(t *testing.T) {
	text := "this line means nothing\n\nR3TR PROG ZOK\nnoise again"
	objs := ParseText(text)
	if len(objs) != 1 || objs[0].Name != "ZOK" {
		t.Errorf("objs = %+v, want single ZOK", objs)
	}
}

func TestParseTextEmptyInput(t *testing.T) {
	if objs := ParseText(""); len(objs) != 0 {
		t.Errorf("empty input should yield no objects, got %d", len(objs))
	}
	if objs := ParseText("   \n\t\n"); len(objs) != 0 {
		t.Errorf("blank input should yield no objects, got %d", len(objs))
	}
}

func TestParseTextDedupeLastWins(t *testing.T) {
	text := "R3TR PROG ZDUP\nR3TR PROG ZOTHER\nr3tr prog zdup   extra"
	objs := ParseText(text)
	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2", len(objs))
	}
	// First-occurrence order is preserved; the later duplicate's fields win.
	if objs[0].NormalizedKey != "R3TR:PROG:ZDUP" {
		t.Errorf("order not preserved: %v", Keys(objs))
	}
	if objs[0].Raw != "r3tr prog zdup   extra" {
		t.Errorf("Raw = %q, want last occurrence", objs[0].Raw)
	}
}

func TestParseTextIdempotent(t *testing.T) {
	text := "R3TR PROG ZA\nR3TR TABL ZB\nR3TR PROG ZA"
	first := ParseText(text)
	second := ParseText(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("parsing is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestParseCSV(t *testing.T) {
	csvData := []byte("object_type,object_name,devclass,component\n" +
		"PROG,zfi_report,zfi,FI\n" +
		"TABL,ZCONFIG,ZBC,\n" +
		",ZNOTYPE,Z,\n")

	objs := ParseCSV(csvData)
	if len(objs) != 2 {
		t.Fatalf("got %d objects, want 2 (row without type skipped)", len(objs))
	}

	o := objs[0]
	if o.Class != ClassFull {
		t.Errorf("Class = %q, want default R3TR", o.Class)
	}
	if o.Type != "PROG" || o.Name != "ZFI_REPORT" || o.Package != "ZFI" || o.Component != "FI" {
		t.Errorf("unexpected object: %+v", o)
	}
	if o.Raw == "" {
		t.Error("Raw should preserve the source row")
	}
}

func TestParseCSVHeaderAliases(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"short aliases", "type,name\nPROG,ZX\n"},
		{"obj aliases", "obj_type,obj_name\nPROG,ZX\n"},
		{"mixed case headers", "Object_Type,OBJECT_NAME\nPROG,ZX\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs := ParseCSV([]byte(tt.data))
			if len(objs) != 1 || objs[0].NormalizedKey != "R3TR:PROG:ZX" {
				t.Errorf("objs = %+v", objs)
			}
		})
	}
}

func TestParseCSVExplicitClass(t *testing.T) {
	objs := ParseCSV([]byte("obj_class,type,name\nLIMU,METH,ZCL_A\n"))
	if len(objs) != 1 || objs[0].Class != ClassLimited {
		t.Errorf("objs = %+v, want LIMU class", objs)
	}
}

func TestParseCSVUnresolvableHeader(t *testing.T) {
	if objs := ParseCSV([]byte("a,b,c\n1,2,3\n")); len(objs) != 0 {
		t.Errorf("unresolvable header should yield no objects, got %d", len(objs))
	}
	if objs := ParseCSV(nil); len(objs) != 0 {
		t.Errorf("nil input should yield no objects, got %d", len(objs))
	}
}

func TestParseJSONWrappedAndBare(t *testing.T) {
	wrapped := []byte(`{"objects":[{"obj_type":"PROG","obj_name":"za"},{"object_type":"TABL","object_name":"zb","package":"zpkg"}]}`)
	bare := []byte(`[{"type":"PROG","name":"ZA"},{"type":"TABL","name":"ZB","package":"ZPKG"}]`)

	for _, raw := range [][]byte{wrapped, bare} {
		objs := ParseJSON(raw)
		if len(objs) != 2 {
			t.Fatalf("got %d objects, want 2", len(objs))
		}
		if objs[0].NormalizedKey != "R3TR:PROG:ZA" {
			t.Errorf("key = %q", objs[0].NormalizedKey)
		}
		if objs[1].Package != "ZPKG" {
			t.Errorf("Package = %q, want ZPKG", objs[1].Package)
		}
	}
}

func TestParseJSONSkipsNonObjects(t *testing.T) {
	raw := []byte(`[{"type":"PROG","name":"ZA"}, "noise", 42, {"name":"ZNOTYPE"}]`)
	objs := ParseJSON(raw)
	if len(objs) != 1 || objs[0].Name != "ZA" {
		t.Errorf("objs = %+v, want single ZA", objs)
	}
}

func TestParseJSONMalformed(t *testing.T) {
	if objs := ParseJSON([]byte(`{not json`)); len(objs) != 0 {
		t.Errorf("malformed JSON should yield no objects, got %d", len(objs))
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Format
	}{
		{"json object", `{"objects":[]}`, FormatJSON},
		{"json array", `[{"type":"PROG"}]`, FormatJSON},
		{"csv header", "object_type,object_name\nPROG,ZX\n", FormatCSV},
		{"plain text", "R3TR PROG ZX", FormatText},
		{"csv-looking text without columns", "hello,world\n1,2\n", FormatText},
		{"empty", "", FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat([]byte(tt.raw)); got != tt.want {
				t.Errorf("DetectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDispatch(t *testing.T) {
	objs := Parse([]byte(`{"objects":[{"type":"PROG","name":"ZA"}]}`), FormatAuto)
	if len(objs) != 1 {
		t.Fatalf("auto dispatch failed: %+v", objs)
	}

	// Explicit format wins over sniffing.
	objs = Parse([]byte("R3TR PROG ZX"), FormatText)
	if len(objs) != 1 || objs[0].Name != "ZX" {
		t.Errorf("objs = %+v", objs)
	}
}
