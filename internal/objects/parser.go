package objects

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"regexp"
	"strings"
)

// Format selects the input parser.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// textLineRe matches structured export lines like "R3TR PROG ZFI_POSTING_REPORT".
// Type codes are 3-5 alphanumeric/underscore characters; names additionally
// allow namespace and generation markers (/ \ - ~ < > =).
var textLineRe = regexp.MustCompile(`(?i)(R3TR|LIMU)\s+([A-Z0-9_]{3,5})\s+([A-Z0-9_/\\\-~><=]+)`)

var whitespaceRe = regexp.MustCompile(`[\t\s]+`)

// Parse dispatches raw input to the parser for the given format.
// FormatAuto sniffs the payload first. Unparseable input yields an empty
// slice, never an error.
func Parse(raw []byte, format Format) []Object {
	if format == FormatAuto || format == "" {
		format = DetectFormat(raw)
	}
	switch format {
	case FormatCSV:
		return ParseCSV(raw)
	case FormatJSON:
		return ParseJSON(raw)
	default:
		return ParseText(string(raw))
	}
}

// DetectFormat sniffs the payload: JSON if it starts with an object/array
// marker, CSV if the first line resolves both a type and a name column,
// otherwise free text. An explicit format from the caller always wins.
func DetectFormat(raw []byte) Format {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return FormatText
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return FormatJSON
	}

	firstLine := trimmed
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		firstLine = trimmed[:i]
	}
	if bytes.ContainsRune(firstLine, ',') {
		header := strings.Split(string(firstLine), ",")
		cols := headerIndex(header)
		if cols.typeCol >= 0 && cols.nameCol >= 0 {
			return FormatCSV
		}
	}
	return FormatText
}

// ParseText parses a free-text object list: space/tab delimited exports or
// mixed text containing patterns like "R3TR PROG ZREPORT". Lines that match
// nothing are silently skipped.
func ParseText(text string) []Object {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	found := newSet()
	for _, line := range strings.Split(text, "\n") {
		ln := strings.TrimSpace(line)
		if ln == "" {
			continue
		}

		if m := textLineRe.FindStringSubmatch(ln); m != nil {
			o := New(m[1], m[2], m[3])
			o.Raw = ln
			found.add(o)
			continue
		}

		parts := whitespaceRe.Split(ln, -1)

		// Fallback: classing token plus at least two more tokens.
		if len(parts) >= 3 {
			if _, ok := classingTokens[norm(parts[0])]; ok {
				o := New(parts[0], parts[1], parts[2])
				o.Raw = ln
				found.add(o)
				continue
			}
		}

		// Fallback: known type code without a classing token, e.g. "PROG ZFOO".
		if len(parts) >= 2 && KnownTypes[norm(parts[0])] {
			o := New(string(ClassFull), parts[0], parts[1])
			o.Raw = ln
			found.add(o)
		}
	}

	return found.objects()
}

// csvColumns holds resolved header positions; -1 means absent.
type csvColumns struct {
	classCol     int
	typeCol      int
	nameCol      int
	packageCol   int
	componentCol int
}

func headerIndex(header []string) csvColumns {
	cols := csvColumns{classCol: -1, typeCol: -1, nameCol: -1, packageCol: -1, componentCol: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "obj_class":
			cols.classCol = i
		case "obj_type", "object_type", "type":
			if cols.typeCol < 0 {
				cols.typeCol = i
			}
		case "obj_name", "object_name", "name":
			if cols.nameCol < 0 {
				cols.nameCol = i
			}
		case "package", "devclass":
			if cols.packageCol < 0 {
				cols.packageCol = i
			}
		case "component":
			cols.componentCol = i
		}
	}
	return cols
}

// ParseCSV parses a column-mapped CSV export. Header names are matched
// case-insensitively against the alias sets obj_type/object_type/type,
// obj_name/object_name/name, package/devclass and component. Rows lacking a
// resolvable type or name are skipped.
func ParseCSV(raw []byte) []Object {
	if len(raw) == 0 {
		return nil
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}

	header := records[0]
	cols := headerIndex(header)
	if cols.typeCol < 0 || cols.nameCol < 0 {
		return nil
	}

	found := newSet()
	for _, rec := range records[1:] {
		objType := field(rec, cols.typeCol)
		objName := field(rec, cols.nameCol)
		if objType == "" || objName == "" {
			continue
		}

		class := field(rec, cols.classCol)
		if class == "" {
			class = string(ClassFull)
		}

		o := New(class, objType, objName)
		o.Package = norm(field(rec, cols.packageCol))
		o.Component = norm(field(rec, cols.componentCol))
		o.Raw = rawRow(header, rec)
		found.add(o)
	}

	return found.objects()
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// rawRow preserves the original CSV row as a JSON document for traceability.
func rawRow(header, rec []string) string {
	row := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(rec) {
			row[strings.TrimSpace(h)] = rec[i]
		}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return strings.Join(rec, ",")
	}
	return string(data)
}

// jsonEnvelope accepts the wrapping document form {"objects": [...]}.
type jsonEnvelope struct {
	Objects []json.RawMessage `json:"objects"`
}

// ParseJSON parses a JSON export: either a wrapping object with an "objects"
// array or a bare array. Entries that are not objects, or that lack a
// resolvable type or name, are skipped.
func ParseJSON(raw []byte) []Object {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var entries []json.RawMessage

	var envelope jsonEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Objects != nil {
		entries = envelope.Objects
	} else if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	found := newSet()
	for _, entry := range entries {
		var m map[string]interface{}
		if err := json.Unmarshal(entry, &m); err != nil {
			continue
		}

		objType := stringField(m, "obj_type", "object_type", "type")
		objName := stringField(m, "obj_name", "object_name", "name")
		if objType == "" || objName == "" {
			continue
		}

		class := stringField(m, "obj_class")
		if class == "" {
			class = string(ClassFull)
		}

		o := New(class, objType, objName)
		o.Package = norm(stringField(m, "package", "devclass"))
		o.Component = norm(stringField(m, "component"))
		o.Raw = stringField(m, "raw")
		found.add(o)
	}

	return found.objects()
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
