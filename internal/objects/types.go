// Package objects defines the canonical changed-object model and the
// parsers that turn raw change-management exports (free text, CSV, JSON)
// into deduplicated Object records.
package objects

import "strings"

// Class is the transport-level classing of an object.
type Class string

const (
	// ClassFull marks a complete, transport-request-level object (R3TR).
	ClassFull Class = "R3TR"
	// ClassLimited marks a limited/sub-object (LIMU).
	ClassLimited Class = "LIMU"
)

// classingTokens are the recognized classing tokens in text exports.
var classingTokens = map[string]Class{
	"R3TR": ClassFull,
	"LIMU": ClassLimited,
}

// KnownTypes is the vocabulary of object type codes the parser recognizes
// when a line carries no classing token. Not exhaustive; callers may extend
// it before parsing.
var KnownTypes = map[string]bool{
	// reports/programs
	"PROG": true, "REPS": true, "REPT": true,
	// enhancements / exits
	"CMOD": true, "SMOD": true, "ENHO": true, "ENHS": true, "SPOT": true,
	// classes and function modules
	"CLAS": true, "INTF": true, "FUGR": true, "FUNC": true,
	// data dictionary
	"TABL": true, "VIEW": true, "DTEL": true, "DOMA": true, "TTYP": true, "DDLS": true,
}

// Object is a single changed artifact, identified by class/type/name.
// Objects are immutable once created and are deduplicated by NormalizedKey.
type Object struct {
	Class         Class  `json:"obj_class"`
	Type          string `json:"obj_type"`
	Name          string `json:"obj_name"`
	Package       string `json:"package,omitempty"`
	Component     string `json:"component,omitempty"`
	Raw           string `json:"raw,omitempty"`
	NormalizedKey string `json:"normalized_key"`
}

// New builds a canonical Object. All identifying fields are trimmed and
// upper-cased; NormalizedKey is CLASS:TYPE:NAME.
func New(class, objType, name string) Object {
	c := norm(class)
	t := norm(objType)
	n := norm(name)
	return Object{
		Class:         Class(c),
		Type:          t,
		Name:          n,
		NormalizedKey: c + ":" + t + ":" + n,
	}
}

func norm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// set accumulates Objects with last-wins dedupe by NormalizedKey while
// preserving first-occurrence order.
type set struct {
	order []string
	byKey map[string]Object
}

func newSet() *set {
	return &set{byKey: make(map[string]Object)}
}

func (s *set) add(o Object) {
	if _, seen := s.byKey[o.NormalizedKey]; !seen {
		s.order = append(s.order, o.NormalizedKey)
	}
	s.byKey[o.NormalizedKey] = o
}

func (s *set) objects() []Object {
	out := make([]Object, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// Keys returns the normalized keys of objs in order.
func Keys(objs []Object) []string {
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		keys = append(keys, o.NormalizedKey)
	}
	return keys
}

// KeySet returns the normalized keys of objs as a set.
func KeySet(objs []Object) map[string]bool {
	keys := make(map[string]bool, len(objs))
	for _, o := range objs {
		keys[o.NormalizedKey] = true
	}
	return keys
}
