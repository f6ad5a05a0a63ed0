// Copyright © 2024 The ELPS authors

package analysis

import "encoding/json"

// FunctionRecord describes one function or async function definition.
type FunctionRecord struct {
	Name         string   `json:"name"`
	Line         int      `json:"line"`
	EndLine      int      `json:"end_line"`
	Args         []string `json:"args"`
	Decorators   []string `json:"decorators"`
	IsAsync      bool     `json:"is_async"`
	HasDocstring bool     `json:"has_docstring"`
	Complexity   int      `json:"complexity"`
}

// Length returns the number of source lines the function spans.
func (f *FunctionRecord) Length() int {
	return f.EndLine - f.Line + 1
}

// IsPublic reports whether the function name does not start with an
// underscore.
func (f *FunctionRecord) IsPublic() bool {
	return len(f.Name) == 0 || f.Name[0] != '_'
}

// ClassRecord describes one class definition.
type ClassRecord struct {
	Name         string   `json:"name"`
	Line         int      `json:"line"`
	EndLine      int      `json:"end_line"`
	Bases        []string `json:"bases"`
	Decorators   []string `json:"decorators"`
	HasDocstring bool     `json:"has_docstring"`
	Methods      []string `json:"methods"`
}

// VariableRecord describes one store occurrence of a name.
type VariableRecord struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Context string `json:"context"`
}

// ImportKind distinguishes "import x" from "from m import x".
type ImportKind string

const (
	ImportPlain ImportKind = "import"
	ImportFrom  ImportKind = "from_import"
)

// ImportRecord describes one imported name. Module is nil for a
// from-import without a module ("from . import x"). Name is only used by
// from-imports.
type ImportRecord struct {
	Type   ImportKind
	Module *string
	Name   string
	Alias  *string
	Line   int
}

// MarshalJSON encodes the record with the fields of its import kind.
func (r ImportRecord) MarshalJSON() ([]byte, error) {
	if r.Type == ImportFrom {
		return json.Marshal(struct {
			Type   ImportKind `json:"type"`
			Module *string    `json:"module"`
			Name   string     `json:"name"`
			Alias  *string    `json:"alias"`
			Line   int        `json:"line"`
		}{r.Type, r.Module, r.Name, r.Alias, r.Line})
	}
	return json.Marshal(struct {
		Type   ImportKind `json:"type"`
		Module *string    `json:"module"`
		Alias  *string    `json:"alias"`
		Line   int        `json:"line"`
	}{r.Type, r.Module, r.Alias, r.Line})
}

// SymbolTable holds every record collected from a module in discovery
// order. The slices are never nil so they encode as empty arrays.
type SymbolTable struct {
	Functions []*FunctionRecord `json:"functions"`
	Classes   []*ClassRecord    `json:"classes"`
	Variables []*VariableRecord `json:"variables"`
	Imports   []*ImportRecord   `json:"imports"`
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		Functions: []*FunctionRecord{},
		Classes:   []*ClassRecord{},
		Variables: []*VariableRecord{},
		Imports:   []*ImportRecord{},
	}
}
