// Copyright © 2024 The ELPS authors

package analysis

import "strings"

// Binding is the first definition of a name.
type Binding struct {
	Name string
	Line int
}

// Usage tracks which names a module defines and which it reads. Defined
// names keep the order and line of their first definition.
type Usage struct {
	defined []Binding
	index   map[string]int
	used    map[string]bool
}

func newUsage() *Usage {
	return &Usage{
		index: make(map[string]int),
		used:  make(map[string]bool),
	}
}

// Define records a definition of name at line. Only the first definition
// of a name is kept.
func (u *Usage) Define(name string, line int) {
	if _, ok := u.index[name]; ok {
		return
	}
	u.index[name] = len(u.defined)
	u.defined = append(u.defined, Binding{Name: name, Line: line})
}

// Use records a read of name.
func (u *Usage) Use(name string) {
	u.used[name] = true
}

// IsUsed reports whether name was read anywhere in the module.
func (u *Usage) IsUsed(name string) bool {
	return u.used[name]
}

// Unused returns the bindings whose names are never read, skipping
// names for which ignore returns true.
func (u *Usage) Unused(ignore func(name string) bool) []Binding {
	var out []Binding
	for _, b := range u.defined {
		if u.used[b.Name] || (ignore != nil && ignore(b.Name)) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// TextLine scans lines for the first one containing "<name> =" or
// "<name>:" and returns its 1-based number, or 1 when no line matches.
func TextLine(lines []string, name string) int {
	assign := name + " ="
	annot := name + ":"
	for i, line := range lines {
		if strings.Contains(line, assign) || strings.Contains(line, annot) {
			return i + 1
		}
	}
	return 1
}
