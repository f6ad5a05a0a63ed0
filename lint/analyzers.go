// Copyright © 2024 The ELPS authors

package lint

import (
	"sort"
	"strings"

	"github.com/luthersystems/pyscan/analysis"
	"github.com/luthersystems/pyscan/astutil"
	"github.com/luthersystems/pyscan/pyast"
	"github.com/pkg/errors"
)

// AnalyzerLongFunction warns about functions spanning too many lines.
var AnalyzerLongFunction = &Analyzer{
	Name:     "long-function",
	Doc:      "Warn when a function spans more lines than the configured limit (50 by default).\n\nThe length runs from the `def` line to the last line of the body. Long functions are harder to read and test and usually do more than one thing.",
	Category: CategoryCodeSmell,
	Severity: SeverityWarning,
	Function: func(pass *Pass, fn *analysis.FunctionRecord) error {
		if n := fn.Length(); n > pass.Config.LongFunctionLines {
			pass.Reportf(fn.Line, "Function '%s' is %d lines long (consider breaking into smaller functions)", fn.Name, n)
		}
		return nil
	},
}

// AnalyzerMissingDocstring reports public functions without a docstring.
var AnalyzerMissingDocstring = &Analyzer{
	Name:     "missing-docstring",
	Doc:      "Report public functions without a docstring.\n\nA function is public when its name does not start with an underscore. The docstring must be a plain string literal in the first statement of the body; f-strings and bytes do not count.",
	Category: CategoryCodeSmell,
	Severity: SeverityInfo,
	Function: func(pass *Pass, fn *analysis.FunctionRecord) error {
		if !fn.HasDocstring && fn.IsPublic() {
			pass.Reportf(fn.Line, "Public function '%s' is missing a docstring", fn.Name)
		}
		return nil
	},
}

// AnalyzerHighComplexity warns about functions with too many branches.
var AnalyzerHighComplexity = &Analyzer{
	Name:     "high-complexity",
	Doc:      "Warn when a function's cyclomatic complexity exceeds the configured limit (10 by default).\n\nThe score starts at 1. Each if, elif, while, for, async for, except handler and with statement adds one, and a boolean operation with N operands adds N-1. Nested functions count toward the enclosing function.",
	Category: CategoryCodeSmell,
	Severity: SeverityWarning,
	Function: func(pass *Pass, fn *analysis.FunctionRecord) error {
		if fn.Complexity > pass.Config.MaxComplexity {
			pass.Reportf(fn.Line, "Function '%s' has high cyclomatic complexity (%d)", fn.Name, fn.Complexity)
		}
		return nil
	},
}

// AnalyzerUnusedVariable reports names that are bound but never read
// anywhere in the module.
var AnalyzerUnusedVariable = &Analyzer{
	Name:     "unused-variable",
	Doc:      "Report names that are assigned but never read.\n\nThe check is module-wide and not scope-aware: a name read anywhere in the file counts as used. Function and class names count as definitions. `_`, `__`, `self`, `cls` and every name starting with an underscore are always ignored; ignored_names adds more.",
	Category: CategoryCodeSmell,
	Severity: SeverityInfo,
	Run: func(pass *Pass) error {
		res := pass.Result
		for _, b := range res.Usage.Unused(pass.Config.ignored) {
			line := b.Line
			switch pass.Config.UnusedLine {
			case UnusedLineText:
				line = analysis.TextLine(res.Lines, b.Name)
			case UnusedLineBinding, "":
			default:
				return errors.Errorf("unknown unused-line mode %q", pass.Config.UnusedLine)
			}
			pass.Reportf(line, "Variable '%s' is defined but never used", b.Name)
		}
		return nil
	},
}

// AnalyzerBareExcept warns about except clauses without an exception type.
var AnalyzerBareExcept = &Analyzer{
	Name:     "bare-except",
	Doc:      "Warn about `except:` clauses that name no exception type.\n\nA bare except also catches SystemExit and KeyboardInterrupt and hides programming errors. Catch the specific exceptions the block can handle.",
	Category: CategoryPotentialIssue,
	Severity: SeverityWarning,
	Kinds:    []pyast.Kind{pyast.KindExceptHandler},
	Node: func(pass *Pass, node *pyast.Node) {
		if node.Left == nil {
			pass.Report(Issue{Line: node.Line, Message: "Bare 'except:' clause. Consider catching specific exceptions."})
		}
	},
}

// AnalyzerMutableDefault warns about list, dict and set displays used as
// parameter defaults.
var AnalyzerMutableDefault = &Analyzer{
	Name:     "mutable-default-argument",
	Doc:      "Warn when a parameter default is a list, dict or set display.\n\nDefaults are evaluated once, when the `def` statement runs, so every call shares and mutates the same object. Use None and create the value inside the function. One issue is reported per mutable default, at the `def` line.",
	Category: CategoryPotentialIssue,
	Severity: SeverityWarning,
	Kinds:    []pyast.Kind{pyast.KindFunctionDef, pyast.KindAsyncFunctionDef},
	Node: func(pass *Pass, node *pyast.Node) {
		for _, def := range astutil.Defaults(node) {
			switch def.Kind {
			case pyast.KindList, pyast.KindDict, pyast.KindSet:
				pass.Reportf(node.Line, "Mutable default argument in function '%s'. Use None and create inside function.", node.Name)
			}
		}
	},
}

// AnalyzerSingletonComparison reports equality comparisons against None,
// True or False.
var AnalyzerSingletonComparison = &Analyzer{
	Name:     "comparison-with-singleton",
	Doc:      "Report `==` comparisons against None, True or False.\n\nSingletons should be compared by identity with `is`. One issue is reported for each singleton comparator of a comparison chain that contains `==`.",
	Category: CategoryCodeSmell,
	Severity: SeverityInfo,
	Kinds:    []pyast.Kind{pyast.KindCompare},
	Node: func(pass *Pass, node *pyast.Node) {
		hasEq := false
		for _, op := range node.Ops {
			if op == "==" {
				hasEq = true
				break
			}
		}
		if !hasEq {
			return
		}
		for _, v := range node.Values {
			if v.Kind == pyast.KindConstant && v.Literal.IsSingleton() {
				pass.Reportf(node.Line, "Use 'is' instead of '==' when comparing with %s", v.Literal)
			}
		}
	},
}

// AnalyzerPercentFormat suggests replacing printf-style string formatting.
var AnalyzerPercentFormat = &Analyzer{
	Name:     "old-string-formatting",
	Doc:      "Suggest f-strings or str.format over `%` formatting.\n\nOnly a `%` operation whose left operand is a plain string literal is reported. Bytes literals and f-strings are left alone.",
	Category: CategorySuggestion,
	Severity: SeverityInfo,
	Kinds:    []pyast.Kind{pyast.KindBinOp},
	Node: func(pass *Pass, node *pyast.Node) {
		if node.Op == "%" && node.Left.IsStringLiteral() {
			pass.Report(Issue{Line: node.Line, Message: "Consider using f-strings or .format() instead of % formatting"})
		}
	},
}

// DefaultAnalyzers returns the built-in set of lint checks in report order.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerLongFunction,
		AnalyzerMissingDocstring,
		AnalyzerHighComplexity,
		AnalyzerUnusedVariable,
		AnalyzerBareExcept,
		AnalyzerMutableDefault,
		AnalyzerSingletonComparison,
		AnalyzerPercentFormat,
	}
}

// AnalyzerNames returns the sorted names of the default analyzers.
func AnalyzerNames() []string {
	var names []string
	for _, a := range DefaultAnalyzers() {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// SelectAnalyzers returns the default analyzers named in names, keeping
// report order. An empty list selects every analyzer.
func SelectAnalyzers(names []string) ([]*Analyzer, error) {
	all := DefaultAnalyzers()
	want := make(map[string]bool)
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			want[name] = true
		}
	}
	if len(want) == 0 {
		return all, nil
	}
	var selected []*Analyzer
	for _, a := range all {
		if want[a.Name] {
			selected = append(selected, a)
			delete(want, a.Name)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for name := range want {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, errors.Errorf("unknown check(s): %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(AnalyzerNames(), ", "))
	}
	return selected, nil
}
