// Copyright © 2024 The ELPS authors

// Package lint provides the rule engine that turns an analyzed Python module
// into a list of issues.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives the analysis result and reports issues. Analyzers hook in at
// one of three points. Function hooks run once per collected function record,
// Run hooks run once per module, and Node hooks run during a single shared
// traversal of the tree for the node kinds they name. Issues are kept in the
// order they were reported.
package lint

import (
	"encoding/json"
	"fmt"

	"github.com/luthersystems/pyscan/analysis"
	"github.com/luthersystems/pyscan/astutil"
	"github.com/luthersystems/pyscan/pyast"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Severity indicates the severity level of an issue.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return errors.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Category is the issue type reported in the "type" field.
type Category string

const (
	CategoryCodeSmell      Category = "code_smell"
	CategoryPotentialIssue Category = "potential_issue"
	CategorySuggestion     Category = "suggestion"
)

// Analyzer defines a single lint check. Exactly one of Function, Run and
// Node should be set.
type Analyzer struct {
	// Name is the rule id reported with each issue (e.g. "bare-except").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Category and Severity are applied to every issue the analyzer reports.
	Category Category
	Severity Severity

	// Function is called once for each function record, in record order.
	Function func(pass *Pass, fn *analysis.FunctionRecord) error

	// Run is called once per module.
	Run func(pass *Pass) error

	// Kinds selects the nodes Node is called for.
	Kinds []pyast.Kind
	Node  func(pass *Pass, node *pyast.Node)
}

func (a *Analyzer) wants(k pyast.Kind) bool {
	for _, want := range a.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Result is the analysis of the module.
	Result *analysis.Result

	// Config holds rule thresholds and options.
	Config *Config

	issues *[]Issue
}

// Report records an issue. Empty Type, Severity and Rule fields are filled
// from the running analyzer.
func (p *Pass) Report(issue Issue) {
	if issue.Rule == "" {
		issue.Rule = p.Analyzer.Name
	}
	if issue.Type == "" {
		issue.Type = p.Analyzer.Category
	}
	if issue.Severity == severityUnset {
		issue.Severity = p.Analyzer.Severity
	}
	*p.issues = append(*p.issues, issue)
}

// Reportf is a convenience for reporting an issue at a line.
func (p *Pass) Reportf(line int, format string, args ...interface{}) {
	p.Report(Issue{
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

// Issue is a single reported problem.
type Issue struct {
	Type     Category `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line"`
	Rule     string   `json:"rule"`
}

// String returns the issue in go vet style: line: message (rule).
func (i Issue) String() string {
	return fmt.Sprintf("%d: %s (%s)", i.Line, i.Message, i.Rule)
}

// Linter runs a set of analyzers over analyzed modules.
type Linter struct {
	Analyzers []*Analyzer

	// Config is used by analyzers with thresholds. DefaultConfig is used
	// when nil.
	Config *Config
}

// NewLinter returns a linter running the default analyzers.
func NewLinter(cfg *Config) *Linter {
	return &Linter{Analyzers: DefaultAnalyzers(), Config: cfg}
}

// Lint runs every analyzer over res and returns the issues in report
// order. The result is never nil.
//
// Function hooks run first, each function running all of them before the
// next function is considered. Run hooks follow, then one traversal of the
// tree dispatches every node to the Node hooks that want its kind. An
// analyzer returning an error is logged and its issues are kept.
func (l *Linter) Lint(filename string, res *analysis.Result) []Issue {
	cfg := l.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	issues := []Issue{}
	passes := make(map[*Analyzer]*Pass, len(l.Analyzers))
	pass := func(a *Analyzer) *Pass {
		p, ok := passes[a]
		if !ok {
			p = &Pass{Analyzer: a, Filename: filename, Result: res, Config: cfg, issues: &issues}
			passes[a] = p
		}
		return p
	}

	for _, fn := range res.Symbols.Functions {
		for _, a := range l.Analyzers {
			if a.Function == nil {
				continue
			}
			if err := a.Function(pass(a), fn); err != nil {
				log.Warn().Err(err).Str("rule", a.Name).Str("function", fn.Name).Msg("rule failed")
			}
		}
	}

	for _, a := range l.Analyzers {
		if a.Run == nil {
			continue
		}
		if err := a.Run(pass(a)); err != nil {
			log.Warn().Err(err).Str("rule", a.Name).Msg("rule failed")
		}
	}

	var nodeRules []*Analyzer
	for _, a := range l.Analyzers {
		if a.Node != nil && len(a.Kinds) > 0 {
			nodeRules = append(nodeRules, a)
		}
	}
	if len(nodeRules) > 0 {
		astutil.Walk(res.Tree, func(node *pyast.Node, _ *pyast.Node, _ int) {
			for _, a := range nodeRules {
				if a.wants(node.Kind) {
					a.Node(pass(a), node)
				}
			}
		})
	}

	log.Debug().Str("file", filename).Int("issues", len(issues)).Msg("lint complete")
	return issues
}
