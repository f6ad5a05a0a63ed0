// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"strings"
	"testing"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, &fakeErr{name}
			}
			return []byte(s), nil
		},
	}
}

type fakeErr struct{ name string }

func (e *fakeErr) Error() string { return "not found: " + e.name }

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.py": "def broken(:\n    pass\n",
	})

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "invalid syntax (test.py, line 1)",
		Spans: []Span{
			{File: "test.py", Line: 1, Col: 12, EndCol: 12, Label: "unexpected token"},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "error: invalid syntax (test.py, line 1)")
	assertContains(t, got, "--> test.py:1:12")
	assertContains(t, got, "def broken(:")
	assertContains(t, got, "           ^ unexpected token")
}

func TestRenderWarningWithCode(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.py": "try:\n    pass\nexcept:\n    pass\n",
	})

	d := Diagnostic{
		Severity: SeverityWarning,
		Code:     "bare-except",
		Message:  "Bare 'except:' clause. Consider catching specific exceptions.",
		Spans:    []Span{{File: "test.py", Line: 3}},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "warning[bare-except]: Bare 'except:' clause.")
	assertContains(t, got, "--> test.py:3\n")
	assertContains(t, got, " 3 |  except:")
	assertContains(t, got, "   |  ^^^^^^^\n")
}

func TestRenderWholeStatementIndented(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.py": "def f(x):\n    if x == None:  \n        pass\n",
	})

	d := Diagnostic{
		Severity: SeverityInfo,
		Code:     "comparison-with-singleton",
		Message:  "Use 'is' instead of '==' when comparing with None",
		Spans:    []Span{{File: "test.py", Line: 2}},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "info[comparison-with-singleton]:")
	// Leading indentation is skipped and trailing blanks are not underlined.
	assertContains(t, got, "   |      ^^^^^^^^^^^^^\n")
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "some error",
		Spans: []Span{
			{File: "<stdin>", Line: 5, Col: 3},
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "--> <stdin>:5:3")
	// Should have a gutter but no source line
	assertContains(t, got, "|")
	assertNotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.py": "def f(a, b=[]):\n    pass\n",
	})

	d := Diagnostic{
		Severity: SeverityWarning,
		Message:  "Mutable default argument in function 'f'. Use None and create inside function.",
		Spans:    []Span{{File: "test.py", Line: 1, Col: 12, EndCol: 13}},
		Notes: []string{
			"defaults are evaluated once, when the def statement runs",
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "= note: defaults are evaluated once")
	assertContains(t, got, "|             ^^\n")
}

func TestRenderAutoDetectEndCol(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.py": "result = compute(value)",
	})

	d := Diagnostic{
		Severity: SeverityInfo,
		Message:  "Variable 'compute' is defined but never used",
		Spans: []Span{
			{File: "test.py", Line: 1, Col: 10}, // EndCol=0 → auto-detect
		},
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	// "compute" starts at col 10 and stops at "(".
	assertContains(t, got, " ^^^^^^^\n")
	assertNotContains(t, got, "^^^^^^^^")
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.py": "x = 1\ny = '%s' % x\n",
	})

	diags := []Diagnostic{
		{
			Severity: SeverityInfo,
			Message:  "Variable 'y' is defined but never used",
			Spans:    []Span{{File: "test.py", Line: 2}},
		},
		{
			Severity: SeverityInfo,
			Message:  "Consider using f-strings or .format() instead of % formatting",
			Spans:    []Span{{File: "test.py", Line: 2}},
		},
	}

	var buf bytes.Buffer
	if err := r.RenderAll(&buf, diags); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	parts := strings.Split(got, "\n\n")
	if len(parts) < 2 {
		t.Errorf("expected diagnostics separated by blank line, got:\n%s", got)
	}
	assertContains(t, got, "Variable 'y' is defined but never used")
	assertContains(t, got, "instead of % formatting")
}

func TestRenderNoSpans(t *testing.T) {
	r := testRenderer(nil)

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "open missing.py: no such file or directory",
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, d); err != nil {
		t.Fatal(err)
	}

	got := buf.String()
	assertContains(t, got, "error: open missing.py: no such file or directory")
	assertNotContains(t, got, "-->")
}

func TestStaticSource(t *testing.T) {
	read := StaticSource("a.py", []byte("x = 1\n"))
	if data, err := read("a.py"); err != nil || string(data) != "x = 1\n" {
		t.Errorf("unexpected read: %q, %v", data, err)
	}
	if _, err := read("b.py"); err == nil {
		t.Error("expected error for unknown file")
	}
}

func TestParseColorMode(t *testing.T) {
	cases := map[string]ColorMode{
		"always": ColorAlways,
		"never":  ColorNever,
		"auto":   ColorAuto,
		"":       ColorAuto,
	}
	for in, want := range cases {
		if got := ParseColorMode(in); got != want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestColorAlwaysEmitsEscapes(t *testing.T) {
	r := &Renderer{Color: ColorAlways, SourceReader: StaticSource("a.py", []byte("pass\n"))}
	var buf bytes.Buffer
	if err := r.Render(&buf, Diagnostic{Severity: SeverityWarning, Message: "m"}); err != nil {
		t.Fatal(err)
	}
	assertContains(t, buf.String(), "\033[")
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}

func assertNotContains(t *testing.T, got, unwanted string) {
	t.Helper()
	if strings.Contains(got, unwanted) {
		t.Errorf("output unexpectedly contains %q:\n%s", unwanted, got)
	}
}
