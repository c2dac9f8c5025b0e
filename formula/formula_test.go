package formula

import (
	"reflect"
	"strings"
	"testing"

	"github.com/statkit/glm/design"
	"github.com/statkit/glm/internal/testkit"
	"github.com/statkit/glm/pkg/errors"
)

func termStrings(spec *design.Spec) []string {
	terms := spec.Terms()
	if len(terms) == 0 {
		return nil
	}
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.String()
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		formula  string
		response string
		terms    []string
	}{
		{"y ~ a", "y", []string{"a"}},
		{"y ~ a + b", "y", []string{"a", "b"}},
		{"y ~ a:b", "y", []string{"a:b"}},
		{"y ~ a*b + x", "y", []string{"a", "b", "a:b", "x"}},
		{"y ~ a*b*c", "y", []string{"a", "b", "c", "a:b", "a:c", "b:c", "a:b:c"}},
		{"y ~ a:b*c", "y", []string{"a:b", "c", "a:b:c"}},
		{"y ~ a + a*b + b:a", "y", []string{"a", "b", "a:b"}},
		{"y ~ a*a", "y", []string{"a"}},
		{"y ~ 1", "y", nil},
		{"y ~ 1 + x", "y", []string{"x"}},
		{"outcome~dose:group", "outcome", []string{"dose:group"}},
		{"  y ~ a : b  ", "y", []string{"a:b"}},
	}
	for _, tt := range tests {
		t.Run(tt.formula, func(t *testing.T) {
			response, spec, err := Parse(tt.formula)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.formula, err)
			}
			if response != tt.response {
				t.Errorf("response = %q, want %q", response, tt.response)
			}
			if got := termStrings(spec); !reflect.DeepEqual(got, tt.terms) {
				t.Errorf("terms = %v, want %v", got, tt.terms)
			}
			if !spec.HasIntercept() {
				t.Error("parsed spec lost the default intercept")
			}
		})
	}
}

func TestParseForwardsOptions(t *testing.T) {
	_, spec, err := Parse("y ~ group",
		design.WithCoding("group", design.Helmert()),
		design.WithoutIntercept(),
	)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if spec.HasIntercept() {
		t.Error("WithoutIntercept was not forwarded to the spec")
	}
	coding, explicit := spec.CodingFor("group")
	if !explicit {
		t.Fatal("WithCoding was not forwarded to the spec")
	}
	if coding.Name() != "helmert" {
		t.Errorf("coding = %q, want %q", coding.Name(), "helmert")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		substr  string
	}{
		{"empty", "", "empty formula"},
		{"no tilde", "y", "'~'"},
		{"empty right side", "y ~", "ended unexpectedly"},
		{"missing response", "~ x", "response"},
		{"numeric response", "1 ~ x", "response must name a dataset column"},
		{"trailing plus", "y ~ a + ", "ended unexpectedly"},
		{"double plus", "y ~ a ++ b", "expected a predictor name"},
		{"trailing colon", "y ~ a:b:", "ended unexpectedly"},
		{"second tilde", "y ~ a ~ b", "unexpected"},
		{"minus one", "y ~ a - 1", "design.WithoutIntercept"},
		{"bare minus", "y ~ a-b", "design.WithoutIntercept"},
		{"zero term", "y ~ 0", "design.WithoutIntercept"},
		{"zero in sum", "y ~ a + 0", "design.WithoutIntercept"},
		{"one in interaction", "y ~ 1:a", "intercept token"},
		{"one after colon", "y ~ a:1", "intercept token"},
		{"one in crossing", "y ~ a*1", "intercept token"},
		{"parenthesis", "y ~ (a + b)", "unexpected character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(tt.formula)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.formula)
			}
			var valueErr *errors.ValueError
			if !errors.As(err, &valueErr) {
				t.Fatalf("Parse(%q) error = %v, want ValueError", tt.formula, err)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Parse(%q) error %q does not mention %q", tt.formula, err, tt.substr)
			}
		})
	}
}

func TestParseBuildsLikeExplicitSpec(t *testing.T) {
	ds := testkit.Factorial(t)

	response, parsed, err := Parse("y ~ a*b")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	fromFormula, err := design.Build(parsed, ds)
	if err != nil {
		t.Fatalf("Build(parsed) error = %v", err)
	}

	explicit := design.NewSpec([]design.Term{
		design.MainEffect("a"),
		design.MainEffect("b"),
		design.Interaction("a", "b"),
	})
	fromSpec, err := design.Build(explicit, ds)
	if err != nil {
		t.Fatalf("Build(explicit) error = %v", err)
	}

	if response != "y" {
		t.Errorf("response = %q, want %q", response, "y")
	}
	if !reflect.DeepEqual(fromFormula.ColumnNames(), fromSpec.ColumnNames()) {
		t.Errorf("columns = %v, want %v", fromFormula.ColumnNames(), fromSpec.ColumnNames())
	}
}
