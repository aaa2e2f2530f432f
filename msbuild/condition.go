package msbuild

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/maxwhale/SharpDevelop/properties"
)

// ConditionError reports a Condition attribute that cannot be evaluated.
type ConditionError struct {
	Condition string
	Err       error
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("msbuild: condition %q: %v", e.Condition, e.Err)
}

func (e *ConditionError) Unwrap() error { return e.Err }

// Condition is a compiled MSBuild condition. Comparisons are
// case-insensitive, as in MSBuild.
type Condition struct {
	raw      string
	program  *exprvm.Program
	literals []string
}

// propFunc resolves $(Name) references during evaluation.
type propFunc = func(name string) string

var compileEnv = map[string]any{"prop": propFunc(func(string) string { return "" })}

// CompileCondition translates an MSBuild condition into an expr program.
// Supported: quoted strings with $(Property) references, ==, !=, <, >,
// <=, >=, And, Or, !, parentheses, true and false. Functions such as
// Exists() are rejected.
func CompileCondition(raw string) (*Condition, error) {
	code, literals, err := translate(raw)
	if err != nil {
		return nil, &ConditionError{Condition: raw, Err: err}
	}
	program, err := exprlang.Compile(code, exprlang.Env(compileEnv), exprlang.AsBool())
	if err != nil {
		return nil, &ConditionError{Condition: raw, Err: err}
	}
	return &Condition{raw: raw, program: program, literals: literals}, nil
}

// String returns the source text.
func (c *Condition) String() string { return c.raw }

// Literals returns the literal segments of every quoted string, split on
// '|', in their source spelling.
func (c *Condition) Literals() []string { return append([]string(nil), c.literals...) }

// Evaluate runs the condition with the given property values. Property
// names compare case-insensitively; missing properties are empty.
func (c *Condition) Evaluate(props map[string]string) (bool, error) {
	lower := make(map[string]string, len(props))
	for k, v := range props {
		lower[strings.ToLower(k)] = strings.ToLower(v)
	}
	env := map[string]any{"prop": propFunc(func(name string) string { return lower[name] })}
	out, err := exprlang.Run(c.program, env)
	if err != nil {
		return false, &ConditionError{Condition: c.raw, Err: err}
	}
	b, _ := out.(bool)
	return b, nil
}

func translate(raw string) (string, []string, error) {
	var out strings.Builder
	var literals []string
	s := raw
	for len(s) > 0 {
		r := rune(s[0])
		switch {
		case unicode.IsSpace(r):
			s = s[1:]
			continue
		case r == '\'':
			end := strings.IndexByte(s[1:], '\'')
			if end < 0 {
				return "", nil, fmt.Errorf("unterminated string")
			}
			body := s[1 : end+1]
			code, lits, err := translateString(body)
			if err != nil {
				return "", nil, err
			}
			out.WriteString(code)
			literals = append(literals, lits...)
			s = s[end+2:]
		case strings.HasPrefix(s, "$("):
			code, rest, err := translateProperty(s)
			if err != nil {
				return "", nil, err
			}
			out.WriteString(code)
			s = rest
		case strings.HasPrefix(s, "=="), strings.HasPrefix(s, "!="), strings.HasPrefix(s, "<="), strings.HasPrefix(s, ">="):
			out.WriteString(" " + s[:2] + " ")
			s = s[2:]
		case r == '<' || r == '>' || r == '(' || r == ')' || r == '!':
			out.WriteString(" " + s[:1] + " ")
			s = s[1:]
		case unicode.IsLetter(r):
			n := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' })
			if n < 0 {
				n = len(s)
			}
			word := s[:n]
			switch strings.ToLower(word) {
			case "and":
				out.WriteString(" && ")
			case "or":
				out.WriteString(" || ")
			case "true", "false":
				out.WriteString(" " + strings.ToLower(word) + " ")
			default:
				return "", nil, fmt.Errorf("unsupported identifier %q", word)
			}
			s = s[n:]
		case unicode.IsDigit(r):
			n := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) && r != '.' })
			if n < 0 {
				n = len(s)
			}
			out.WriteString(strconv.Quote(s[:n]))
			s = s[n:]
		default:
			return "", nil, fmt.Errorf("unexpected character %q", r)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", nil, fmt.Errorf("empty condition")
	}
	return out.String(), literals, nil
}

// translateString turns 'a$(B)c' into ("a" + prop("b") + "c").
func translateString(body string) (string, []string, error) {
	var parts []string
	var literals []string
	for body != "" {
		i := strings.Index(body, "$(")
		if i < 0 {
			parts = append(parts, strconv.Quote(strings.ToLower(body)))
			literals = append(literals, splitLiteral(body)...)
			break
		}
		if i > 0 {
			parts = append(parts, strconv.Quote(strings.ToLower(body[:i])))
			literals = append(literals, splitLiteral(body[:i])...)
		}
		code, rest, err := translateProperty(body[i:])
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, code)
		body = rest
	}
	if len(parts) == 0 {
		return `""`, nil, nil
	}
	return "(" + strings.Join(parts, " + ") + ")", literals, nil
}

func translateProperty(s string) (string, string, error) {
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return "", "", fmt.Errorf("unterminated property reference")
	}
	name := strings.TrimSpace(s[2:end])
	if name == "" || strings.ContainsAny(name, "().:[]") {
		return "", "", fmt.Errorf("unsupported property expression $(%s)", name)
	}
	return "prop(" + strconv.Quote(strings.ToLower(name)) + ")", s[end+1:], nil
}

func splitLiteral(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "|") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FormatCondition returns the canonical condition for a property scope,
// or "" for the base scope.
func FormatCondition(configuration, platform string) string {
	switch {
	case configuration != "" && platform != "":
		return fmt.Sprintf(" '$(Configuration)|$(Platform)' == '%s|%s' ", configuration, platform)
	case configuration != "":
		return fmt.Sprintf(" '$(Configuration)' == '%s' ", configuration)
	case platform != "":
		return fmt.Sprintf(" '$(Platform)' == '%s' ", platform)
	default:
		return ""
	}
}

// Scope is the configuration/platform a property group applies to.
type Scope struct {
	Configuration string
	Platform      string
}

// Location returns the storage location of properties in the scope.
func (s Scope) Location() properties.StorageLocation {
	_, loc := properties.KeyFor(s.Configuration, s.Platform, "", properties.ConfigurationAndPlatformSpecific)
	return loc
}

// Classify finds the scope a condition selects by evaluating it over every
// candidate configuration/platform pair. It succeeds when the true pairs are
// all pairs (base), one configuration on every platform, one platform in
// every configuration, or exactly one pair.
func Classify(c *Condition, configurations, platforms []string) (Scope, bool) {
	if c == nil {
		return Scope{}, true
	}
	var hits []Scope
	for _, cfg := range configurations {
		for _, plat := range platforms {
			ok, err := c.Evaluate(map[string]string{"Configuration": cfg, "Platform": plat})
			if err != nil {
				return Scope{}, false
			}
			if ok {
				hits = append(hits, Scope{Configuration: cfg, Platform: plat})
			}
		}
	}

	total := len(configurations) * len(platforms)
	switch {
	case len(hits) == 0:
		return Scope{}, false
	case len(hits) == total:
		return Scope{}, true
	case len(hits) == 1 && len(configurations) > 1 && len(platforms) > 1:
		return hits[0], true
	}

	if cfg, ok := sameField(hits, func(s Scope) string { return s.Configuration }); ok && len(hits) == len(platforms) {
		return Scope{Configuration: cfg}, true
	}
	if plat, ok := sameField(hits, func(s Scope) string { return s.Platform }); ok && len(hits) == len(configurations) {
		return Scope{Platform: plat}, true
	}
	if len(hits) == 1 {
		return hits[0], true
	}
	return Scope{}, false
}

func sameField(hits []Scope, field func(Scope) string) (string, bool) {
	v := field(hits[0])
	for _, h := range hits[1:] {
		if field(h) != v {
			return "", false
		}
	}
	return v, true
}

// candidates collects the names conditions may select: defaults plus every
// literal segment, deduplicated case-insensitively in first-seen spelling.
func candidates(defaults []string, conds []*Condition) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			out = append(out, name)
		}
	}
	for _, d := range defaults {
		add(d)
	}
	for _, c := range conds {
		for _, l := range c.literals {
			add(l)
		}
	}
	return out
}
