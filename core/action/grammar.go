package action

import (
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/mudler/MCBridge/core/types"
)

type rule struct {
	def types.ActionDefinition
	re  *regexp.Regexp
}

// Grammar matches the call syntaxes of a set of action definitions in
// free text. Matching is case-insensitive and accepts every alias.
type Grammar struct {
	rules []rule
}

// DefaultGrammar is compiled from Definitions.
var DefaultGrammar = NewGrammar(Definitions)

func NewGrammar(defs []types.ActionDefinition) *Grammar {
	g := &Grammar{}
	for _, def := range defs {
		names := def.Names()
		// longest first so an alias never shadows the descriptive name
		sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = regexp.QuoteMeta(n)
		}
		// the argument list must follow the name directly, so prose such as
		// "use (carefully)" never reads as a call
		pattern := `(?i)\b(?:` + strings.Join(quoted, "|") + `)\(([^()]*)\)`
		g.rules = append(g.rules, rule{def: def, re: regexp.MustCompile(pattern)})
	}
	return g
}

// Definitions returns the definitions the grammar was built from.
func (g *Grammar) Definitions() []types.ActionDefinition {
	defs := make([]types.ActionDefinition, 0, len(g.rules))
	for _, r := range g.rules {
		defs = append(defs, r.def)
	}
	return defs
}

// Parse extracts every well-formed invocation from text, in the order they
// appear. Matches whose arguments do not fit the declared shape are skipped.
func (g *Grammar) Parse(text string) []types.ActionInvocation {
	var found []types.ActionInvocation
	for _, r := range g.rules {
		for _, loc := range r.re.FindAllStringSubmatchIndex(text, -1) {
			args, ok := parseArgs(text[loc[2]:loc[3]], r.def.Params)
			if !ok {
				continue
			}
			found = append(found, types.ActionInvocation{
				Name:  r.def.Name,
				Op:    r.def.Op,
				Args:  args,
				Match: text[loc[0]:loc[1]],
				Start: loc[0],
			})
		}
	}

	slices.SortStableFunc(found, func(a, b types.ActionInvocation) int { return a.Start - b.Start })

	// drop anything overlapping an earlier match
	out := found[:0]
	end := -1
	for _, inv := range found {
		if inv.Start < end {
			continue
		}
		out = append(out, inv)
		end = inv.Start + len(inv.Match)
	}
	return out
}

func parseArgs(raw string, params []types.ActionParam) ([]any, bool) {
	raw = strings.TrimSpace(raw)
	if len(params) == 0 {
		return []any{}, raw == ""
	}

	tokens := splitArgs(raw)
	if len(tokens) != len(params) {
		return nil, false
	}

	args := make([]any, 0, len(params))
	for i, p := range params {
		tok := strings.TrimSpace(tokens[i])
		switch p.Kind {
		case types.ArgInt:
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, false
			}
			args = append(args, n)
		case types.ArgFloat:
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, false
			}
			args = append(args, f)
		default:
			s, quoted := unquote(tok)
			s = strings.TrimSpace(s)
			// bare words only: unquoted text with spaces is prose
			if s == "" || (!quoted && strings.ContainsAny(s, " \t")) {
				return nil, false
			}
			args = append(args, s)
		}
	}
	return args, true
}

// splitArgs splits on commas that are not inside quotes.
func splitArgs(raw string) []string {
	var (
		tokens []string
		cur    strings.Builder
		quote  rune
	)
	for _, c := range raw {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			cur.WriteRune(c)
		case c == '"' || c == '\'':
			quote = c
			cur.WriteRune(c)
		case c == ',':
			tokens = append(tokens, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	return append(tokens, cur.String())
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}
