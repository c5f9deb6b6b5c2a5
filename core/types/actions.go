package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgKind is the declared type of a positional action argument.
type ArgKind int

const (
	ArgString ArgKind = iota
	ArgInt
	ArgFloat
)

func (k ArgKind) String() string {
	switch k {
	case ArgInt:
		return "int"
	case ArgFloat:
		return "float"
	default:
		return "string"
	}
}

// ActionParam is one positional slot of an action call syntax.
type ActionParam struct {
	Name string
	Kind ArgKind
}

type ActionDefinitionName string

func (a ActionDefinitionName) Is(name string) bool {
	return strings.EqualFold(string(a), name)
}

func (a ActionDefinitionName) String() string {
	return string(a)
}

// ActionDefinition describes a textual call syntax the model may emit,
// e.g. moveTo(x, y, z). Aliases are alternative spellings of the same call.
type ActionDefinition struct {
	Name        ActionDefinitionName
	Aliases     []string
	Params      []ActionParam
	Op          string
	Description string
}

// Names returns the descriptive name followed by the aliases.
func (a ActionDefinition) Names() []string {
	return append([]string{a.Name.String()}, a.Aliases...)
}

// Syntax renders the literal call syntax shown to the model.
func (a ActionDefinition) Syntax() string {
	args := make([]string, 0, len(a.Params))
	for _, p := range a.Params {
		if p.Kind == ArgString {
			args = append(args, strconv.Quote(p.Name))
		} else {
			args = append(args, p.Name)
		}
	}
	return fmt.Sprintf("%s(%s)", a.Name, strings.Join(args, ", "))
}

// ActionInvocation is a parsed call extracted from generated text.
type ActionInvocation struct {
	Name ActionDefinitionName
	Op   string
	Args []any
	// Match is the exact substring the invocation was parsed from.
	// Synthesized invocations have an empty Match.
	Match string
	Start int
}

func (i ActionInvocation) String() string {
	return fmt.Sprintf("%s(%s)", i.Name, FormatArgs(i.Args))
}

// ActionResult is the outcome of executing one ActionInvocation.
type ActionResult struct {
	Action  string `json:"action"`
	Args    []any  `json:"args"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Report renders the result as "name(args): outcome".
func (r ActionResult) Report() string {
	outcome := r.Message
	if !r.Success {
		outcome = "failed: " + r.Message
	} else if outcome == "" {
		outcome = "ok"
	}
	return fmt.Sprintf("%s(%s): %s", r.Action, FormatArgs(r.Args), outcome)
}

// FormatArgs joins arguments the way they appear in a call.
func FormatArgs(args []any) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch v := a.(type) {
		case float64:
			parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, ", ")
}
