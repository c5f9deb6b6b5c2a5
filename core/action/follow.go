package action

import (
	"strings"
)

var followCues = []string{
	"i will follow",
	"i'll follow",
	"following you",
	"coming to you",
	"on my way",
}

// FollowIntent reports whether text promises to follow or approach someone
// without spelling out a followPlayer call.
func FollowIntent(text string) bool {
	lower := strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	for _, cue := range followCues {
		if strings.Contains(lower, cue) {
			return true
		}
	}
	return false
}

// Catalogue renders one line per action for the model prompt.
func (g *Grammar) Catalogue() []string {
	defs := g.Definitions()
	lines := make([]string, 0, len(defs))
	for _, def := range defs {
		line := "- " + def.Syntax()
		if len(def.Aliases) > 0 {
			line += " (also: " + strings.Join(def.Aliases, ", ") + ")"
		}
		if def.Description != "" {
			line += ": " + def.Description
		}
		lines = append(lines, line)
	}
	return lines
}

// Catalogue renders the default grammar.
func Catalogue() string {
	return strings.Join(DefaultGrammar.Catalogue(), "\n")
}
