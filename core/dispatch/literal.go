package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/pkg/botapi"
)

type literal int

const (
	literalStop literal = iota
	literalStatus
	literalFollow
	literalCome
	literalInventory
)

var (
	stopRe      = regexp.MustCompile(`(?i)\bstop\b`)
	statusRe    = regexp.MustCompile(`(?i)\b(?:status|health)\b|\bhow are you\b`)
	followMeRe  = regexp.MustCompile(`(?i)\bfollow me\b`)
	comeRe      = regexp.MustCompile(`(?i)\bcome (?:here|to me)\b`)
	inventoryRe = regexp.MustCompile(`(?i)\binventory\b`)
	followWhoRe = regexp.MustCompile(`(?i)\bfollow\s+([^\s,.!?:;]+)`)
)

// Addressed reports whether message contains name, ignoring case.
func Addressed(name, message string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(message), strings.ToLower(name))
}

// StripName removes a leading "name", "name:" or "name," from message.
func StripName(name, message string) string {
	trimmed := strings.TrimSpace(message)
	head, rest, ok := cutRunes(trimmed, utf8.RuneCountInString(name))
	if !ok || !strings.EqualFold(head, name) {
		return trimmed
	}
	if rest != "" && !strings.ContainsRune(" \t:,", rune(rest[0])) {
		// name is only a prefix of a longer word
		return trimmed
	}
	rest = strings.TrimLeft(rest, " \t")
	rest = strings.TrimPrefix(rest, ":")
	rest = strings.TrimPrefix(rest, ",")
	return strings.TrimSpace(rest)
}

// matchLiteral finds the literal command in cmd. Stop is checked first and
// wins even when the line also asks for something else.
func matchLiteral(cmd, speaker string) (literal, bool) {
	switch {
	case stopRe.MatchString(cmd):
		return literalStop, true
	case comeRe.MatchString(cmd):
		return literalCome, true
	case followMeRe.MatchString(cmd), followsSpeaker(cmd, speaker):
		return literalFollow, true
	case statusRe.MatchString(cmd):
		return literalStatus, true
	case inventoryRe.MatchString(cmd):
		return literalInventory, true
	}
	return 0, false
}

// cutRunes splits s after its first n runes.
func cutRunes(s string, n int) (string, string, bool) {
	i := 0
	for ; n > 0; n-- {
		if i >= len(s) {
			return "", "", false
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:], true
}

func followsSpeaker(cmd, speaker string) bool {
	speaker = strings.TrimSpace(speaker)
	if speaker == "" {
		return false
	}
	for _, m := range followWhoRe.FindAllStringSubmatch(cmd, -1) {
		if strings.EqualFold(m[1], speaker) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) runLiteral(ctx context.Context, lit literal, speaker string, res *types.DispatchResult) {
	record := func(name string, args []any, r botapi.Result) {
		res.Results = append(res.Results, types.ActionResult{
			Action:  name,
			Args:    args,
			Success: r.Success,
			Message: r.Message,
		})
	}

	switch lit {
	case literalStop:
		r := d.api.Stop(ctx)
		record("stopActivity", nil, r)
		res.Reply = replyFor(r, "Stopping.", "I couldn't stop")

	case literalFollow, literalCome:
		r := d.api.FollowPlayer(ctx, speaker)
		record("followPlayer", []any{speaker}, r)
		ok := fmt.Sprintf("Following you, %s!", speaker)
		if lit == literalCome {
			ok = fmt.Sprintf("Coming to you, %s!", speaker)
		}
		res.Reply = replyFor(r, ok, "I can't follow you")

	case literalStatus:
		r := d.api.Status(ctx)
		record("status", nil, r)
		if !r.Success {
			res.Reply = replyFor(r, "", "I can't check my status right now")
			return
		}
		status, err := botapi.DecodeStatus(r.Data)
		if err != nil {
			res.Reply = "I can't read my status right now."
			return
		}
		res.Reply = status.Line()

	case literalInventory:
		r := d.api.Inventory(ctx)
		record("inventory", nil, r)
		if !r.Success {
			res.Reply = replyFor(r, "", "I can't check my inventory right now")
			return
		}
		inv, err := botapi.DecodeInventory(r.Data)
		if err != nil {
			res.Reply = "I can't read my inventory right now."
			return
		}
		res.Reply = inv.Line()
	}
}

func replyFor(r botapi.Result, ok, failed string) string {
	if r.Success {
		return ok
	}
	if r.Message == "" {
		return failed + "."
	}
	return fmt.Sprintf("%s: %s", failed, r.Message)
}
