package xstrings

import (
	"strings"
	"unicode/utf8"
)

// ChatLimit is the longest message the game accepts in one chat line.
const ChatLimit = 256

// SplitParagraph breaks text into chunks of at most maxLength runes.
// Newlines always start a new chunk, runs of whitespace collapse to one
// space, and words longer than maxLength are cut. Blank chunks are dropped.
func SplitParagraph(text string, maxLength int) []string {
	var chunks []string
	for _, line := range strings.Split(text, "\n") {
		if maxLength <= 0 {
			if l := strings.Join(strings.Fields(line), " "); l != "" {
				chunks = append(chunks, l)
			}
			continue
		}
		chunks = append(chunks, splitLine(line, maxLength)...)
	}
	return chunks
}

// ChatLines splits text into messages that fit the game chat.
func ChatLines(text string) []string {
	return SplitParagraph(text, ChatLimit)
}

func splitLine(line string, maxLength int) []string {
	var (
		chunks []string
		cur    string
	)
	for _, word := range strings.Fields(line) {
		for utf8.RuneCountInString(word) > maxLength {
			if cur != "" {
				chunks = append(chunks, cur)
				cur = ""
			}
			r := []rune(word)
			chunks = append(chunks, string(r[:maxLength]))
			word = string(r[maxLength:])
		}

		switch {
		case cur == "":
			cur = word
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= maxLength:
			cur += " " + word
		default:
			chunks = append(chunks, cur)
			cur = word
		}
	}
	if cur != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}
