package commandbar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/haasonsaas/easel/pkg/actions"
)

// Pronoun phrases rewritten to the most recently created shape. Longer
// phrases first so "the one i just made" wins over bare "it".
var pronounPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bthe one i just (?:made|created|added)\b`),
	regexp.MustCompile(`(?i)\bthe last (?:one|shape)\b`),
	regexp.MustCompile(`(?i)\bthat (?:one|shape)\b`),
	regexp.MustCompile(`(?i)\bit\b`),
	regexp.MustCompile(`(?i)\bthat\b`),
}

// descriptionPattern matches "the <color> <shape>" phrases, e.g. "the red
// circle".
var descriptionPattern = regexp.MustCompile(`(?i)\bthe ([a-z-]+) (rectangle|circle|square|box|text|shape)\b`)

// Resolve rewrites demonstrative references in a command into explicit shape
// identifiers using recent history, most recent first. Resolution is
// best-effort and never blocks submission: anything it cannot resolve passes
// through unchanged.
func Resolve(command string, history *History) string {
	if history == nil {
		return command
	}

	resolved := command

	if match := descriptionPattern.FindStringSubmatch(resolved); match != nil {
		if id, ok := findDescribedShape(history, match[1], match[2]); ok {
			resolved = descriptionPattern.ReplaceAllString(resolved, fmt.Sprintf("shape %s", id))
		}
	}

	for _, pattern := range pronounPatterns {
		if !pattern.MatchString(resolved) {
			continue
		}
		id, ok := history.LastCreatedShape()
		if !ok {
			break
		}
		resolved = pattern.ReplaceAllString(resolved, fmt.Sprintf("shape %s", id))
		break
	}

	return resolved
}

// findDescribedShape scans history newest-first for a command that mentions
// the color and shape words and created something; the newest match wins.
func findDescribedShape(history *History, color, shape string) (string, bool) {
	color = strings.ToLower(color)
	shape = strings.ToLower(shape)
	if _, known := actions.ColorHex(color); !known {
		return "", false
	}
	for _, entry := range history.Recent() {
		if len(entry.ShapeIDs) == 0 {
			continue
		}
		command := strings.ToLower(entry.Command)
		if !strings.Contains(command, color) {
			continue
		}
		// "square" and "box" count as rectangle mentions in either direction.
		if strings.Contains(command, shape) || strings.Contains(command, normalizeShapeWord(shape)) {
			return entry.ShapeIDs[len(entry.ShapeIDs)-1], true
		}
	}
	return "", false
}

func normalizeShapeWord(word string) string {
	switch word {
	case "square", "box":
		return "rect"
	default:
		return strings.TrimSuffix(word, "s")
	}
}
