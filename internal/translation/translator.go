// Package translation turns English document titles into their translated form
// and runs the worker that reacts to document-created events.
package translation

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Translator translates a single title.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, text string) (string, error)

func (f TranslatorFunc) Translate(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

var (
	ErrEmptyResult = errors.New("translator returned an empty result")
	ErrRateLimited = errors.New("translator rate limit exceeded")
)

var cleanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^.*?(?:translation|translate|here\s*(?:is|are)|this\s*is)[:\s]*`),
	regexp.MustCompile(`^[*\-"]+\s*`),
	regexp.MustCompile(`\s*\(.*?\)\s*`),
	regexp.MustCompile(`\s*\[.*?\]\s*`),
}

// CleanOutput keeps the first line of a provider response and strips
// "Translation:"-style lead-ins, bullets, quotes and bracketed notes.
func CleanOutput(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	line = strings.TrimSpace(line)
	for _, re := range cleanPatterns {
		line = re.ReplaceAllString(line, "")
	}
	return strings.Trim(strings.TrimSpace(line), `"`)
}
