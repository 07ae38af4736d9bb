// Package transform provides the content transformations shipped with the
// refit binary. The pipeline itself accepts any content.Transform; this
// package only implements the rules-based literal replacer that the CLI
// builds from its config file.
package transform

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"refit/pkg/content"
)

// Rule is a single literal text replacement.
type Rule struct {
	From string
	To   string
}

// ValidateRules checks that every rule has a non-empty From text.
func ValidateRules(rules []Rule) error {
	for i, rule := range rules {
		if rule.From == "" {
			return errors.Errorf("rule %d: from text is required", i)
		}
	}
	return nil
}

// NewReplacer builds a transform that applies rules in order to the whole
// content. The returned transform is pure and never fails.
func NewReplacer(rules []Rule) content.Transform {
	return func(in content.Content) (content.Content, error) {
		text := string(in.Text)
		for _, rule := range rules {
			if rule.From == "" {
				continue
			}
			text = strings.ReplaceAll(text, rule.From, rule.To)
		}
		return content.Content{Source: in.Source, Text: []byte(text)}, nil
	}
}
