// Package validation enforces draft rules one layer above the stores. The
// stores themselves accept any input; callers run drafts through here
// before handing them over.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

type Rules struct {
	// MaxContentLen bounds message text length; zero means unbounded.
	MaxContentLen int
	// MaxImageLen bounds the attached image data URI; zero means unbounded.
	MaxImageLen int
	// RequireBody rejects messages with neither content nor image.
	RequireBody bool
}

var rules = Rules{RequireBody: true}

// SetRules installs the process-wide rules, typically from config.
func SetRules(r Rules) { rules = r }

// GetRules returns the installed rules.
func GetRules() Rules { return rules }

// ValidateMessage checks a message draft's content and image against the
// installed rules.
func ValidateMessage(content, image string) error {
	var errs []string
	if rules.RequireBody && strings.TrimSpace(content) == "" && image == "" {
		errs = append(errs, "message needs content or an image")
	}
	if rules.MaxContentLen > 0 && len(content) > rules.MaxContentLen {
		errs = append(errs, fmt.Sprintf("content exceeds %d bytes", rules.MaxContentLen))
	}
	if rules.MaxImageLen > 0 && len(image) > rules.MaxImageLen {
		errs = append(errs, fmt.Sprintf("image exceeds %d bytes", rules.MaxImageLen))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateChannelName rejects empty and oversized channel/server names.
func ValidateChannelName(name string) error {
	n := strings.TrimSpace(name)
	if n == "" {
		return errors.New("name is required")
	}
	if len(n) > 100 {
		return errors.New("name exceeds 100 characters")
	}
	return nil
}
