// Package slug generates subdomain slugs for new projects.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
)

const maxAttempts = 10

var invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)

// FromName turns a project name into a subdomain-safe slug, or "" when
// nothing survives sanitization.
func FromName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = invalidChars.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

// Random produces a two-word slug like "brave-mountain".
func Random() string {
	return fmt.Sprintf("%s-%s",
		strings.ToLower(gofakeit.AdjectiveDescriptive()),
		strings.ToLower(gofakeit.NounConcrete()),
	)
}

// Unique returns a slug derived from name that exists reports as free,
// falling back to random slugs and finally a random suffix.
func Unique(ctx context.Context, name string, exists func(ctx context.Context, slug string) (bool, error)) (string, error) {
	candidate := FromName(name)
	if candidate != "" {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	for i := 0; i < maxAttempts; i++ {
		candidate = Random()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	// Random words keep colliding; a numeric suffix settles it.
	candidate = fmt.Sprintf("%s-%d", Random(), gofakeit.Number(1000, 9999))
	taken, err := exists(ctx, candidate)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("could not find a free subdomain after %d attempts", maxAttempts+2)
	}
	return candidate, nil
}
