package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var websiteURLRegex = regexp.MustCompile(`^https://([a-zA-Z0-9_-]+\.)+[a-zA-Z0-9_-]+(\/[a-zA-Z0-9_-]+)*\/?$`)

// Length limits for user content, in characters.
const (
	BlogNameMax        = 15
	BlogDescriptionMax = 500
	BlogWebsiteURLMax  = 100
	PostTitleMax       = 30
	PostShortDescMax   = 100
	PostContentMax     = 1000
	CommentContentMin  = 20
	CommentContentMax  = 300
)

// RequiredText trims s and checks it is non-empty and at most limit characters.
func RequiredText(s string, limit int) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("must not be empty")
	}
	if utf8.RuneCountInString(s) > limit {
		return fmt.Errorf("must not exceed %d characters", limit)
	}
	return nil
}

// ValidateWebsiteURL requires an https URL of at most 100 characters.
func ValidateWebsiteURL(u string) error {
	if err := RequiredText(u, BlogWebsiteURLMax); err != nil {
		return err
	}
	if !websiteURLRegex.MatchString(u) {
		return fmt.Errorf("must be a valid https URL")
	}
	return nil
}

// ValidateCommentContent requires 20-300 characters.
func ValidateCommentContent(content string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(content))
	if n < CommentContentMin || n > CommentContentMax {
		return fmt.Errorf("content must be between %d and %d characters", CommentContentMin, CommentContentMax)
	}
	return nil
}
