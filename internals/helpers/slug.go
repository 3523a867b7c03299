package helper

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reHyphen   = regexp.MustCompile(`-+`)
	reSlugKey  = regexp.MustCompile(`^[a-z0-9._-]+$`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

const MaxKeyLength = 100

// Slugify turns free text into [a-z0-9-], strips diacritics, collapses dashes
// and cuts to maxLen (100 when <= 0). Empty results become "item".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = MaxKeyLength
	}
	s = strings.ToLower(strings.TrimSpace(s))

	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reNonAlnum.ReplaceAllString(s, "-")
	s = reHyphen.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if utf8.RuneCountInString(s) > maxLen {
		s = strings.Trim(string([]rune(s)[:maxLen]), "-")
	}
	if s == "" {
		s = "item"
	}
	return s
}

// IsSlugKey reports whether s is a usable form-type or field key:
// lowercase alphanumerics plus "-", "_" and ".", 1..100 chars.
func IsSlugKey(s string) bool {
	return s != "" && len(s) <= MaxKeyLength && reSlugKey.MatchString(s)
}

// DeriveLabel builds a display label from a field key:
// "annual_total-consumption" -> "Annual Total Consumption". Letters after the
// first of each word keep their case, so "LPG_usage" -> "LPG Usage".
func DeriveLabel(key string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(key)
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	// Casers are stateful; one per call.
	return cases.Title(language.Und, cases.NoLower).String(s)
}
