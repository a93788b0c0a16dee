package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
)

var separatorRun = regexp.MustCompile(`[_\-]+`)

// ToClassName converts a snake_case or kebab-case identifier into a class name:
// "user_profile" -> "UserProfile", "API_key" -> "ApiKey", "über_user" -> "ÜberUser".
func ToClassName(raw string) string {
	var b strings.Builder
	for _, word := range separatorRun.Split(raw, -1) {
		if word == "" {
			continue
		}
		b.WriteString(titleWord(word))
	}

	s := b.String()
	if s == "" {
		return ""
	}
	// titleWord leaves a leading digit alone; make sure the first letter is still upper-case
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + s[size:]
}

// titleWord title-cases the first letter of every letter run and lower-cases the rest,
// so "2fa" becomes "2Fa" and "KEY" becomes "Key".
func titleWord(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	startOfRun := true
	for _, r := range word {
		switch {
		case unicode.IsLetter(r) && startOfRun:
			b.WriteRune(unicode.ToTitle(r))
			startOfRun = false
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
			startOfRun = true
		}
	}
	return b.String()
}

// Pluralize returns the plural form of an English noun. Words that are already plural
// are returned unchanged ("tags" stays "tags").
func Pluralize(word string) string {
	if word == "" {
		return ""
	}
	return inflection.Plural(word)
}
