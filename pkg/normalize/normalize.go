package normalize

import (
	"strings"
	"unicode"
)

// NormalizePhone coerces noisy free-text phone input into E.164.
// It never fails: malformed input yields a best-effort result, empty
// input yields an empty string.
//
// Rules:
//   - 10 digits are assumed US and get a "+1" prefix
//   - 11 digits starting with "1" get a "+" prefix
//   - anything longer keeps only the last 10 digits, prefixed "+1"
//   - shorter fragments are kept as-is behind a bare "+"
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return ""
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits
	case len(digits) > 10:
		return "+1" + digits[len(digits)-10:]
	default:
		return "+" + digits
	}
}

// PhoneForSpeech renders an E.164 number for speech synthesis, grouping
// the national digits 3-3-4 with commas so the TTS voice pauses between
// area code, exchange and line.
func PhoneForSpeech(e164 string) string {
	digits := strings.TrimPrefix(e164, "+")
	digits = strings.TrimPrefix(digits, "1")

	if len(digits) != 10 {
		// Non-US or partial number: space the digits out individually.
		parts := make([]string, 0, len(digits))
		for _, r := range digits {
			parts = append(parts, string(r))
		}
		return strings.Join(parts, " ")
	}

	return digits[0:3] + ", " + digits[3:6] + ", " + digits[6:10]
}

// CleanName trims, drops everything outside letters, spaces, apostrophes
// and hyphens, and title-cases each word.
func CleanName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || r == ' ' || r == '\'' || r == '-' {
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// CleanAddress trims and collapses internal whitespace runs to single spaces.
func CleanAddress(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
