package banking

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	dayFirstDate  = regexp.MustCompile(`(\d{2})[/-](\d{2})[/-](\d{4})`)
	yearFirstDate = regexp.MustCompile(`(\d{4})[/-](\d{2})[/-](\d{2})`)
	amountPattern = regexp.MustCompile(`\d+\.?\d*`)
)

// ExtractNationalID keeps only the digits of text and accepts exactly 11.
func ExtractNationalID(text string) (string, bool) {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return "", false
	}
	return digits, true
}

// NormalizeBirthDate finds a DD/MM/YYYY or YYYY-MM-DD date in text (either
// separator) and returns it as YYYY-MM-DD.
func NormalizeBirthDate(text string) (string, bool) {
	if m := dayFirstDate.FindStringSubmatch(text); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1], true
	}
	if m := yearFirstDate.FindStringSubmatch(text); m != nil {
		return strings.ReplaceAll(m[0], "/", "-"), true
	}
	return "", false
}

// extractAmount returns the first number in text, reading ',' as the decimal
// separator. Thousands separators are not understood: "5.000" reads as 5.
func extractAmount(text string) (float64, bool) {
	m := amountPattern.FindString(strings.ReplaceAll(text, ",", "."))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// containsWord reports whether any of words appears as a whole token in text.
func containsWord(text string, words ...string) bool {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

// wholeReply reports whether text, minus punctuation, is exactly one of words.
func wholeReply(text string, words ...string) bool {
	trimmed := strings.TrimFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if trimmed == w {
			return true
		}
	}
	return false
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func maskNationalID(id string) string {
	if len(id) != 11 {
		return "***"
	}
	return id[:3] + "*****" + id[8:]
}
