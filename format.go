package fxswap

import (
	"strings"

	"golang.org/x/text/language"
)

// NumberFormat describes how [Fixed.ToFormat] renders a number for humans.
type NumberFormat struct {
	// Locale selects the grouping and decimal separators.
	// Unsupported locales fall back to American English.
	Locale language.Tag
	// Grouping enables thousands separators in the integer part.
	Grouping bool
	// Digits is the maximum number of digits after the decimal point.
	Digits int
	// Fixed pads the fractional part with zeros to exactly Digits digits.
	// Otherwise trailing zeros are omitted.
	Fixed bool
	// TrimWhole omits the fractional part when all its digits are zero.
	TrimWhole bool
}

// Predefined number formats.
var (
	// FormatEUR renders amounts the way euro prices are usually written: 1.000,36
	FormatEUR = NumberFormat{Locale: language.MustParse("de-DE"), Grouping: true, Digits: 2, Fixed: true, TrimWhole: true}
	// FormatDollar renders amounts the way dollar prices are usually written: 1,000.36
	FormatDollar = NumberFormat{Locale: language.AmericanEnglish, Grouping: true, Digits: 2, Fixed: true, TrimWhole: true}
	// FormatToken renders token amounts with up to 8 significant fractional digits: 1,000.12345678
	FormatToken = NumberFormat{Locale: language.AmericanEnglish, Grouping: true, Digits: 8}
	// FormatPercent renders percentages without grouping: 1000.50
	FormatPercent = NumberFormat{Locale: language.AmericanEnglish, Digits: 2, Fixed: true, TrimWhole: true}
)

// WithDigits returns a copy of the format with a different number of
// fractional digits.
func (nf NumberFormat) WithDigits(digits int) NumberFormat {
	nf.Digits = digits
	return nf
}

type separators struct {
	group   string
	decimal string
}

// The first locale is the fallback.
var (
	localeTags = []language.Tag{
		language.AmericanEnglish,
		language.BritishEnglish,
		language.German,
		language.MustParse("de-CH"),
		language.French,
		language.Italian,
		language.Japanese,
	}
	localeSeps = []separators{
		{",", "."},
		{",", "."},
		{".", ","},
		{"\u2019", "."},
		{"\u202f", ","},
		{".", ","},
		{",", "."},
	}
	localeMatcher = language.NewMatcher(localeTags)
)

func (nf NumberFormat) separators() separators {
	_, i, conf := localeMatcher.Match(nf.Locale)
	if conf == language.No || i < 0 || i >= len(localeSeps) {
		return localeSeps[0]
	}
	return localeSeps[i]
}

// ToFormat returns a locale-aware representation of the number.
// Digits beyond [NumberFormat.Digits] are truncated.
func (f Fixed) ToFormat(nf NumberFormat) string {
	digits := min(max(nf.Digits, 0), Scale)
	neg, whole, frac := f.parts(digits)
	switch {
	case nf.TrimWhole && strings.Trim(frac, "0") == "":
		frac = ""
	case !nf.Fixed:
		frac = strings.TrimRight(frac, "0")
	}

	seps := nf.separators()
	if nf.Grouping {
		whole = groupDigits(whole, seps.group)
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(whole)
	if frac != "" {
		b.WriteString(seps.decimal)
		b.WriteString(frac)
	}
	return b.String()
}

// groupDigits inserts sep between every group of three digits counting from the right.
func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
