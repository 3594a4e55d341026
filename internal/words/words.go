// Package words converts numeric values into their English word form for
// the *_Words virtual columns. The output carries no list-separating
// commas and no "and" joiners; fractional digits are spelled one by one
// after "point". Callers apply title casing.
package words

import (
	"math"
	"strconv"
	"strings"
)

var ones = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven",
	"eight", "nine", "ten", "eleven", "twelve", "thirteen", "fourteen",
	"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
}

var tens = []string{
	"", "", "twenty", "thirty", "forty", "fifty",
	"sixty", "seventy", "eighty", "ninety",
}

var scales = []string{"", "thousand", "million", "billion", "trillion"}

// FromFloat spells out a number: the integer part in short-scale English,
// then "point" and each fractional digit individually. The fractional
// digits come from the value's shortest decimal representation, so 1234.5
// yields "one thousand two hundred thirty four point five".
func FromFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}

	negative := f < 0
	repr := strconv.FormatFloat(math.Abs(f), 'f', -1, 64)

	intPart := repr
	var fracPart string
	if dot := strings.IndexByte(repr, '.'); dot >= 0 {
		intPart, fracPart = repr[:dot], repr[dot+1:]
	}

	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// Beyond int64 range; spell the integer digits individually.
		return strings.TrimSpace(prefixMinus(negative) + digitwise(intPart) + pointSuffix(fracPart))
	}

	return strings.TrimSpace(prefixMinus(negative) + fromInt(n) + pointSuffix(fracPart))
}

// FromInt spells out an integer in short-scale English.
func FromInt(n int64) string {
	if n < 0 {
		return "minus " + fromInt(-n)
	}
	return fromInt(n)
}

func fromInt(n int64) string {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return "zero"
	}

	var groups []int64
	for n > 0 {
		groups = append(groups, n%1000)
		n /= 1000
	}

	var parts []string
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			continue
		}
		part := belowThousand(int(g))
		if i < len(scales) && scales[i] != "" {
			part += " " + scales[i]
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

func belowThousand(n int) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, ones[n/100], "hundred")
		n %= 100
	}
	switch {
	case n == 0:
	case n < 20:
		parts = append(parts, ones[n])
	default:
		parts = append(parts, tens[n/10])
		if n%10 != 0 {
			parts = append(parts, ones[n%10])
		}
	}
	return strings.Join(parts, " ")
}

func digitwise(digits string) string {
	var parts []string
	for _, d := range digits {
		if d < '0' || d > '9' {
			continue
		}
		parts = append(parts, ones[d-'0'])
	}
	return strings.Join(parts, " ")
}

func pointSuffix(fracPart string) string {
	if fracPart == "" {
		return ""
	}
	return " point " + digitwise(fracPart)
}

func prefixMinus(negative bool) string {
	if negative {
		return "minus "
	}
	return ""
}
