// Package textutil normalises user-entered text for search and parses the
// duration strings the recipe backend exchanges.
package textutil

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// đ/Đ have no canonical decomposition, so they are mapped explicitly.
var stroke = strings.NewReplacer("đ", "d", "Đ", "D")

// RemoveDiacritics strips combining marks: "Phở bò" -> "Pho bo".
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return stroke.Replace(out)
}

// Normalize folds s into the form stored in search columns.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(RemoveDiacritics(s)), " "))
}

// DurationToMinutes parses "hh:mm:ss" or "dd.hh:mm:ss" into whole minutes.
// Anything else yields 0.
func DurationToMinutes(value string) int {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ':' || r == '.' })
	nums := make([]float64, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		nums[i] = float64(n)
	}

	var total float64
	switch len(nums) {
	case 3:
		total = nums[0]*60 + nums[1] + nums[2]/60
	case 4:
		total = nums[0]*24*60 + nums[1]*60 + nums[2] + nums[3]/60
	default:
		return 0
	}
	return int(math.Round(total))
}

// MinutesToDuration renders minutes in the "hh:mm:ss" form.
func MinutesToDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return strconv.Itoa(minutes/60) + ":" + pad2(minutes%60) + ":00"
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
