package validation

import (
	"regexp"
	"time"
)

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhoneNumber applies a punctuation template to 10, 11 and 12 digit
// numbers. Any other length is returned unchanged.
func FormatPhoneNumber(phone string) string {
	d := nonDigits.ReplaceAllString(phone, "")
	switch len(d) {
	case 10:
		return "(" + d[0:3] + ") " + d[3:6] + "-" + d[6:10]
	case 11:
		return "+" + d[0:1] + " (" + d[1:4] + ") " + d[4:7] + "-" + d[7:11]
	case 12:
		return "+" + d[0:2] + " (" + d[2:5] + ") " + d[5:8] + "-" + d[8:12]
	default:
		return phone
	}
}

// FormatDate renders a DateLayout value as a long calendar date, for example
// "May 15, 2002". Values that do not parse are returned unchanged.
func FormatDate(value string) string {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return value
	}
	return t.Format("January 2, 2006")
}
