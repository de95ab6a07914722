package types

import "regexp"

var (
	punctRegexp  = regexp.MustCompile(`^[-!"#%&'()*,./:;?@\[\]_{}、]+$`)
	numberRegexp = regexp.MustCompile(`^-*([0-9]+|[0-9]+\.[0-9]+|[0-9]+[0-9,]+)$`)
)

const NumberToken = "<num>"

func IsPunct(form string) bool {
	return punctRegexp.MatchString(form)
}

// Normalize maps bracket tokens to brackets and numbers to NumberToken
func Normalize(form string) string {
	switch form {
	case "-LRB-":
		return "("
	case "-RRB-":
		return ")"
	}
	if numberRegexp.MatchString(form) {
		return NumberToken
	}
	return form
}
