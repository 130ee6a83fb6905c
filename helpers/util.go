package helpers

import (
	"errors"
	"strings"
)

// AppendQueryParam appends a raw key=value pair to link, picking ? or &
// depending on whether link already carries a query
func AppendQueryParam(link, param string) string {
	sep := "?"
	if strings.Contains(link, "?") {
		sep = "&"
	}
	return link + sep + param
}

// Prefix returns the first n bytes of s
func Prefix(s string, n int) (string, error) {
	if n < 0 || len(s) < n {
		return "", errors.New("index out of range")
	}
	return s[:n], nil
}
