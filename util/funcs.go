package util

import (
	"fmt"
	"strings"
)

// Map returns a new slice with f applied to every element of s
func Map[A, B any](s []A, f func(A) B) []B {
	if s == nil {
		return nil
	}
	out := make([]B, len(s))
	for i, elem := range s {
		out[i] = f(elem)
	}
	return out
}

// JoinStrings renders every element of s with fmt and joins them with sep
func JoinStrings[A any](s []A, sep string) string {
	sb := strings.Builder{}
	for i, elem := range s {
		if i > 0 {
			sb.WriteString(sep)
		}
		_, _ = fmt.Fprint(&sb, elem)
	}
	return sb.String()
}
