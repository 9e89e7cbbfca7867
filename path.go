package sitescout

import (
	"regexp"
	"strings"
)

// drivePathPattern matches a drive-letter path such as C:\Users.
var drivePathPattern = regexp.MustCompile(`^[A-Za-z]:\\`)

// posixPathPrefixes are the prefixes that mark a string as a local path.
var posixPathPrefixes = []string{"/", "./", "../", "~/"}

// IsPosixPath reports whether s names a local POSIX filesystem path rather
// than a network endpoint such as ftp://host/path. It is used to choose a
// storage backend from a target string.
func IsPosixPath(s string) bool {
	if s == "" || drivePathPattern.MatchString(s) {
		return false
	}
	for _, prefix := range posixPathPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
