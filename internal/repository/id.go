package repository

import (
	"strconv"
	"strings"
)

// ParseID converts a path segment into a primary key. ok is false for
// anything that is not a positive base-10 integer; stores answer those with
// not-found rather than a driver error.
func ParseID(raw string) (id int64, ok bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
