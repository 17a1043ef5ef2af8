package utils

import (
	"errors"
	"strconv"
)

// ErrInvalidID is returned by ParseID for anything but a positive integer.
var ErrInvalidID = errors.New("invalid ID")

// ParseID parses a positive integer record ID, as taken from a URL path.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
