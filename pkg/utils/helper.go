package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseID parses a positive numeric identifier from a path or form value.
func ParseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return id, nil
}
