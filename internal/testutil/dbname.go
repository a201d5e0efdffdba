package testutil

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// MongoDB database names are limited to 63 bytes and reject these characters.
const (
	maxDBNameLen   = 63
	invalidDBChars = `/\. "$*<>:|?`
)

var dbSeq atomic.Uint64

// SanitizeDBName turns a test name into a unique, valid MongoDB database name.
func SanitizeDBName(testName string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidDBChars, r) || r > 127 {
			return '_'
		}
		return r
	}, testName)

	suffix := "_" + strconv.FormatInt(time.Now().UnixNano()%1_000_000, 36) + strconv.FormatUint(dbSeq.Add(1), 36)
	if len(name)+len(suffix) > maxDBNameLen {
		name = name[:maxDBNameLen-len(suffix)]
	}
	return name + suffix
}
