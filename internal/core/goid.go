package core

import (
	"runtime"
	"strconv"
	"strings"
)

// goroutineID returns the current goroutine's id, parsed from the
// runtime.Stack header ("goroutine 123 [running]:"). The runtime does not
// expose goroutine identity directly, and the pop-error protocol needs to
// tag records with the caller's identity transparently.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)

	header := strings.TrimPrefix(string(buf[:n]), "goroutine ")

	idField, _, _ := strings.Cut(header, " ")

	id, err := strconv.ParseUint(idField, 10, 64)
	if err != nil {
		return 0
	}

	return id
}
