package logging

import (
	"context"
	"log"
)

func init() {
	log.SetFlags(0)
}

// Logf logs a formatted line, prefixed by contextual information when
// available.
func Logf(
	ctx context.Context,
	format string,
	v ...interface{},
) {
	log.Printf(format, v...)
}
