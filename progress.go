package arczip

import (
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

// ProgressReporter is called once per file added to or extracted from the
// archive. op is "add" or "extract"; name is the archive-internal name.
type ProgressReporter func(op, name string, size int64)

var defaultReportRate = rate.Sometimes{Interval: 5 * time.Second}

// DefaultProgressReporter logs at most one progress line every few seconds so
// large trees don't flood the output.
func DefaultProgressReporter(op, name string, size int64) {
	defaultReportRate.Do(func() {
		log.Printf("%s %s (%s)", op, name, humanize.Bytes(uint64(size)))
	})
}
