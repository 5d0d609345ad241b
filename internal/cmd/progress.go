package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/vqhuy/arczip"
)

// spinnerBytes returns a byte-counting spinner plus an arczip.ProgressReporter
// feeding it; the total is unknown up front so no percentage is shown.
func spinnerBytes(description string) (*progressbar.ProgressBar, arczip.ProgressReporter) {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(1*time.Second),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14))

	return bar, func(_, _ string, size int64) {
		_ = bar.Add64(size)
	}
}
