package profiler

import (
	"strconv"
	"time"
)

func formatMillis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
