package timestamp

import (
	"time"

	"go.uber.org/atomic"
)

//LogsLayout is a date time representation for log records prefixes
const LogsLayout = "2006-01-02 15:04:05"

//frozenAt is unix nanos returned by Now while the clock is frozen, 0 means real time
var frozenAt = atomic.NewInt64(0)

//Now returns current time or the frozen moment
func Now() time.Time {
	if nanos := frozenAt.Load(); nanos != 0 {
		return time.Unix(0, nanos).UTC()
	}
	return time.Now()
}

//Freeze makes Now return at until Unfreeze. Used in tests only
func Freeze(at time.Time) {
	frozenAt.Store(at.UnixNano())
}

func Unfreeze() {
	frozenAt.Store(0)
}
