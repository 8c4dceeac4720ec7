package common

import (
	"time"
)

// DisplayDateLayout renders dates as "March 07, 2024".
const DisplayDateLayout = "January 02, 2006"

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayDateLayout)
}
