package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Calendar attribute keys derived from the resolved timestamp.
const (
	AttrYear    = "Year"
	AttrMonth   = "Month"
	AttrDay     = "Day"
	AttrHour    = "Hour"
	AttrMinute  = "Minute"
	AttrSecond  = "Second"
	AttrWeekday = "Weekday"
	AttrYearday = "Yearday"
)

// ExpandCalendar writes the calendar components of t into attrs. These keys
// always replace metadata tags of the same name.
func ExpandCalendar(attrs Attributes, t time.Time) {
	attrs.Set(AttrYear, t.Format("2006"))
	attrs.Set(AttrMonth, t.Format("01"))
	attrs.Set(AttrDay, t.Format("02"))
	attrs.Set(AttrHour, t.Format("15"))
	attrs.Set(AttrMinute, t.Format("04"))
	attrs.Set(AttrSecond, t.Format("05"))
	attrs.Set(AttrWeekday, strconv.Itoa(int(t.Weekday())))
	attrs.Set(AttrYearday, fmt.Sprintf("%03d", t.YearDay()))
}
