package model

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
)

// TimeRange は1日のうちの時間帯を表す。StartとEndは "15:04:05" 形式。
// DB上はtime_range複合型（start_time TIME, end_time TIME）に対応する。
type TimeRange struct {
	Start string
	End   string
}

// TimeRanges はtime_range[]列の値。
type TimeRanges []TimeRange

var timeRangePattern = regexp.MustCompile(`\(([0-9:.]*),([0-9:.]*)\)`)

// Value はPostgreSQLの複合型配列リテラルを返す。
// 例: {"(09:00:00,14:00:00)","(18:00:00,20:00:00)"}
func (r TimeRanges) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}

	elems := make([]string, 0, len(r))
	for _, tr := range r {
		elems = append(elems, fmt.Sprintf(`"(%s,%s)"`, tr.Start, tr.End))
	}
	return "{" + strings.Join(elems, ",") + "}", nil
}

// Scan はtime_range[]のテキスト表現を読み取る。
func (r *TimeRanges) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("cannot scan %T into TimeRanges", src)
	}

	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return fmt.Errorf("invalid time_range array literal: %q", s)
	}

	matches := timeRangePattern.FindAllStringSubmatch(s, -1)
	ranges := make(TimeRanges, 0, len(matches))
	for _, m := range matches {
		ranges = append(ranges, TimeRange{Start: m[1], End: m[2]})
	}
	*r = ranges
	return nil
}
