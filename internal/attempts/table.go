// Package attempts formats and orders logged attempts for display.
package attempts

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"climbing/logbook/internal/domain"
)

type Field int

const (
	FieldDate Field = iota
	FieldTime
	FieldGrade
	FieldColour
	FieldAttemptNo
	FieldResult
	FieldMode
)

var fieldNames = map[string]Field{
	"date":      FieldDate,
	"time":      FieldTime,
	"grade":     FieldGrade,
	"colour":    FieldColour,
	"attemptno": FieldAttemptNo,
	"attempt":   FieldAttemptNo,
	"result":    FieldResult,
	"mode":      FieldMode,
}

// SortKey orders attempts by one field.
type SortKey struct {
	Field Field
	Desc  bool
}

// DefaultKeys puts the newest attempts first.
var DefaultKeys = []SortKey{
	{Field: FieldDate, Desc: true},
	{Field: FieldTime, Desc: true},
	{Field: FieldAttemptNo, Desc: true},
}

// ParseKeys parses "date:desc,grade" style sort specs. Direction defaults to ascending.
func ParseKeys(spec string) ([]SortKey, error) {
	if strings.TrimSpace(spec) == "" {
		return DefaultKeys, nil
	}

	var keys []SortKey
	for _, part := range strings.Split(spec, ",") {
		name, dir, _ := strings.Cut(strings.TrimSpace(part), ":")
		field, ok := fieldNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q", name)
		}

		key := SortKey{Field: field}
		switch strings.ToLower(dir) {
		case "", "asc":
		case "desc":
			key.Desc = true
		default:
			return nil, fmt.Errorf("unknown sort direction %q", dir)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Sort orders attempts in place, stably, by keys. gradeOrder ranks grades when known;
// grades missing from it sort lexically after the ranked ones.
func Sort(list []domain.Attempt, gradeOrder map[string]int, keys ...SortKey) {
	if len(keys) == 0 {
		keys = DefaultKeys
	}

	slices.SortStableFunc(list, func(a, b domain.Attempt) int {
		for _, key := range keys {
			c := compare(a, b, key.Field, gradeOrder)
			if key.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func compare(a, b domain.Attempt, f Field, gradeOrder map[string]int) int {
	switch f {
	case FieldDate:
		return cmp.Compare(normalizeDate(a.Date), normalizeDate(b.Date))
	case FieldTime:
		return cmp.Compare(normalizeTime(a.Time), normalizeTime(b.Time))
	case FieldGrade:
		return compareGrades(a.Grade, b.Grade, gradeOrder)
	case FieldColour:
		return cmp.Compare(strings.ToLower(a.Colour), strings.ToLower(b.Colour))
	case FieldAttemptNo:
		return cmp.Compare(a.AttemptNo, b.AttemptNo)
	case FieldResult:
		return cmp.Compare(a.Result, b.Result)
	case FieldMode:
		return cmp.Compare(a.Mode, b.Mode)
	}
	return 0
}

func compareGrades(a, b string, order map[string]int) int {
	ra, okA := order[a]
	rb, okB := order[b]
	switch {
	case okA && okB:
		return cmp.Compare(ra, rb)
	case okA:
		return -1
	case okB:
		return 1
	}
	return cmp.Compare(a, b)
}

// NextAttemptNo is one more than the highest attempt number logged for rid in mode.
func NextAttemptNo(list []domain.Attempt, rid int64, mode string) int {
	highest := 0
	for _, a := range list {
		if a.RID == rid && a.Mode == mode && a.AttemptNo > highest {
			highest = a.AttemptNo
		}
	}
	return highest + 1
}

// ForRoute returns the attempts logged against rid, in their current order.
func ForRoute(list []domain.Attempt, rid int64) []domain.Attempt {
	var out []domain.Attempt
	for _, a := range list {
		if a.RID == rid {
			out = append(out, a)
		}
	}
	return out
}

var Header = []string{"Grade", "Colour", "Mode", "Result", "Rating", "Notes", "Date", "Time"}

// Rows formats attempts as table cells in Header order.
func Rows(list []domain.Attempt) [][]string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rating := ""
		if a.Rating > 0 {
			rating = strconv.Itoa(a.Rating)
		}
		rows = append(rows, []string{
			a.Grade,
			a.Colour,
			a.Mode,
			a.Result,
			rating,
			a.Notes,
			normalizeDate(a.Date),
			normalizeTime(a.Time),
		})
	}
	return rows
}

var dateLayouts = []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05", "02/01/2006"}

// normalizeDate renders a date as 2006-01-02; unparsable values are returned as-is.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return s
}

var timeLayouts = []string{"15:04", time.TimeOnly, "15:04:05.0000000", "3:04 PM"}

// normalizeTime renders a time of day as 15:04; unparsable values are returned as-is.
func normalizeTime(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	return s
}
