package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Offsets is a list of minute offsets. A stored scalar ("30" or 30) decodes
// to a single-element list, so scalar and list configurations are equivalent.
type Offsets []int

// Minutes returns a single-element Offsets.
func Minutes(m ...int) Offsets {
	return Offsets(m)
}

// UnmarshalJSON accepts a number, a list of numbers, or a numeric string.
func (o *Offsets) UnmarshalJSON(b []byte) error {
	return o.parse(b)
}

// MarshalJSON encodes a single offset as a scalar and several as a list.
func (o Offsets) MarshalJSON() ([]byte, error) {
	if len(o) == 1 {
		return json.Marshal(o[0])
	}
	return json.Marshal([]int(o))
}

// Scan implements sql.Scanner.
func (o *Offsets) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*o = nil
		return nil
	case int64:
		*o = Offsets{int(v)}
		return nil
	case []byte:
		return o.parse(v)
	case string:
		return o.parse([]byte(v))
	default:
		return fmt.Errorf("zap: cannot scan %T into Offsets", value)
	}
}

// Value implements driver.Valuer.
func (o Offsets) Value() (driver.Value, error) {
	if len(o) == 0 {
		return nil, nil
	}
	b, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *Offsets) parse(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*o = nil
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
		if s == "" {
			*o = nil
			return nil
		}
	}
	if strings.HasPrefix(s, "[") {
		var list []json.Number
		if err := json.Unmarshal([]byte(s), &list); err != nil {
			return fmt.Errorf("zap: invalid offsets %q: %w", s, err)
		}
		out := make(Offsets, 0, len(list))
		for _, n := range list {
			v, err := parseMinute(n.String())
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		*o = out
		return nil
	}
	v, err := parseMinute(s)
	if err != nil {
		return err
	}
	*o = Offsets{v}
	return nil
}

func parseMinute(s string) (int, error) {
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("zap: invalid offset %q", s)
	}
	return int(f), nil
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04", "15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("zap: invalid time of day %q", s)
}

// MustTimeOfDay is like ParseTimeOfDay but panics on error.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// On places the time of day on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour, t.Minute, t.Second, 0, day.Location())
}

// Sub returns t-u within a single day.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return t.sinceMidnight() - u.sinceMidnight()
}

func (t TimeOfDay) sinceMidnight() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Scan implements sql.Scanner.
func (t *TimeOfDay) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		*t = TimeOfDay{Hour: v.Hour(), Minute: v.Minute(), Second: v.Second()}
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("zap: cannot scan %T into TimeOfDay", value)
	}
}

func (t *TimeOfDay) scanString(s string) error {
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// FrequencyConfig holds the parameters of a recurrence rule.
type FrequencyConfig struct {
	// Days lists weekday names for weekly schedules ("monday", ...).
	Days []string `json:"days,omitempty"`
	// DaysOfMonth lists days (1-31) for monthly schedules.
	DaysOfMonth []int `json:"days_of_month,omitempty"`
	// Expression is a standard 5-field cron expression for cron schedules.
	Expression string `json:"expression,omitempty"`
}

// Scan implements sql.Scanner.
func (c *FrequencyConfig) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		*c = FrequencyConfig{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("zap: cannot scan %T into FrequencyConfig", value)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		*c = FrequencyConfig{}
		return nil
	}
	return json.Unmarshal(b, c)
}

// Value implements driver.Valuer.
func (c FrequencyConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
