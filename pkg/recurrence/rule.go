package recurrence

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// Rule reports whether a recurrence matches a calendar day.
type Rule interface {
	Matches(day time.Time) bool
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(day time.Time) bool

// Matches implements Rule.
func (f RuleFunc) Matches(day time.Time) bool { return f(day) }

// Never matches no day.
var Never Rule = RuleFunc(func(time.Time) bool { return false })

// Daily matches every day.
func Daily() Rule {
	return RuleFunc(func(time.Time) bool { return true })
}

// Weekly matches days whose lower-cased weekday name is in days.
func Weekly(days ...string) Rule {
	set := make(map[string]struct{}, len(days))
	for _, d := range days {
		set[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	return RuleFunc(func(day time.Time) bool {
		_, ok := set[core.WeekdayName(day)]
		return ok
	})
}

// Monthly matches days of the month in days.
func Monthly(days ...int) Rule {
	return RuleFunc(func(day time.Time) bool {
		return slices.Contains(days, day.Day())
	})
}

// cronRule matches days on which the expression fires at least once.
type cronRule struct {
	schedule cron.Schedule
}

// Cron parses a standard five-field cron expression.
func Cron(expr string) (Rule, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("recurrence: invalid cron expression %q: %w", expr, err)
	}
	return &cronRule{schedule: schedule}, nil
}

func (r *cronRule) Matches(day time.Time) bool {
	start := core.DateOf(day)
	next := r.schedule.Next(start.Add(-time.Second))
	return !next.IsZero() && next.Before(start.AddDate(0, 0, 1))
}

// RuleFor builds the rule for a schedule's frequency. Unknown frequencies and
// FrequencyNone never match.
func RuleFor(s *core.Schedule) (Rule, error) {
	switch s.Frequency {
	case core.FrequencyDaily:
		return Daily(), nil
	case core.FrequencyWeekly:
		return Weekly(s.FrequencyConfig.Days...), nil
	case core.FrequencyMonthly:
		return Monthly(s.FrequencyConfig.DaysOfMonth...), nil
	case core.FrequencyCron:
		return Cron(s.FrequencyConfig.Expression)
	default:
		return Never, nil
	}
}
