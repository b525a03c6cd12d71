package runner

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule is a parsed daemon schedule: either a cron expression or a fixed
// interval.
//
// Supported forms:
//   - Cron (crontab.guru-style): "*/30 * * * *", "@hourly", "@every 45m"
//   - Interval duration: "45m", "2h30m"
//   - Daily clock time: "07:30"
//
// Optional "cron:" / "interval:" prefixes force one interpretation.
type Schedule struct {
	Cron  string
	Every time.Duration
}

func (s Schedule) IsCron() bool { return s.Cron != "" }

func (s Schedule) String() string {
	if s.IsCron() {
		return s.Cron
	}
	return "every " + s.Every.String()
}

// ParseSchedule parses a schedule string. Cron expressions are validated
// eagerly so a typo fails at startup, not at first trigger.
func ParseSchedule(raw string) (Schedule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Schedule{}, fmt.Errorf("schedule required")
	}

	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "cron:"):
		return parseCron(strings.TrimSpace(s[len("cron:"):]))
	case strings.HasPrefix(low, "interval:"):
		return parseEvery(strings.TrimSpace(s[len("interval:"):]))
	}

	// Heuristics: whitespace or a leading '@' means cron.
	if strings.ContainsAny(s, " \t") || strings.HasPrefix(s, "@") {
		return parseCron(s)
	}
	// "HH:MM" means daily at that wall-clock time.
	if h, m, ok := parseClock(s); ok {
		return Schedule{Cron: fmt.Sprintf("%d %d * * *", m, h)}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return Schedule{}, fmt.Errorf("interval must be > 0")
		}
		return Schedule{Every: d}, nil
	}

	return Schedule{}, fmt.Errorf(
		"invalid schedule %q (use cron like '*/30 * * * *' or a duration like '45m')", raw)
}

func parseCron(expr string) (Schedule, error) {
	if expr == "" {
		return Schedule{}, fmt.Errorf("cron expression required")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(expr); err != nil {
		return Schedule{}, fmt.Errorf("invalid cron %q: %w", expr, err)
	}
	return Schedule{Cron: expr}, nil
}

func parseClock(s string) (hour, min int, ok bool) {
	head, tail, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	hour, err1 := strconv.Atoi(head)
	min, err2 := strconv.Atoi(tail)
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, false
	}
	return hour, min, true
}

func parseEvery(v string) (Schedule, error) {
	if v == "" {
		return Schedule{}, fmt.Errorf("interval required")
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid interval %q (use a Go duration like '45m'/'2h30m')", v)
	}
	if d <= 0 {
		return Schedule{}, fmt.Errorf("interval must be > 0")
	}
	return Schedule{Every: d}, nil
}
