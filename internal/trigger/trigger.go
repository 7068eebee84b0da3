// Package trigger parses five-field cron expressions and computes fire times
// in a schedule's timezone.
package trigger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type field struct {
	name     string
	min, max int
}

var fields = [5]field{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 6},
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseError reports a malformed expression. Field is empty when the
// expression as a whole is rejected.
type ParseError struct {
	Expression string
	Field      string
	Reason     string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid cron expression %q: %s", e.Expression, e.Reason)
	}
	return fmt.Sprintf("invalid cron expression %q: %s: %s", e.Expression, e.Field, e.Reason)
}

// Trigger is a parsed cron expression bound to a location. It implements
// cron.Schedule.
type Trigger struct {
	expression string
	schedule   *cron.SpecSchedule
}

// Parse validates expression against the five-field grammar
// (minute hour day-of-month month day-of-week) and binds it to loc.
// Each field is "*", "*/n", or a comma list of integers and ranges a-b.
// Day-of-week 0 is Sunday. A nil loc means UTC.
func Parse(expression string, loc *time.Location) (*Trigger, error) {
	parts := strings.Fields(expression)
	if len(parts) != len(fields) {
		return nil, &ParseError{
			Expression: expression,
			Reason:     fmt.Sprintf("expected %d fields, got %d", len(fields), len(parts)),
		}
	}

	for i, part := range parts {
		if err := checkField(part, fields[i]); err != nil {
			return nil, &ParseError{Expression: expression, Field: fields[i].name, Reason: err.Error()}
		}
	}

	normalized := strings.Join(parts, " ")
	sched, err := parser.Parse(normalized)
	if err != nil {
		return nil, &ParseError{Expression: expression, Reason: err.Error()}
	}
	spec, ok := sched.(*cron.SpecSchedule)
	if !ok {
		return nil, &ParseError{Expression: expression, Reason: "unsupported schedule"}
	}

	if loc == nil {
		loc = time.UTC
	}
	spec.Location = loc

	return &Trigger{expression: normalized, schedule: spec}, nil
}

// Validate reports whether expression parses.
func Validate(expression string) error {
	_, err := Parse(expression, time.UTC)
	return err
}

func checkField(value string, f field) error {
	if value == "*" {
		return nil
	}
	if step, ok := strings.CutPrefix(value, "*/"); ok {
		n, err := number(step)
		if err != nil {
			return fmt.Errorf("invalid step %q", step)
		}
		if n < 1 {
			return fmt.Errorf("step must be at least 1, got %d", n)
		}
		return nil
	}

	for _, item := range strings.Split(value, ",") {
		lo, hi, isRange := strings.Cut(item, "-")
		a, err := number(lo)
		if err != nil {
			return fmt.Errorf("invalid value %q", item)
		}
		if err := inBounds(a, f); err != nil {
			return err
		}
		if !isRange {
			continue
		}
		b, err := number(hi)
		if err != nil {
			return fmt.Errorf("invalid range %q", item)
		}
		if err := inBounds(b, f); err != nil {
			return err
		}
		if a > b {
			return fmt.Errorf("range start %d is after end %d", a, b)
		}
	}
	return nil
}

func number(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

func inBounds(n int, f field) error {
	if n < f.min || n > f.max {
		return fmt.Errorf("value %d out of range [%d, %d]", n, f.min, f.max)
	}
	return nil
}

// Expression returns the whitespace-normalized expression.
func (t *Trigger) Expression() string {
	return t.expression
}

// Location returns the timezone fire times are computed in.
func (t *Trigger) Location() *time.Location {
	return t.schedule.Location
}

// Signature identifies the trigger for change detection. Two triggers with
// the same signature fire at the same instants.
func (t *Trigger) Signature() string {
	return t.expression + "@" + t.schedule.Location.String()
}

// NextFireAfter returns the earliest fire time strictly after t. The result
// is in t's location. ok is false when no time matches within five years,
// e.g. "0 0 31 2 *". A wall-clock time that does not exist on a
// spring-forward day does not fire that day.
func (t *Trigger) NextFireAfter(after time.Time) (time.Time, bool) {
	next := t.schedule.Next(after)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// Next implements cron.Schedule.
func (t *Trigger) Next(after time.Time) time.Time {
	return t.schedule.Next(after)
}

// NextN returns up to n consecutive fire times after t.
func (t *Trigger) NextN(after time.Time, n int) []time.Time {
	var times []time.Time
	for len(times) < n {
		next, ok := t.NextFireAfter(after)
		if !ok {
			break
		}
		times = append(times, next)
		after = next
	}
	return times
}

// LoadLocation resolves an IANA timezone name. An empty name yields fallback.
func LoadLocation(name string, fallback *time.Location) (*time.Location, error) {
	if name == "" {
		if fallback == nil {
			return time.UTC, nil
		}
		return fallback, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
