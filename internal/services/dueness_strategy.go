// Package services provides report orchestration on top of the statement engine.
//
// This file implements the Strategy Pattern for report schedules. Each
// frequency (daily, weekly, monthly, yearly) has its own strategy that decides
// whether a schedule is due and which period a due run covers.

package services

import (
	"fmt"
	"time"

	"rendiconto/internal/core"
)

// DuenessChecker is the strategy interface for report schedules.
type DuenessChecker interface {
	// IsDue returns true if the schedule should run based on the last run
	// time and the current time.
	IsDue(lastRun, now time.Time, startDate core.Date) bool
	// Period returns the reporting period closed by a run on runDate.
	Period(runDate core.Date) core.Period
}

// DailyChecker implements DuenessChecker for daily schedules.
type DailyChecker struct{}

// IsDue returns true if the last run was before today.
func (DailyChecker) IsDue(lastRun, now time.Time, _ core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.Format("2006-01-02") != now.Format("2006-01-02")
}

// Period covers yesterday.
func (DailyChecker) Period(runDate core.Date) core.Period {
	y := runDate.AddDays(-1)
	return core.Period{Start: y, End: y}
}

// WeeklyChecker implements DuenessChecker for weekly schedules.
type WeeklyChecker struct{}

// IsDue returns true if 7 or more days have passed since the last run.
func (WeeklyChecker) IsDue(lastRun, now time.Time, _ core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	daysSince := now.Sub(lastRun).Hours() / 24
	return daysSince >= 7
}

// Period covers the seven days ending yesterday.
func (WeeklyChecker) Period(runDate core.Date) core.Period {
	return core.Period{Start: runDate.AddDays(-7), End: runDate.AddDays(-1)}
}

// MonthlyChecker implements DuenessChecker for monthly schedules.
type MonthlyChecker struct{}

// IsDue returns true if we're in a new month and have reached the target day.
func (MonthlyChecker) IsDue(lastRun, now time.Time, startDate core.Date) bool {
	if lastRun.IsZero() {
		return true
	}

	// Already ran this month?
	if lastRun.Year() == now.Year() && lastRun.Month() == now.Month() {
		return false
	}

	return now.Day() >= clampDay(now.Year(), now.Month(), startDate.Day())
}

// Period covers the previous calendar month.
func (MonthlyChecker) Period(runDate core.Date) core.Period {
	first := core.NewDate(runDate.Year(), runDate.Month(), 1)
	return core.Period{
		Start: core.Date{Time: first.AddDate(0, -1, 0)},
		End:   first.AddDays(-1),
	}
}

// YearlyChecker implements DuenessChecker for yearly schedules.
type YearlyChecker struct{}

// IsDue returns true if we're in a new year and have reached the target month and day.
func (YearlyChecker) IsDue(lastRun, now time.Time, startDate core.Date) bool {
	if lastRun.IsZero() {
		return true
	}

	if lastRun.Year() == now.Year() {
		return false
	}

	targetMonth := startDate.Month()
	if int(now.Month()) < targetMonth {
		return false
	}
	if int(now.Month()) == targetMonth {
		return now.Day() >= clampDay(now.Year(), now.Month(), startDate.Day())
	}
	return true
}

// Period covers the previous calendar year.
func (YearlyChecker) Period(runDate core.Date) core.Period {
	y := runDate.Year() - 1
	return core.Period{Start: core.NewDate(y, 1, 1), End: core.NewDate(y, 12, 31)}
}

// clampDay limits day to the length of the given month.
func clampDay(year int, month time.Month, day int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

// duenessStrategies maps frequencies to their checkers.
var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a frequency.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker registers a checker for an additional frequency.
func RegisterDuenessChecker(frequency core.Frequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
