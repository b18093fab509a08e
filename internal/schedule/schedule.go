// Package schedule holds the pure decomposition logic behind plan
// materialization: business-day partitioning, goal distribution and
// checklist synthesis. Nothing in here touches storage.
package schedule

import (
	"fmt"
	"time"

	"planboard/internal/model"
)

// truncateToDay drops the time-of-day component, keeping the location.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// BusinessDays returns every weekday from start to end inclusive, ascending.
// Time-of-day on the inputs is ignored. An inverted range yields an empty
// slice; the caller decides whether that is an error.
func BusinessDays(start, end time.Time) []time.Time {
	start = truncateToDay(start)
	end = truncateToDay(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

// DistributeGoal splits goal across units so the parts sum to goal exactly.
// Each part is goal/units or goal/units+1, with the remainder front-loaded:
// the earliest units absorb the extra. units must be >= 1.
func DistributeGoal(goal int64, units int) []int64 {
	base := goal / int64(units)
	remainder := goal % int64(units)

	amounts := make([]int64, units)
	for i := range amounts {
		if int64(i) < remainder {
			amounts[i] = base + 1
		} else {
			amounts[i] = base
		}
	}
	return amounts
}

// SplitThreeWays breaks an amount into three parts summing to it exactly.
// The last part absorbs whatever integer division leaves over.
func SplitThreeWays(amount int64) [3]int64 {
	part1 := amount / 3
	part2 := (amount - part1) / 2
	part3 := amount - part1 - part2
	return [3]int64{part1, part2, part3}
}

// SynthesizeChecklist produces the fixed three-item checklist for a task of
// the given amount.
func SynthesizeChecklist(amount int64) []model.ChecklistItem {
	parts := SplitThreeWays(amount)
	items := make([]model.ChecklistItem, 0, len(parts))
	for _, part := range parts {
		items = append(items, model.ChecklistItem{
			Text:      fmt.Sprintf("Complete amount %d", part),
			Completed: false,
		})
	}
	return items
}

// TaskTitle renders the generated title for a plan task on a given day.
func TaskTitle(day time.Time) string {
	return fmt.Sprintf("Task for %s", day.Format("January 2, 2006"))
}

// TaskDescription renders the generated description embedding day and amount.
func TaskDescription(day time.Time, amount int64) string {
	return fmt.Sprintf("Generated task for %s with amount %d", day.Format("January 2, 2006"), amount)
}
