package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBusinessDays_FullWeek(t *testing.T) {
	// Monday 2026-03-02 through Sunday 2026-03-08.
	days := BusinessDays(date(2026, time.March, 2), date(2026, time.March, 8))

	if len(days) != 5 {
		t.Fatalf("day count mismatch: got %d, want 5", len(days))
	}

	for i, d := range days {
		want := date(2026, time.March, 2+i)
		if !d.Equal(want) {
			t.Errorf("day %d mismatch: got %v, want %v", i, d, want)
		}
	}
}

func TestBusinessDays_WeekendOnly(t *testing.T) {
	// Saturday and Sunday.
	days := BusinessDays(date(2026, time.March, 7), date(2026, time.March, 8))

	if len(days) != 0 {
		t.Fatalf("expected no business days, got %d", len(days))
	}
}

func TestBusinessDays_SingleWeekday(t *testing.T) {
	days := BusinessDays(date(2026, time.March, 4), date(2026, time.March, 4))

	if len(days) != 1 {
		t.Fatalf("day count mismatch: got %d, want 1", len(days))
	}
	if days[0].Weekday() != time.Wednesday {
		t.Errorf("weekday mismatch: got %v, want Wednesday", days[0].Weekday())
	}
}

func TestBusinessDays_InvertedRange(t *testing.T) {
	days := BusinessDays(date(2026, time.March, 8), date(2026, time.March, 2))

	if len(days) != 0 {
		t.Fatalf("expected empty sequence for inverted range, got %d days", len(days))
	}
}

func TestBusinessDays_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2026, time.March, 2, 23, 59, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 3, 0, 1, 0, 0, time.UTC)

	days := BusinessDays(start, end)
	if len(days) != 2 {
		t.Fatalf("day count mismatch: got %d, want 2", len(days))
	}
}

func TestBusinessDays_OnlyWeekdaysAscending(t *testing.T) {
	// A month-long range crossing several weekends.
	days := BusinessDays(date(2026, time.March, 1), date(2026, time.March, 31))

	if len(days) != 22 {
		t.Fatalf("day count mismatch: got %d, want 22", len(days))
	}

	for i, d := range days {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			t.Errorf("day %d is a weekend: %v", i, d)
		}
		if i > 0 && !days[i-1].Before(d) {
			t.Errorf("days not strictly ascending at index %d: %v then %v", i, days[i-1], d)
		}
	}
}

func TestDistributeGoal_EvenSplit(t *testing.T) {
	amounts := DistributeGoal(10, 5)

	if len(amounts) != 5 {
		t.Fatalf("length mismatch: got %d, want 5", len(amounts))
	}
	for i, a := range amounts {
		if a != 2 {
			t.Errorf("amount %d mismatch: got %d, want 2", i, a)
		}
	}
}

func TestDistributeGoal_RemainderFrontLoaded(t *testing.T) {
	amounts := DistributeGoal(7, 5)

	want := []int64{2, 2, 1, 1, 1}
	if len(amounts) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(amounts), len(want))
	}
	for i := range want {
		if amounts[i] != want[i] {
			t.Errorf("amount %d mismatch: got %d, want %d", i, amounts[i], want[i])
		}
	}
}

func TestDistributeGoal_SumsExactly(t *testing.T) {
	for goal := int64(0); goal <= 100; goal++ {
		for units := 1; units <= 10; units++ {
			amounts := DistributeGoal(goal, units)

			if len(amounts) != units {
				t.Fatalf("goal=%d units=%d: length mismatch: got %d", goal, units, len(amounts))
			}

			base := goal / int64(units)
			remainder := goal % int64(units)
			var sum int64
			var larger int64
			for i, a := range amounts {
				sum += a
				switch a {
				case base + 1:
					larger++
					if int64(i) >= remainder {
						t.Fatalf("goal=%d units=%d: larger amount at index %d, not front-loaded", goal, units, i)
					}
				case base:
				default:
					t.Fatalf("goal=%d units=%d: amount %d is neither %d nor %d", goal, units, a, base, base+1)
				}
			}
			if sum != goal {
				t.Fatalf("goal=%d units=%d: sum mismatch: got %d", goal, units, sum)
			}
			if larger != remainder {
				t.Fatalf("goal=%d units=%d: larger count mismatch: got %d, want %d", goal, units, larger, remainder)
			}
		}
	}
}

func TestSplitThreeWays(t *testing.T) {
	tests := []struct {
		amount int64
		want   [3]int64
	}{
		{10, [3]int64{3, 3, 4}},
		{0, [3]int64{0, 0, 0}},
		{1, [3]int64{0, 0, 1}},
		{2, [3]int64{0, 1, 1}},
		{3, [3]int64{1, 1, 1}},
		{9, [3]int64{3, 3, 3}},
		{100, [3]int64{33, 33, 34}},
	}

	for _, tt := range tests {
		got := SplitThreeWays(tt.amount)
		if got != tt.want {
			t.Errorf("SplitThreeWays(%d) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestSplitThreeWays_SumsExactly(t *testing.T) {
	for amount := int64(0); amount <= 1000; amount++ {
		parts := SplitThreeWays(amount)
		sum := parts[0] + parts[1] + parts[2]
		if sum != amount {
			t.Fatalf("amount=%d: parts %v sum to %d", amount, parts, sum)
		}
		for i, p := range parts {
			if p < 0 {
				t.Fatalf("amount=%d: part %d is negative: %d", amount, i, p)
			}
		}
	}
}

func TestSynthesizeChecklist(t *testing.T) {
	items := SynthesizeChecklist(10)

	if len(items) != 3 {
		t.Fatalf("item count mismatch: got %d, want 3", len(items))
	}

	wantTexts := []string{"Complete amount 3", "Complete amount 3", "Complete amount 4"}
	for i, item := range items {
		if item.Text != wantTexts[i] {
			t.Errorf("item %d text mismatch: got %q, want %q", i, item.Text, wantTexts[i])
		}
		if item.Completed {
			t.Errorf("item %d should start uncompleted", i)
		}
	}
}

func TestTaskTitleAndDescription(t *testing.T) {
	day := date(2026, time.March, 2)

	title := TaskTitle(day)
	if title != "Task for March 2, 2026" {
		t.Errorf("title mismatch: got %q", title)
	}

	desc := TaskDescription(day, 7)
	if desc != "Generated task for March 2, 2026 with amount 7" {
		t.Errorf("description mismatch: got %q", desc)
	}
}
