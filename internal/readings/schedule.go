package readings

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// WeeksInPlan is the length of the plan in weeks.
	WeeksInPlan = 52
	// ReadingsPerWeek is the number of weekday readings in each week.
	ReadingsPerWeek = 5
)

// ScheduledReading is a reading pinned to a due date and its 1-based
// position in the plan.
type ScheduledReading struct {
	Reading ScriptureReading
	DueDate time.Time
	Week    int
	Day     int
}

// Key identifies the entry in file names and metadata, e.g. "W03_D02".
func (s ScheduledReading) Key() string {
	return fmt.Sprintf("W%02d_D%02d", s.Week, s.Day)
}

func (s ScheduledReading) String() string {
	return fmt.Sprintf("ScheduledReading(reading=%s, due=%s, week=%d, day=%d)",
		s.Reading.Raw(), s.DueDate.Format("2006-01-02"), s.Week, s.Day)
}

// Schedule assigns dates and week/day numbers to raw readings. The first
// reading is due on firstDate (the plan expects a Monday; this is not
// checked) and each week advances by seven days. The number of readings must
// equal totalWeeks*perWeek exactly.
func Schedule(raw []string, firstDate time.Time, perWeek, totalWeeks int) ([]ScheduledReading, error) {
	expected := perWeek * totalWeeks
	if len(raw) != expected {
		return nil, &CountError{Expected: expected, Got: len(raw)}
	}

	scheduled := make([]ScheduledReading, 0, expected)
	for week := 0; week < totalWeeks; week++ {
		for day := 0; day < perWeek; day++ {
			index := week*perWeek + day
			scheduled = append(scheduled, ScheduledReading{
				Reading: NewScriptureReading(raw[index]),
				DueDate: firstDate.AddDate(0, 0, week*7+day),
				Week:    week + 1,
				Day:     day + 1,
			})
		}
	}
	return scheduled, nil
}

// LoadFile reads one raw reading per line, trimming each line. A trailing
// newline at the end of the file does not produce an extra entry.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// LoadPlan reads the reading source and schedules the full plan from
// firstMonday.
func LoadPlan(path string, firstMonday time.Time) ([]ScheduledReading, error) {
	lines, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Schedule(lines, firstMonday, ReadingsPerWeek, WeeksInPlan)
}
