package domain

import "time"

// Class is a recurring weekly session.
type Class struct {
	ID             string
	Name           string
	Code           string
	ExerciseTypeID string
	Venue          string
	Address        string
	ZipCode        *string
	DayOfWeek      int // ISO weekday, 1 = Monday
	StartTime      string
	EndTime        string
	InstructorID   string
	FeeCriteria    string
	FeeAmount      int64
	Term           Term
	Capacity       int
	IsSubsidised   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NextOccurrence returns the first date on or after from that falls on the
// class's weekday, truncated to midnight UTC.
func (c Class) NextOccurrence(from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Weekday(c.DayOfWeek % 7)
	offset := (int(target) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset)
}
