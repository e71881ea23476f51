package calendar

import "time"

// WeekStart is the first column of every grid.
const WeekStart = time.Monday

// Cell is one slot of a calendar grid. Blank cells pad the first week of a
// month and carry no date.
type Cell struct {
	Blank   bool
	ISO     string
	Day     int
	Weekday time.Weekday
}

// Label is the short weekday name of the cell ("Mon").
func (c Cell) Label() string {
	if c.Blank {
		return ""
	}
	return c.Weekday.String()[:3]
}

// DaysIn returns the number of days in month of year.
func DaysIn(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// Offset is the column of weekday in a grid starting on start.
func Offset(weekday, start time.Weekday) int {
	return (int(weekday) - int(start) + 7) % 7
}

// WeekdayLabels returns the seven column headings for a grid starting on start.
func WeekdayLabels(start time.Weekday) []string {
	labels := make([]string, 7)
	for i := range labels {
		labels[i] = time.Weekday((int(start) + i) % 7).String()[:2]
	}
	return labels
}

// MonthGrid lays out a month: leading blanks up to the column of day one,
// then one cell per day.
func MonthGrid(year int, month time.Month, start time.Weekday) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := Offset(first.Weekday(), start)
	days := DaysIn(year, month)

	cells := make([]Cell, 0, lead+days)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for day := 1; day <= days; day++ {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		cells = append(cells, Cell{ISO: FormatISO(d), Day: day, Weekday: d.Weekday()})
	}
	return cells
}

// WeekGrid returns the seven days of the week containing anchor.
func WeekGrid(anchor time.Time, start time.Weekday) []Cell {
	first := StartOfWeek(anchor, start)
	cells := make([]Cell, 0, 7)
	for i := 0; i < 7; i++ {
		d := first.AddDate(0, 0, i)
		cells = append(cells, Cell{ISO: FormatISO(d), Day: d.Day(), Weekday: d.Weekday()})
	}
	return cells
}

// StartOfWeek returns the date on or before t that falls on start.
func StartOfWeek(t time.Time, start time.Weekday) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -Offset(day.Weekday(), start))
}

// Rows splits a flat grid into weeks of seven, padding the last one.
func Rows(cells []Cell) [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(cells); i += 7 {
		end := i + 7
		row := make([]Cell, 0, 7)
		if end > len(cells) {
			row = append(row, cells[i:]...)
			for len(row) < 7 {
				row = append(row, Cell{Blank: true})
			}
		} else {
			row = append(row, cells[i:end]...)
		}
		rows = append(rows, row)
	}
	return rows
}
