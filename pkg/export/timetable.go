package export

import "sort"

// Weekday headers for the Monday-Friday grid.
var dayHeaders = [5]string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}

// Timetable is a day-by-period grid of cell labels ready for rendering.
type Timetable struct {
	Title string
	cells map[int]map[int]string // period -> day -> label
}

// NewTimetable creates an empty grid.
func NewTimetable(title string) *Timetable {
	return &Timetable{Title: title, cells: make(map[int]map[int]string)}
}

// Put sets the label of one cell. Days run 1-5, periods 1-8. A second Put
// on the same cell joins the labels (A/B week alternation).
func (t *Timetable) Put(day, period int, label string) {
	if day < 1 || day > 5 || period < 1 {
		return
	}
	if t.cells[period] == nil {
		t.cells[period] = make(map[int]string)
	}
	if existing := t.cells[period][day]; existing != "" {
		label = existing + " / " + label
	}
	t.cells[period][day] = label
}

// Cell reads one cell's label.
func (t *Timetable) Cell(day, period int) string {
	return t.cells[period][day]
}

// Periods lists the populated periods in ascending order.
func (t *Timetable) Periods() []int {
	periods := make([]int, 0, len(t.cells))
	for p := range t.cells {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return periods
}
