package gedcom

import (
	"strconv"
	"strings"
)

// NoYear is returned by year accessors when no year can be extracted.
const NoYear = -1

// Event is the narrow view of an event sub-record the model relies on.
type Event interface {
	Tag() string
	// Date returns the free-form date string, if the event has one.
	Date() (string, bool)
}

// EventSource produces the events of one tag for a record.
type EventSource interface {
	Events(owner *Line, tag string) []Event
}

// LineEvent is an Event read directly from an event line's DATE and PLAC children.
type LineEvent struct {
	line *Line
}

// Tag returns the event tag (BIRT, DEAT, MARR, ...).
func (e *LineEvent) Tag() string { return e.line.tag }

// Date returns the value of the first DATE child.
func (e *LineEvent) Date() (string, bool) {
	d, ok := e.line.FirstChildWithTag("DATE")
	if !ok || d.value == "" {
		return "", false
	}
	return d.value, true
}

// Place returns the value of the first PLAC child.
func (e *LineEvent) Place() (string, bool) {
	p, ok := e.line.FirstChildWithTag("PLAC")
	if !ok || p.value == "" {
		return "", false
	}
	return p.value, true
}

// Line returns the underlying event line.
func (e *LineEvent) Line() *Line { return e.line }

// LineEvents is the default EventSource: one LineEvent per matching child line.
type LineEvents struct{}

// Events implements EventSource.
func (LineEvents) Events(owner *Line, tag string) []Event {
	var out []Event
	for _, l := range owner.ChildrenWithTag(tag) {
		out = append(out, &LineEvent{line: l})
	}
	return out
}

// Year extracts the trailing whitespace-separated token of the event date
// as a year. "ABT 1850" and "12 MAR 1850" both give 1850.
func Year(e Event) (int, bool) {
	if e == nil {
		return NoYear, false
	}
	date, ok := e.Date()
	if !ok {
		return NoYear, false
	}
	fields := strings.Fields(date)
	if len(fields) == 0 {
		return NoYear, false
	}
	y, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return NoYear, false
	}
	return y, true
}

// Event tags resolved per record kind.
var (
	individualOtherEventTags = []string{
		"ADOP", "BAPM", "BARM", "BASM", "BLES", "BURI",
		"CENS", "CHR", "CHRA", "CONF", "CREM", "EMIG",
		"FCOM", "GRAD", "IMMI", "NATU", "ORDN", "RETI",
		"PROB", "WILL", "EVEN",
	}
	familyOtherEventTags = []string{
		"ANUL", "CENS", "DIV", "DIVF", "ENGA", "MARB",
		"MARC", "MARL", "MARS", "EVEN",
	}
)
