package dump

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/models"
)

// Drops tallies discarded lines by reason.
type Drops map[DropReason]int

// Total returns the number of dropped lines.
func (d Drops) Total() int {
	n := 0
	for _, c := range d {
		n += c
	}
	return n
}

// Result is everything recovered from one pass over a dump.
type Result struct {
	User    models.User
	Devices []models.Device
	Groups  []models.TripGroup
	Lines   int // Non-blank lines read, markers included
	Drops   Drops
}

// Flights returns the number of flights across all groups.
func (r *Result) Flights() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Flights)
	}
	return n
}

// Parser holds the state of a single dump pass: the active section, the captured user, and the trip accumulator.
//
// A Parser is owned by one run and is not safe for concurrent use.
type Parser struct {
	section Section
	user    models.User
	devices []models.Device
	acc     Accumulator
	lines   int
	drops   Drops
}

// NewParser returns a Parser in the initial (no section) state.
func NewParser() *Parser {
	return &Parser{section: SectionNone, drops: make(Drops)}
}

// Section returns the active section.
func (p *Parser) Section() Section { return p.section }

// User returns the user fields captured so far.
func (p *Parser) User() models.User { return p.user }

// Feed processes one trimmed, non-blank line.
func (p *Parser) Feed(line string) Outcome {
	p.lines++

	if m, ok := Classify(line); ok {
		p.section = m.Section
		if m.Section == SectionUser {
			p.user.ID = m.UserID
		}
		return parsed(KindMarker)
	}

	var out Outcome
	switch p.section {
	case SectionDevices:
		var d models.Device
		if d, out = ParseDevice(line); !out.Dropped() {
			p.devices = append(p.devices, d)
		}
	case SectionSettings:
		out = ApplySetting(&p.user, line)
	case SectionTrips:
		var t models.Trip
		if t, out = ParseTripStart(line); !out.Dropped() {
			p.acc.Open(t)
		}
	case SectionFlights:
		var f models.Flight
		if f, out = ParseFlight(line); !out.Dropped() && !p.acc.Add(f) {
			out = dropped(KindFlight, DropNoOpenTrip)
		}
	case SectionNone:
		out = dropped(KindNone, DropNoSection)
	default:
		out = dropped(KindNone, DropIgnoredSection)
	}

	if out.Dropped() {
		p.drops[out.Reason]++
	}
	return out
}

// Result flushes the accumulator and returns the parsed entities. The parser must not be fed afterwards.
func (p *Parser) Result() *Result {
	return &Result{
		User:    p.user,
		Devices: p.devices,
		Groups:  p.acc.Finish(),
		Lines:   p.lines,
		Drops:   p.drops,
	}
}

// Parse streams r through a fresh [Parser].
//
// Dropped lines are logged at debug level when logger is non-nil. Lines
// longer than the maximum line size are counted as [DropTooLong]. The only
// error is a read failure from r, wrapping [shared.ErrReadSource].
func Parse(r io.Reader, logger *log.Logger) (*Result, error) {
	src := NewLineSource(r)
	p := NewParser()

	for src.Next() {
		out := p.Feed(src.Line())
		if out.Dropped() && logger != nil {
			logger.Debug("dropped line", "line", src.LineNo(), "section", p.Section(), "kind", out.Kind, "reason", out.Reason)
		}
	}

	if err := src.Err(); err != nil {
		return nil, err
	}

	if n := src.TooLong(); n > 0 {
		p.drops[DropTooLong] += n
		if logger != nil {
			logger.Warn("skipped over-long lines", "count", n, "max_bytes", maxLineSize)
		}
	}

	return p.Result(), nil
}
