package dump

import "github.com/desertthunder/tripx/internal/models"

// Accumulator groups each trip with the flights that follow it.
//
// At most one group is open at a time. Opening a trip flushes the open group;
// [Accumulator.Finish] flushes the last one.
type Accumulator struct {
	open   *models.TripGroup
	groups []models.TripGroup
}

// Open flushes the current group, if any, and starts a new one for trip.
func (a *Accumulator) Open(trip models.Trip) {
	a.flush()
	a.open = &models.TripGroup{Trip: trip}
}

// Add appends flight to the open group. It returns false, leaving state unchanged, when no group is open.
func (a *Accumulator) Add(flight models.Flight) bool {
	if a.open == nil {
		return false
	}
	a.open.Flights = append(a.open.Flights, flight)
	return true
}

// HasOpen reports whether a trip group is currently collecting flights.
func (a *Accumulator) HasOpen() bool { return a.open != nil }

// Pending returns the number of completed groups not yet returned by Finish.
func (a *Accumulator) Pending() int { return len(a.groups) }

// Finish flushes the open group and returns every group in source order.
func (a *Accumulator) Finish() []models.TripGroup {
	a.flush()
	groups := a.groups
	a.groups = nil
	return groups
}

func (a *Accumulator) flush() {
	if a.open == nil {
		return
	}
	a.groups = append(a.groups, *a.open)
	a.open = nil
}
