package tasks

import (
	"fmt"

	"github.com/desertthunder/tripx/internal/models"
)

// ProgressUpdate represents a progress event during an import run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ParseDump Phase = iota
	WriteUser
	WriteDevices
	WriteTrips
	LoadAirports
	LoadAircraft
	Finished
)

func (p Phase) String() string {
	switch p {
	case ParseDump:
		return "parse_dump"
	case WriteUser:
		return "write_user"
	case WriteDevices:
		return "write_devices"
	case WriteTrips:
		return "write_trips"
	case LoadAirports:
		return "load_airports"
	case LoadAircraft:
		return "load_aircraft"
	case Finished:
		return "finished"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}

func parsedDumpUpdate(lines, groups, dropped int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseDump,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsed %d lines into %d trips (%d dropped)", lines, groups, dropped),
	}
}

func writeUserUpdate(u models.User) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteUser,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved user %s", u.ID),
		Data:    u,
	}
}

func writeDeviceUpdate(step, total int, d *models.Device) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteDevices,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Device: %s", step, total, d.Name),
	}
}

func writeTripUpdate(step, total int, g *models.TripGroup) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteTrips,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s → %s (%d flights)", step, total, g.Trip.Origin, g.Trip.Destination, len(g.Flights)),
	}
}

func referenceUpdate(phase Phase, step int, code string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Message: fmt.Sprintf("[%d] %s", step, code),
	}
}

func finishedUpdate(summary *ImportSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finished,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Imported %d trips and %d flights", summary.Trips, summary.Flights),
		Data:    summary,
	}
}
