package models

import (
	"fmt"
	"time"
)

// NullToken is the literal the dump uses for an absent value.
const NullToken = "None"

// User is the account owning every device and trip in a dump.
type User struct {
	ID       string
	Email    string
	FullName string
	Country  string
	Currency string
}

// Validate reports whether the user can be written; the ID is the upsert key.
func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}

// Device is one entry of the device history section.
type Device struct {
	ID        int64
	Name      string
	App       string
	OS        string
	Version   string
	Country   *string
	FirstSeen string
	LastSeen  string
	UserID    string
}

// Trip is the header record of one trip block.
type Trip struct {
	ID            int64
	Ownership     string
	DepartureTime string
	ArrivalTime   string
	Origin        string
	Destination   string
	CreatedAt     string
	UpdatedAt     string
	UserID        string
}

// Flight is a single leg listed under a trip.
type Flight struct {
	ID                 int64
	Seat               *string
	BookingReference   *string
	Source             string
	AirlineCode        string
	FlightNumber       string
	Aircraft           *string
	Origin             string
	Destination        string
	DepartureTime      string
	ArrivalTime        string
	LocalDepartureTime *string
	LocalArrivalTime   *string
	CreatedAt          *string
	TripID             int64
}

// TripGroup is a trip together with the flights that followed it in the dump.
type TripGroup struct {
	Trip    Trip
	Flights []Flight
}

// Airport is a row of the airport directory feed.
type Airport struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
	Continent string
	Country   string
	IATACode  string
}

// AircraftType is a row of the aircraft type code feed.
type AircraftType struct {
	IATACode     string
	Manufacturer string
	Model        string
	WakeCategory string
}

// ImportRun kinds
const (
	RunKindDump     = "dump"
	RunKindAirports = "airports"
	RunKindAircraft = "aircraft"
)

// ImportRun statuses
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ImportRun is a ledger entry describing one import invocation and its outcome.
type ImportRun struct {
	ID           string     `json:"id"`
	Kind         string     `json:"kind"`
	Source       string     `json:"source"`
	Status       string     `json:"status"`
	Users        int        `json:"users"`
	Devices      int        `json:"devices"`
	Trips        int        `json:"trips"`
	Flights      int        `json:"flights"`
	Airports     int        `json:"airports"`
	Aircraft     int        `json:"aircraft"`
	Dropped      int        `json:"dropped"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewImportRun creates a running [ImportRun] for the given kind and source path.
func NewImportRun(kind, source string) *ImportRun {
	return &ImportRun{
		Kind:      kind,
		Source:    source,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Complete marks the run as finished successfully.
func (r *ImportRun) Complete() {
	now := time.Now().UTC()
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
}

// Fail marks the run as failed with the first fatal cause.
func (r *ImportRun) Fail(err error) {
	now := time.Now().UTC()
	r.Status = RunStatusFailed
	r.CompletedAt = &now
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// Validate checks that the run has the fields required by the ledger.
func (r *ImportRun) Validate() error {
	switch r.Kind {
	case RunKindDump, RunKindAirports, RunKindAircraft:
	default:
		return fmt.Errorf("invalid run kind: %q", r.Kind)
	}

	switch r.Status {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
	default:
		return fmt.Errorf("invalid run status: %q", r.Status)
	}

	return nil
}

// Nullable maps the dump's null token to nil.
func Nullable(s string) *string {
	if s == NullToken {
		return nil
	}
	return &s
}
