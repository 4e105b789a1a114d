package dump

import (
	"strings"

	"github.com/desertthunder/tripx/internal/models"
)

// FieldDelimiter separates positional fields in a record line.
const FieldDelimiter = ";"

// Minimum field counts per record kind.
const (
	minDeviceFields = 7
	minTripFields   = 7
	minFlightFields = 14
	maxFlightFields = 17
)

// TripStartPrefix marks a trip-start line inside a trips section; the prefixed token is the ownership category.
const TripStartPrefix = "Ownership."

// RecordKind identifies what a data line decoded into.
type RecordKind int

const (
	KindNone RecordKind = iota
	KindMarker
	KindDevice
	KindSetting
	KindTripStart
	KindFlight
)

func (k RecordKind) String() string {
	switch k {
	case KindMarker:
		return "marker"
	case KindDevice:
		return "device"
	case KindSetting:
		return "setting"
	case KindTripStart:
		return "trip"
	case KindFlight:
		return "flight"
	default:
		return "none"
	}
}

// DropReason explains why a line produced no record.
type DropReason int

const (
	NotDropped DropReason = iota
	DropNoSection
	DropIgnoredSection
	DropTooFewFields
	DropNotTripStart
	DropNoOpenTrip
	DropUnknownSetting
	DropTooLong
)

func (r DropReason) String() string {
	switch r {
	case NotDropped:
		return ""
	case DropNoSection:
		return "no active section"
	case DropIgnoredSection:
		return "ignored section"
	case DropTooFewFields:
		return "too few fields"
	case DropNotTripStart:
		return "not a trip start"
	case DropNoOpenTrip:
		return "flight without open trip"
	case DropUnknownSetting:
		return "unknown setting key"
	case DropTooLong:
		return "line too long"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of feeding one line: a parsed record of Kind, or a drop with Reason.
type Outcome struct {
	Kind   RecordKind
	Reason DropReason
}

// Dropped reports whether the line was discarded.
func (o Outcome) Dropped() bool { return o.Reason != NotDropped }

func parsed(k RecordKind) Outcome                { return Outcome{Kind: k} }
func dropped(k RecordKind, r DropReason) Outcome { return Outcome{Kind: k, Reason: r} }

func splitFields(line string) []string {
	return strings.Split(line, FieldDelimiter)
}

// ParseDevice decodes "name;app;os;version;country;first_seen;last_seen".
func ParseDevice(line string) (models.Device, Outcome) {
	f := splitFields(line)
	if len(f) < minDeviceFields {
		return models.Device{}, dropped(KindDevice, DropTooFewFields)
	}

	return models.Device{
		Name:      f[0],
		App:       f[1],
		OS:        f[2],
		Version:   f[3],
		Country:   models.Nullable(f[4]),
		FirstSeen: f[5],
		LastSeen:  f[6],
	}, parsed(KindDevice)
}

// settingKeys maps settings prefixes to the user field they set.
var settingKeys = []struct {
	prefix string
	set    func(u *models.User, v string)
}{
	{"country:", func(u *models.User, v string) { u.Country = v }},
	{"currency:", func(u *models.User, v string) { u.Currency = v }},
	{"full name:", func(u *models.User, v string) { u.FullName = v }},
	{"display email:", func(u *models.User, v string) { u.Email = v }},
}

// ApplySetting sets the user attribute named by a "key: value" settings line.
func ApplySetting(u *models.User, line string) Outcome {
	for _, k := range settingKeys {
		if v, ok := strings.CutPrefix(line, k.prefix); ok {
			k.set(u, strings.TrimSpace(v))
			return parsed(KindSetting)
		}
	}
	return dropped(KindSetting, DropUnknownSetting)
}

// ParseTripStart decodes "Ownership.X;departure;arrival;origin;destination;created_at;updated_at".
func ParseTripStart(line string) (models.Trip, Outcome) {
	if !strings.HasPrefix(line, TripStartPrefix) {
		return models.Trip{}, dropped(KindTripStart, DropNotTripStart)
	}

	f := splitFields(line)
	if len(f) < minTripFields {
		return models.Trip{}, dropped(KindTripStart, DropTooFewFields)
	}

	return models.Trip{
		Ownership:     f[0],
		DepartureTime: f[1],
		ArrivalTime:   f[2],
		Origin:        f[3],
		Destination:   f[4],
		CreatedAt:     f[5],
		UpdatedAt:     f[6],
	}, parsed(KindTripStart)
}

// ParseFlight decodes a flight line of 14 to 17 fields:
//
//	seat;_;booking_ref;_;_;_;source;airline;flight_no;aircraft;origin;dest;departure;arrival[;local_dep;local_arr;created_at]
//
// Absent trailing fields are nil. Fields past the 17th are ignored.
func ParseFlight(line string) (models.Flight, Outcome) {
	f := splitFields(line)
	if len(f) < minFlightFields {
		return models.Flight{}, dropped(KindFlight, DropTooFewFields)
	}

	return models.Flight{
		Seat:               models.Nullable(f[0]),
		BookingReference:   models.Nullable(f[2]),
		Source:             f[6],
		AirlineCode:        f[7],
		FlightNumber:       f[8],
		Aircraft:           models.Nullable(f[9]),
		Origin:             f[10],
		Destination:        f[11],
		DepartureTime:      f[12],
		ArrivalTime:        f[13],
		LocalDepartureTime: optionalField(f, 14),
		LocalArrivalTime:   optionalField(f, 15),
		CreatedAt:          optionalField(f, 16),
	}, parsed(KindFlight)
}

func optionalField(f []string, i int) *string {
	if i >= len(f) || i >= maxFlightFields {
		return nil
	}
	return models.Nullable(f[i])
}
