package dump

import "strings"

// Section is the dump block currently being read.
type Section int

const (
	SectionNone Section = iota
	SectionUser
	SectionDevices
	SectionAccounts
	SectionSettings
	SectionTrips
	SectionFlights
	SectionIgnore
)

func (s Section) String() string {
	switch s {
	case SectionNone:
		return "none"
	case SectionUser:
		return "user"
	case SectionDevices:
		return "devices"
	case SectionAccounts:
		return "accounts"
	case SectionSettings:
		return "settings"
	case SectionTrips:
		return "trips"
	case SectionFlights:
		return "flights"
	case SectionIgnore:
		return "ignore"
	default:
		return ""
	}
}

const userMarkerPrefix = "user:"

// markers maps literal marker lines to the section they open. "user:<id>" is handled separately.
var markers = map[string]Section{
	"devices:":     SectionDevices,
	"accounts:":    SectionAccounts,
	"settings:":    SectionSettings,
	"trips:":       SectionTrips,
	"flights:":     SectionFlights,
	"hotels:":      SectionIgnore,
	"rental cars:": SectionIgnore,
	"expenses:":    SectionIgnore,
}

// Marker is a recognised section marker line.
type Marker struct {
	Section Section
	UserID  string // set only for the "user:" marker
}

// Classify reports whether line is a marker and, if so, which section it opens.
//
// For "user:<id>" the id is the token between the first and second colon, trimmed.
func Classify(line string) (Marker, bool) {
	if rest, ok := strings.CutPrefix(line, userMarkerPrefix); ok {
		id, _, _ := strings.Cut(rest, ":")
		return Marker{Section: SectionUser, UserID: strings.TrimSpace(id)}, true
	}

	if s, ok := markers[line]; ok {
		return Marker{Section: s}, true
	}

	return Marker{}, false
}
