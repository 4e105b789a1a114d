package tasks

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripx/internal/models"
	"github.com/desertthunder/tripx/internal/shared"
)

// Airport directory columns
const (
	colAirportID   = "id"
	colAirportType = "type"
	colAirportName = "name"
	colLatitude    = "latitude_deg"
	colLongitude   = "longitude_deg"
	colContinent   = "continent"
	colCountry     = "iso_country"
	colIATA        = "iata_code"
)

// Aircraft type feed columns
const (
	colAircraftIATA = "IATA"
	colManufacturer = "Manufacturer"
	colModel        = "Type/Model"
	colWake         = "Wake"
)

// excludedAirportTypes are facility types that never carry scheduled flights.
var excludedAirportTypes = map[string]bool{
	"heliport":      true,
	"seaplane_base": true,
}

// AirportWriter persists airport rows.
type AirportWriter interface {
	Upsert(ctx context.Context, a models.Airport) error
}

// AircraftTypeWriter persists aircraft type rows.
type AircraftTypeWriter interface {
	Upsert(ctx context.Context, a models.AircraftType) error
}

// ReferenceSummary reports the outcome of a reference feed load.
type ReferenceSummary struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ReferenceImporter bulk loads the airport directory and the aircraft type feed.
type ReferenceImporter struct {
	logger *log.Logger
}

// NewReferenceImporter creates a ReferenceImporter logging through logger.
func NewReferenceImporter(logger *log.Logger) *ReferenceImporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ReferenceImporter{logger: logger}
}

// ImportAirports loads a comma-separated airport directory with a header row.
//
// Heliports, seaplane bases, rows missing an id or IATA code, and rows whose coordinates do not parse
// are skipped. Rows are upserted by id, so loading the same feed twice leaves one row per airport.
func (ri *ReferenceImporter) ImportAirports(ctx context.Context, w AirportWriter, r io.Reader, progress chan<- ProgressUpdate) (*ReferenceSummary, error) {
	reader := newFeedReader(r, ',')
	required := []string{colAirportID, colAirportType, colAirportName, colLatitude, colLongitude, colContinent, colCountry, colIATA}
	cols, err := readHeader(reader, required...)
	if err != nil {
		return nil, err
	}

	summary := &ReferenceSummary{}
	short, err := eachRecord(reader, cols.width(required...), func(line int, rec []string) error {
		if excludedAirportTypes[cols.get(rec, colAirportType)] {
			summary.Skipped++
			return nil
		}

		id, code := cols.get(rec, colAirportID), cols.get(rec, colIATA)
		if id == "" || code == "" {
			summary.Skipped++
			return nil
		}

		lat, latErr := strconv.ParseFloat(cols.get(rec, colLatitude), 64)
		lon, lonErr := strconv.ParseFloat(cols.get(rec, colLongitude), 64)
		if latErr != nil || lonErr != nil {
			ri.logger.Debug("skipping airport with bad coordinates", "line", line, "iata", code)
			summary.Skipped++
			return nil
		}

		airport := models.Airport{
			ID:        id,
			Name:      cols.get(rec, colAirportName),
			Latitude:  lat,
			Longitude: lon,
			Continent: cols.get(rec, colContinent),
			Country:   cols.get(rec, colCountry),
			IATACode:  code,
		}
		if err := w.Upsert(ctx, airport); err != nil {
			return fmt.Errorf("%w: airport at line %d: %w", shared.ErrStoreWrite, line, err)
		}

		summary.Imported++
		sendProgress(progress, referenceUpdate(LoadAirports, summary.Imported, code))
		return nil
	})
	summary.Skipped += short
	if err != nil {
		return summary, err
	}

	ri.logger.Info("imported airports", "imported", summary.Imported, "skipped", summary.Skipped)
	return summary, nil
}

// ImportAircraftTypes loads a tab-separated aircraft type feed with a header row.
//
// Rows are upserted by IATA code. Rows with an empty code are skipped.
func (ri *ReferenceImporter) ImportAircraftTypes(ctx context.Context, w AircraftTypeWriter, r io.Reader, progress chan<- ProgressUpdate) (*ReferenceSummary, error) {
	reader := newFeedReader(r, '\t')
	required := []string{colAircraftIATA, colManufacturer, colModel, colWake}
	cols, err := readHeader(reader, required...)
	if err != nil {
		return nil, err
	}

	summary := &ReferenceSummary{}
	short, err := eachRecord(reader, cols.width(required...), func(line int, rec []string) error {
		code := cols.get(rec, colAircraftIATA)
		if code == "" {
			summary.Skipped++
			return nil
		}

		aircraft := models.AircraftType{
			IATACode:     code,
			Manufacturer: cols.get(rec, colManufacturer),
			Model:        cols.get(rec, colModel),
			WakeCategory: cols.get(rec, colWake),
		}
		if err := w.Upsert(ctx, aircraft); err != nil {
			return fmt.Errorf("%w: aircraft type at line %d: %w", shared.ErrStoreWrite, line, err)
		}

		summary.Imported++
		sendProgress(progress, referenceUpdate(LoadAircraft, summary.Imported, code))
		return nil
	})
	summary.Skipped += short
	if err != nil {
		return summary, err
	}

	ri.logger.Info("imported aircraft types", "imported", summary.Imported, "skipped", summary.Skipped)
	return summary, nil
}

// columns maps header names to record positions.
type columns map[string]int

// width is the minimum record length that covers every named column.
func (c columns) width(names ...string) int {
	w := 0
	for _, name := range names {
		if i, ok := c[name]; ok && i+1 > w {
			w = i + 1
		}
	}
	return w
}

func (c columns) get(rec []string, name string) string {
	return strings.TrimSpace(rec[c[name]])
}

func newFeedReader(r io.Reader, comma rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	return reader
}

// readHeader reads the header row and checks that every required column is present.
func readHeader(reader *csv.Reader, required ...string) (columns, error) {
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty feed", shared.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", shared.ErrReadSource, err)
	}

	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}

	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %q", shared.ErrMissingColumn, name)
		}
	}
	return cols, nil
}

// eachRecord calls fn for every record after the header that is wide enough to hold every
// required column, and returns the number of records that were too short.
func eachRecord(reader *csv.Reader, width int, fn func(line int, rec []string) error) (int, error) {
	short := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return short, nil
		}
		if err != nil {
			return short, fmt.Errorf("%w: %w", shared.ErrReadSource, err)
		}
		if len(rec) < width {
			short++
			continue
		}

		line, _ := reader.FieldPos(0)
		if err := fn(line, rec); err != nil {
			return short, err
		}
	}
}
