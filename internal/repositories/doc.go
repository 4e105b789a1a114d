// Package repositories implements SQLite persistence for the import tables.
//
// Every repository is built over [DBTX], so the same code runs against the
// shared *sql.DB or inside a *sql.Tx (the writer commits each trip group in
// one transaction).
//
// Key Implementations:
//   - [UserRepository] : user_info upsert keyed by the dump's user id
//   - [DeviceRepository] : append-only device_info rows
//   - [TripRepository] : append-only trips, returning the generated id
//   - [FlightRepository] : append-only flights referencing a committed trip
//   - [AirportRepository] : airport directory upsert keyed by the source id
//   - [AircraftTypeRepository] : aircraft type upsert keyed by IATA code
//   - [ImportRunRepository] : ledger of import invocations
//
// Users and reference rows are idempotent across re-imports; devices, trips
// and flights are appended on every run.
package repositories
