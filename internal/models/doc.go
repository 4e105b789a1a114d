// Package models defines the relational entities produced by a travel export import.
//
// The package contains two categories of types:
//
// 1. Dump entities: rows parsed from the section-delimited export dump
//   - [User] : the single account the dump belongs to (upserted by ID)
//   - [Device] : device history rows (append-only)
//   - [Trip] : trip headers (append-only)
//   - [Flight] : flights owned by a trip (append-only)
//   - [TripGroup] : one trip plus its ordered flights, the unit the writer commits
//
// 2. Reference entities: rows loaded from the CSV feeds
//   - [Airport] : airport directory rows, joined by IATA code
//   - [AircraftType] : aircraft type codes
//
// [ImportRun] records each CLI invocation in the import_runs ledger.
//
// Nullable dump fields are modeled as *string; the dump's "None" token maps to nil.
package models
