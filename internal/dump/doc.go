// Package dump decodes the section-delimited travel export into trip groups.
//
// The dump is a single line-oriented stream. Marker lines ("user:<id>",
// "devices:", "settings:", "trips:", "flights:", ...) switch the active
// section, and every other line is a ";"-delimited record for that section.
//
// # Pipeline
//
//  1. [LineSource] : yields trimmed, non-empty lines without buffering the whole input
//  2. [Classify] : recognises marker lines and the [Section] they open
//  3. Record parsers : [ParseDevice], [ApplySetting], [ParseTripStart], [ParseFlight]
//  4. [Accumulator] : groups each trip-start with the flights that follow it
//
// [Parser] threads the section, captured user fields, and the accumulator
// through each line explicitly, so a single line can be fed and inspected in
// isolation. [Parse] runs the whole pipeline over a reader.
//
// # Drops
//
// Malformed or out-of-place lines never fail a parse. Each line yields an
// [Outcome]; drops carry a [DropReason] and are tallied in [Result.Drops].
package dump
