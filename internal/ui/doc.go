// Package ui renders a terminal progress view for import runs using bubbletea's Elm architecture.
//
// The view has two states:
//  1. [ImportView] : a spinner with the latest [tasks.ProgressUpdate] while the job runs
//  2. [ResultView] : a browsable list of the phases the job went through
//
// The job runs in its own goroutine and reports through a buffered channel. The (view) [Model]
// implements the standard Init/Update/View pattern and waits on that channel one message at a time.
package ui
