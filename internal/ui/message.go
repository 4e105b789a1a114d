package ui

import (
	"github.com/desertthunder/tripx/internal/tasks"
)

type progressUpdateMsg tasks.ProgressUpdate

type jobCompleteMsg struct {
	result any
	err    error
}
