package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tripx/internal/tasks"
)

var (
	_ list.Item = phaseItem{}
)

// phaseItem summarizes the updates seen for one [tasks.Phase] to implement [list.Item].
type phaseItem struct {
	phase   tasks.Phase
	updates int
	last    string
}

func (i phaseItem) FilterValue() string { return i.phase.String() }
func (i phaseItem) Title() string       { return i.phase.String() }
func (i phaseItem) Description() string {
	return fmt.Sprintf("%d updates • %s", i.updates, i.last)
}
