// Package display shows status lines on a character display.
package display

import (
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/swamp-cooler/internal/status"
)

// Display shows two lines of text. Implementations may fail; callers log and carry on.
type Display interface {
	Show(lines status.Lines) error
}

// Log renders the display into the debug log, only when the content changes.
type Log struct {
	last  status.Lines
	shown bool
}

// Show logs lines if they differ from what is already shown.
func (d *Log) Show(lines status.Lines) error {
	if d.shown && lines == d.last {
		return nil
	}
	d.last, d.shown = lines, true
	log.WithFields(log.Fields{"line1": lines[0], "line2": lines[1]}).Debug("display")
	return nil
}

// Fake records what it was asked to show.
type Fake struct {
	Shown   []status.Lines
	ShowErr error
}

// Show records lines, or returns ShowErr.
func (f *Fake) Show(lines status.Lines) error {
	if f.ShowErr != nil {
		return f.ShowErr
	}
	f.Shown = append(f.Shown, lines)
	return nil
}

// Last returns the most recent lines shown.
func (f *Fake) Last() status.Lines {
	if len(f.Shown) == 0 {
		return status.Lines{}
	}
	return f.Shown[len(f.Shown)-1]
}
