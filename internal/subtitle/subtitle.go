package subtitle

import (
	"errors"
	"time"
)

// represents one timed caption cue
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// returned when the narration text contains nothing to caption
var ErrNoContent = errors.New("no narration content")
