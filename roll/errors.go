package roll

import (
	"errors"
	"fmt"
)

// ErrRollTooLarge is returned when the raster would exceed MaxRollCells.
var ErrRollTooLarge = errors.New("piano roll exceeds the size ceiling")

// MalformedEventError reports an event whose fields fall outside the 7-bit
// range the source format guarantees. It is raised at demultiplex time so
// bad values never index into the raster.
type MalformedEventError struct {
	Track int
	Index int
	Field string
	Value int
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("malformed event: track %d, event %d: %s %d out of range",
		e.Track, e.Index, e.Field, e.Value)
}
