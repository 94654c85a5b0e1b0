// Package slider tells real slider drags apart from the clamping an
// immediate-mode slider applies to values outside its range.
package slider

// Tracker remembers the value each slider returned on the previous frame.
// A slider counts as edited only when its returned value moves between two
// frames, so a value the slider merely clamps is never written back.
type Tracker struct {
	last map[string]float32
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]float32)}
}

// Edited records the value slider key returned this frame and reports
// whether it differs from the previous frame's value. The first frame after
// a Reset only anchors the slider.
func (t *Tracker) Edited(key string, returned float32) bool {
	prev, seen := t.last[key]
	t.last[key] = returned
	return seen && prev != returned
}

// Reset forgets every slider, used when the edited values are replaced
// from outside the panel.
func (t *Tracker) Reset() {
	clear(t.last)
}
