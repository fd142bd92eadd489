package domain

import "sync"

// EntityKind names an owned collection for id sequencing and rebinding.
type EntityKind string

const (
	KindEventType EntityKind = "event_type"
	KindEventTag  EntityKind = "event_tag"
	KindPosition  EntityKind = "position"
	KindLocation  EntityKind = "location"
)

// IDSequence hands out provisional ids for entities created in memory. Advance keeps it above every
// persisted id seen so far, so a provisional id never shadows a loaded entity.
type IDSequence struct {
	mu   sync.Mutex
	last map[EntityKind]int64
}

func NewIDSequence() *IDSequence {
	return &IDSequence{last: make(map[EntityKind]int64)}
}

var processSequence = NewIDSequence()

// ProcessSequence returns the sequence shared by every aggregate in this process.
func ProcessSequence() *IDSequence { return processSequence }

// Advance raises the high-water mark for kind to at least id.
func (s *IDSequence) Advance(kind EntityKind, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last[kind] {
		s.last[kind] = id
	}
}

// Next returns a fresh provisional id for kind.
func (s *IDSequence) Next(kind EntityKind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[kind]++
	return s.last[kind]
}

// HighWater returns the largest id handed out or advanced to for kind.
func (s *IDSequence) HighWater(kind EntityKind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[kind]
}
