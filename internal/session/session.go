package session

import (
	"encoding"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexiquest/review-api/internal/domain"
)

// Phase is the state of a review session.
type Phase int

// Session phases. The zero value is invalid.
const (
	PhasePresenting Phase = iota + 1
	PhaseRevealed
	PhaseCompleted
)

var phaseNames = map[Phase]string{
	PhasePresenting: "presenting",
	PhaseRevealed:   "revealed",
	PhaseCompleted:  "completed",
}

var (
	_ encoding.TextMarshaler   = Phase(0)
	_ encoding.TextUnmarshaler = (*Phase)(nil)
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// MarshalText encodes the phase as its name.
func (p Phase) MarshalText() ([]byte, error) {
	name, ok := phaseNames[p]
	if !ok {
		return nil, fmt.Errorf("invalid session phase %d", int(p))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("invalid session phase %q", string(text))
}

// Outcome records one grading within a session.
type Outcome struct {
	ItemID   uuid.UUID            `json:"item_id"`
	Grade    domain.ReviewGrade   `json:"grade"`
	State    domain.ScheduleState `json:"state"`
	GradedAt time.Time            `json:"graded_at"`
}

// Entry is one position in the session queue. State reflects the
// optimistic result once the entry is graded.
type Entry struct {
	domain.DueItem
	Graded bool `json:"graded"`
}

// Session is one reviewer-paced pass through a queue of due items.
// It is never persisted; only the schedule states it produces are.
type Session struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Queue       []Entry   `json:"queue"`
	Cursor      int       `json:"cursor"`
	Phase       Phase     `json:"phase"`
	Outcomes    []Outcome `json:"outcomes"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	// Exited is set when the reviewer left before the queue was exhausted.
	Exited bool `json:"exited,omitempty"`
	// SummarySent is set once the summary has been handed to the sink.
	SummarySent bool `json:"summary_sent,omitempty"`
}

// Current returns the entry being presented, if any.
func (s *Session) Current() (Entry, bool) {
	if s.Phase == PhaseCompleted || s.Cursor >= len(s.Queue) {
		return Entry{}, false
	}
	return s.Queue[s.Cursor], true
}

// Remaining returns the number of queue entries not yet graded.
func (s *Session) Remaining() int {
	if s.Cursor >= len(s.Queue) {
		return 0
	}
	return len(s.Queue) - s.Cursor
}

// Completed reports whether the session reached its terminal phase.
func (s *Session) Completed() bool {
	return s.Phase == PhaseCompleted
}

// gradedEarlier reports whether itemID was graded at a queue position
// before the cursor.
func (s *Session) gradedEarlier(itemID uuid.UUID) bool {
	for i := 0; i < s.Cursor && i < len(s.Queue); i++ {
		if s.Queue[i].Item.ID == itemID && s.Queue[i].Graded {
			return true
		}
	}
	return false
}
