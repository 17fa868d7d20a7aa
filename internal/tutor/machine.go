package tutor

import (
	"fmt"
	"time"

	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/skeleton"
)

// snapshot is the state restored when an attempt is aborted.
type snapshot struct {
	slot    SlotState
	metrics Metrics
}

type inflight struct {
	slotID int
	before snapshot
}

// Machine drives slot transitions for one run. It is the sole writer of
// slot statuses and metrics and is not safe for concurrent use.
type Machine struct {
	skel     *skeleton.Skeleton
	slots    []SlotState
	index    map[int]int
	metrics  Metrics
	pending  *inflight
	finished bool

	startedAt time.Time
	now       func() time.Time
}

// NewMachine creates a Machine with every slot of s pending.
func NewMachine(s *skeleton.Skeleton) *Machine {
	m := &Machine{
		skel:  s,
		index: make(map[int]int, len(s.Slots)),
		now:   time.Now,
	}
	for i, slot := range s.Slots {
		m.slots = append(m.slots, SlotState{
			ID:      slot.ID,
			Goal:    slot.Goal,
			Concept: slot.Concept,
			Status:  StatusPending,
		})
		m.index[slot.ID] = i
	}
	m.startedAt = m.now()
	return m
}

func (m *Machine) slot(id int) (*SlotState, error) {
	i, ok := m.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSlot, id)
	}
	return &m.slots[i], nil
}

// BeginAttempt moves a slot to attempted. The first attempt on a slot
// counts toward AttemptsTotal; re-attempts after needs_improvement do not.
func (m *Machine) BeginAttempt(a skeleton.Attempt) error {
	s, err := m.slot(a.SlotID)
	if err != nil {
		return err
	}
	if m.pending != nil {
		return ErrAttemptInFlight
	}
	if s.Status == StatusComplete {
		return fmt.Errorf("%w: %d", ErrSlotComplete, a.SlotID)
	}

	m.pending = &inflight{slotID: s.ID, before: snapshot{slot: *s, metrics: m.metrics.clone()}}

	if s.Status == StatusPending {
		m.metrics.AttemptsTotal++
	}
	s.Status = StatusAttempted
	s.Attempts++
	return nil
}

// AbortAttempt undoes the in-flight attempt, leaving state exactly as it
// was before BeginAttempt. It is a no-op with nothing in flight.
func (m *Machine) AbortAttempt() {
	if m.pending == nil {
		return
	}
	s, _ := m.slot(m.pending.slotID)
	*s = m.pending.before.slot
	m.metrics = m.pending.before.metrics
	m.pending = nil
}

// InFlight returns the slot under review, or 0.
func (m *Machine) InFlight() int {
	if m.pending == nil {
		return 0
	}
	return m.pending.slotID
}

// ApplyVerdict resolves the in-flight attempt. A verdict that is not
// applicable rolls the attempt back instead.
func (m *Machine) ApplyVerdict(v review.Verdict) (Transition, error) {
	if m.pending == nil || m.pending.slotID != v.SlotID {
		return Transition{}, fmt.Errorf("%w %d", ErrNoAttempt, v.SlotID)
	}
	s, err := m.slot(v.SlotID)
	if err != nil {
		return Transition{}, err
	}

	if !v.Applicable() {
		m.AbortAttempt()
		return Transition{SlotID: v.SlotID, From: StatusAttempted, To: s.Status, RolledBack: true}, nil
	}

	tr := Transition{SlotID: s.ID, From: s.Status}
	first := s.Verdicts == 0
	s.Verdicts++
	s.LastOutcome = v.Outcome
	s.LastFeedback = v.Feedback

	if v.Outcome == review.OutcomeCorrect {
		s.Status = StatusComplete
		if first {
			s.FirstTry = true
			tr.FirstTry = true
			m.metrics.CorrectOnFirstTry++
		}
		concept := s.Concept
		if concept == "" {
			concept = s.Goal
		}
		m.metrics.master(concept)
	} else {
		s.Status = StatusNeedsImprovement
	}
	m.pending = nil
	tr.To = s.Status

	if !m.finished && m.allComplete() {
		m.finished = true
		tr.Finished = true
	}
	return tr, nil
}

// RequestHint raises a slot's hint level by one and returns that hint.
// At the cap the call is a no-op that repeats the last hint and does not
// count as a request.
func (m *Machine) RequestHint(id int) (HintResult, error) {
	s, err := m.slot(id)
	if err != nil {
		return HintResult{}, err
	}
	switch s.Status {
	case StatusComplete:
		return HintResult{}, fmt.Errorf("%w: %d", ErrSlotComplete, id)
	case StatusAttempted:
		return HintResult{}, ErrAttemptInFlight
	}

	res := HintResult{SlotID: id, Level: s.HintLevel}
	if s.HintLevel < MaxHintLevel {
		s.HintLevel++
		m.metrics.HintsRequested++
		res.Level = s.HintLevel
		res.Advanced = true
	}
	if res.Level > 0 {
		if slot, ok := m.skel.Slot(id); ok {
			res.Text = slot.Hints[res.Level-1]
		}
	}
	return res, nil
}

// CurrentSlot returns the lowest-id slot that is not complete, or 0 when
// all are.
func (m *Machine) CurrentSlot() int {
	for _, s := range m.slots {
		if s.Status != StatusComplete {
			return s.ID
		}
	}
	return 0
}

// Slot returns a copy of one slot's state.
func (m *Machine) Slot(id int) (SlotState, bool) {
	s, err := m.slot(id)
	if err != nil {
		return SlotState{}, false
	}
	return *s, true
}

// Slots returns a copy of every slot's state in file order.
func (m *Machine) Slots() []SlotState {
	return append([]SlotState(nil), m.slots...)
}

// Metrics returns a copy of the session metrics.
func (m *Machine) Metrics() Metrics {
	return m.metrics.clone()
}

// Finished reports whether every slot is complete.
func (m *Machine) Finished() bool {
	return m.finished
}

// Progress returns how many slots are complete out of the total.
func (m *Machine) Progress() (complete, total int) {
	for _, s := range m.slots {
		if s.Status == StatusComplete {
			complete++
		}
	}
	return complete, len(m.slots)
}

func (m *Machine) allComplete() bool {
	done, total := m.Progress()
	return total > 0 && done == total
}
