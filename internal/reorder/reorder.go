// Package reorder swaps two adjacent lessons of a course without ever storing
// two lessons of the same course under one order key.
//
// A swap is three single-row writes:
//
//	staging             current.order_key = SentinelOrderKey
//	committing-target   target.order_key  = current's original key
//	committing-current  current.order_key = target's original key
//
// A failed write stops the swap. Earlier writes are not undone here; when the
// writer runs inside a transaction the caller's rollback takes care of them.
package reorder

import (
	"context"
	"fmt"
	"strings"

	"github.com/s/investorAcademy/internal/apperr"
	"github.com/s/investorAcademy/internal/models"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	default:
		return "", apperr.Newf(apperr.KindInvalid, "reorder.direction", "unknown direction %q", s)
	}
}

type State string

const (
	StateIdle              State = "idle"
	StateStaging           State = "staging"
	StateCommittingTarget  State = "committing-target"
	StateCommittingCurrent State = "committing-current"
	StateFailed            State = "failed"
)

// KeyWriter persists one lesson's order key.
type KeyWriter interface {
	SetOrderKey(ctx context.Context, lessonID uint, key int) error
}

// KeyWriterFunc adapts a function to KeyWriter.
type KeyWriterFunc func(ctx context.Context, lessonID uint, key int) error

func (f KeyWriterFunc) SetOrderKey(ctx context.Context, lessonID uint, key int) error {
	return f(ctx, lessonID, key)
}

// Plan holds the slice positions of the lesson being moved and its neighbour.
type Plan struct {
	Current int
	Target  int
}

// PlanMove locates lessonID in the ordered lessons and picks its neighbour in
// direction dir. ok is false when the move is a no-op: fewer than two lessons,
// the first lesson moving up, or the last lesson moving down.
func PlanMove(lessons []models.Lesson, lessonID uint, dir Direction) (Plan, bool, error) {
	if dir != Up && dir != Down {
		return Plan{}, false, apperr.Newf(apperr.KindInvalid, "reorder.plan", "unknown direction %q", dir)
	}
	if len(lessons) < 2 {
		return Plan{}, false, nil
	}

	idx := -1
	for i, l := range lessons {
		if l.ID == lessonID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Plan{}, false, apperr.Newf(apperr.KindNotFound, "reorder.plan", "lesson %d is not in this course", lessonID)
	}

	target := idx - 1
	if dir == Down {
		target = idx + 1
	}
	if target < 0 || target >= len(lessons) {
		return Plan{}, false, nil
	}
	return Plan{Current: idx, Target: target}, true, nil
}

// Error describes the write that stopped a swap.
type Error struct {
	State    State
	LessonID uint
	Key      int
	// Partial is set when an earlier write of the same swap had succeeded.
	Partial bool
	// RolledBack is set by callers whose transaction discarded the earlier writes.
	RolledBack bool
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("reorder failed in %s writing key %d to lesson %d: %v", e.State, e.Key, e.LessonID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// CauseKind is the kind of the underlying write failure.
func (e *Error) CauseKind() apperr.Kind {
	if k := apperr.KindOf(e.Err); k != apperr.KindUnknown {
		return k
	}
	return apperr.KindTransientIO
}

// Swap runs one reorder. It is single use: once it has failed it stays failed.
type Swap struct {
	writer KeyWriter
	state  State

	// OnTransition, when set, observes every state change.
	OnTransition func(from, to State)
}

func NewSwap(w KeyWriter) *Swap {
	return &Swap{writer: w, state: StateIdle}
}

func (s *Swap) State() State { return s.state }

func (s *Swap) enter(next State) {
	prev := s.state
	s.state = next
	if s.OnTransition != nil {
		s.OnTransition(prev, next)
	}
}

// Run performs the three writes for plan and returns a copy of lessons with
// the two entries exchanged by position and their keys swapped.
//
// A failure of the first write keeps the cause's kind, since nothing was
// written. A failure after that is reported as apperr.KindWriteConflict.
func (s *Swap) Run(ctx context.Context, lessons []models.Lesson, plan Plan) ([]models.Lesson, error) {
	if s.state != StateIdle {
		return nil, apperr.Newf(apperr.KindInvalid, "reorder.run", "swap is %s, not idle", s.state)
	}
	if plan.Current < 0 || plan.Current >= len(lessons) || plan.Target < 0 || plan.Target >= len(lessons) || plan.Current == plan.Target {
		return nil, apperr.Newf(apperr.KindInvalid, "reorder.run", "bad plan %+v for %d lessons", plan, len(lessons))
	}

	current := lessons[plan.Current]
	target := lessons[plan.Target]
	currentKey, targetKey := current.OrderKey, target.OrderKey

	steps := []struct {
		state    State
		lessonID uint
		key      int
	}{
		{StateStaging, current.ID, models.SentinelOrderKey},
		{StateCommittingTarget, target.ID, currentKey},
		{StateCommittingCurrent, current.ID, targetKey},
	}

	for i, step := range steps {
		s.enter(step.state)
		if err := s.writer.SetOrderKey(ctx, step.lessonID, step.key); err != nil {
			rerr := &Error{State: step.state, LessonID: step.lessonID, Key: step.key, Partial: i > 0, Err: err}
			s.enter(StateFailed)
			if rerr.Partial {
				return nil, apperr.New(apperr.KindWriteConflict, "reorder.run", rerr)
			}
			return nil, apperr.New(rerr.CauseKind(), "reorder.run", rerr)
		}
	}

	out := make([]models.Lesson, len(lessons))
	copy(out, lessons)
	out[plan.Current], out[plan.Target] = out[plan.Target], out[plan.Current]
	out[plan.Current].OrderKey = currentKey
	out[plan.Target].OrderKey = targetKey

	s.enter(StateIdle)
	return out, nil
}
