package services

import (
	"errors"
	"math"
	"time"
)

// TimerAction is a time-tracking command for a task or feature timer.
type TimerAction string

const (
	TimerStart    TimerAction = "start"
	TimerPause    TimerAction = "pause"
	TimerComplete TimerAction = "complete"
)

var ErrInvalidTimerAction = errors.New("invalid timer action, must be start, pause or complete")

// TimerState is the persisted timer portion of a trackable record.
type TimerState struct {
	StartedAt       *time.Time
	AccumulatedTime int64
}

// TimerResult is the state to persist after applying an action. Changed is
// false when the action was a no-op (start while running, pause while
// stopped), in which case nothing should be written.
type TimerResult struct {
	StartedAt       *time.Time
	AccumulatedTime int64
	ActualHours     float64
	SetActualHours  bool
	Changed         bool
	Message         string
}

// ApplyTimerAction computes the next timer state. Elapsed time is counted in
// whole seconds from StartedAt to now; a pause with no running timer never
// accumulates anything, so pausing twice cannot double-count.
func ApplyTimerAction(state TimerState, action TimerAction, now time.Time) (TimerResult, error) {
	switch action {
	case TimerStart:
		if state.StartedAt != nil {
			return TimerResult{
				StartedAt:       state.StartedAt,
				AccumulatedTime: state.AccumulatedTime,
				Message:         "El timer ya está corriendo",
			}, nil
		}
		started := now
		return TimerResult{
			StartedAt:       &started,
			AccumulatedTime: state.AccumulatedTime,
			Changed:         true,
			Message:         "Timer iniciado",
		}, nil

	case TimerPause:
		if state.StartedAt == nil {
			return TimerResult{
				AccumulatedTime: state.AccumulatedTime,
				Message:         "No hay timer corriendo",
			}, nil
		}
		elapsed := int64(now.Sub(*state.StartedAt).Seconds())
		return TimerResult{
			StartedAt:       nil,
			AccumulatedTime: state.AccumulatedTime + elapsed,
			Changed:         true,
			Message:         "Timer pausado",
		}, nil

	case TimerComplete:
		total := state.AccumulatedTime
		if state.StartedAt != nil {
			total += int64(now.Sub(*state.StartedAt).Seconds())
		}
		return TimerResult{
			StartedAt:       nil,
			AccumulatedTime: total,
			ActualHours:     RoundHours(total),
			SetActualHours:  true,
			Changed:         true,
			Message:         "Timer completado",
		}, nil

	default:
		return TimerResult{}, ErrInvalidTimerAction
	}
}

// RoundHours converts accumulated seconds to hours rounded to one decimal.
func RoundHours(seconds int64) float64 {
	return math.Round(float64(seconds)/3600*10) / 10
}

// DaysOverdue returns how many whole days a due date is past, or nil when
// there is no due date or it has not passed yet by a full day.
func DaysOverdue(dueDate *time.Time, now time.Time) *int {
	if dueDate == nil {
		return nil
	}
	diff := now.Sub(*dueDate)
	if diff <= 0 {
		return nil
	}
	days := int(diff.Hours() / 24)
	if days == 0 {
		return nil
	}
	return &days
}
