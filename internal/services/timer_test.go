package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyTimerAction_StartWhileRunningIsNoOp(t *testing.T) {
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := started.Add(10 * time.Minute)

	result, err := ApplyTimerAction(TimerState{StartedAt: &started, AccumulatedTime: 120}, TimerStart, now)

	assert.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, int64(120), result.AccumulatedTime)
	assert.Equal(t, &started, result.StartedAt)
	assert.Equal(t, "El timer ya está corriendo", result.Message)
}

func TestApplyTimerAction_PauseAccumulatesElapsed(t *testing.T) {
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := started.Add(30 * time.Minute)

	result, err := ApplyTimerAction(TimerState{StartedAt: &started, AccumulatedTime: 600}, TimerPause, now)

	assert.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Nil(t, result.StartedAt)
	assert.Equal(t, int64(600+1800), result.AccumulatedTime)
}

func TestApplyTimerAction_DoublePauseNeverDoubleCounts(t *testing.T) {
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := started.Add(time.Hour)

	first, err := ApplyTimerAction(TimerState{StartedAt: &started}, TimerPause, now)
	assert.NoError(t, err)
	assert.Equal(t, int64(3600), first.AccumulatedTime)

	// A second pause arrives with no running timer; nothing accumulates.
	second, err := ApplyTimerAction(TimerState{StartedAt: nil, AccumulatedTime: first.AccumulatedTime}, TimerPause, now.Add(time.Hour))
	assert.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, int64(3600), second.AccumulatedTime)
}

func TestApplyTimerAction_CompleteFoldsRunningTime(t *testing.T) {
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := started.Add(45 * time.Minute)

	result, err := ApplyTimerAction(TimerState{StartedAt: &started, AccumulatedTime: 900}, TimerComplete, now)

	assert.NoError(t, err)
	assert.True(t, result.Changed)
	assert.True(t, result.SetActualHours)
	assert.Nil(t, result.StartedAt)
	assert.Equal(t, int64(900+2700), result.AccumulatedTime)
	assert.Equal(t, 1.0, result.ActualHours)
}

func TestApplyTimerAction_CompleteWithoutRunningTimer(t *testing.T) {
	result, err := ApplyTimerAction(TimerState{AccumulatedTime: 5400}, TimerComplete, time.Now())

	assert.NoError(t, err)
	assert.Equal(t, int64(5400), result.AccumulatedTime)
	assert.Equal(t, 1.5, result.ActualHours)
}

func TestApplyTimerAction_InvalidAction(t *testing.T) {
	_, err := ApplyTimerAction(TimerState{}, TimerAction("reset"), time.Now())
	assert.ErrorIs(t, err, ErrInvalidTimerAction)
}

func TestRoundHours(t *testing.T) {
	assert.Equal(t, 0.0, RoundHours(0))
	assert.Equal(t, 0.1, RoundHours(360))
	assert.Equal(t, 1.0, RoundHours(3600))
	// 5550s = 1.5416h rounds to one decimal
	assert.Equal(t, 1.5, RoundHours(5550))
	assert.Equal(t, 2.6, RoundHours(9180))
}

func TestDaysOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, DaysOverdue(nil, now))

	future := now.Add(48 * time.Hour)
	assert.Nil(t, DaysOverdue(&future, now))

	sameDay := now.Add(-6 * time.Hour)
	assert.Nil(t, DaysOverdue(&sameDay, now))

	threeDays := now.Add(-72 * time.Hour)
	days := DaysOverdue(&threeDays, now)
	if assert.NotNil(t, days) {
		assert.Equal(t, 3, *days)
	}
}
