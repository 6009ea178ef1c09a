package checkin

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
	"server-tonix-app/internal/pkg/util"
)

var loc = util.FixedOffset(4)

// at returns hour:00 on May day, 2024 in the program calendar.
func at(day, hour int) time.Time {
	return time.Date(2024, 5, day, hour, 0, 0, 0, loc)
}

func TestFirstCheckin(t *testing.T) {
	acc := &model.Account{ID: 1}
	tr, err := Apply(acc, at(1, 9), loc)
	require.NoError(t, err)

	assert.Equal(t, int64(1), acc.CurrentStreak)
	assert.Equal(t, int64(1), acc.TotalDays)
	assert.Equal(t, "2024-05-01", acc.LastCheckinDate)
	assert.False(t, tr.Continued)
	assert.Equal(t, "2024-05-01", tr.Today)
}

func TestSameDayIsRejected(t *testing.T) {
	acc := &model.Account{ID: 1}
	_, err := Apply(acc, at(1, 0), loc)
	require.NoError(t, err)

	before := *acc
	_, err = Apply(acc, at(1, 23), loc)
	assert.True(t, errors.Is(err, generr.AlreadyCheckedIn))
	assert.Equal(t, before, *acc)
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name       string
		last       string
		streak     int64
		now        time.Time
		wantStreak int64
		continued  bool
	}{
		{"next day continues", "2024-05-01", 4, at(2, 8), 5, true},
		{"just after midnight continues", "2024-05-01", 1, at(2, 0), 2, true},
		{"gap of two days resets", "2024-05-01", 4, at(3, 8), 1, false},
		{"gap of three days resets", "2024-05-01", 9, at(4, 8), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &model.Account{LastCheckinDate: tt.last, CurrentStreak: tt.streak, TotalDays: 10}
			tr, err := Apply(acc, tt.now, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStreak, acc.CurrentStreak)
			assert.Equal(t, tt.continued, tr.Continued)
			assert.Equal(t, int64(11), acc.TotalDays)
		})
	}
}

func TestDayBoundaryUsesFixedOffset(t *testing.T) {
	acc := &model.Account{}
	// 23:30 UTC on May 1 is already May 2 at UTC+4
	_, err := Apply(acc, time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC), loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", acc.LastCheckinDate)

	// 19:00 UTC on May 2 is still May 2 at UTC+4
	_, err = Apply(acc, time.Date(2024, 5, 2, 19, 0, 0, 0, time.UTC), loc)
	assert.True(t, errors.Is(err, generr.AlreadyCheckedIn))

	// 20:00 UTC on May 2 is May 3 at UTC+4
	_, err = Apply(acc, time.Date(2024, 5, 2, 20, 0, 0, 0, time.UTC), loc)
	require.NoError(t, err)
	assert.Equal(t, int64(2), acc.CurrentStreak)
}

func TestFutureDateIsRejected(t *testing.T) {
	acc := &model.Account{LastCheckinDate: "2024-05-05", CurrentStreak: 3}
	_, err := Apply(acc, at(4, 10), loc)
	assert.True(t, errors.Is(err, generr.AlreadyCheckedIn))
}

func TestStatusOf(t *testing.T) {
	acc := &model.Account{LastCheckinDate: "2024-05-01", CurrentStreak: 4, TotalDays: 8}

	st := StatusOf(acc, at(1, 15), loc)
	assert.True(t, st.CheckedInToday)
	assert.Equal(t, int64(4), st.CurrentStreak)
	assert.True(t, st.NextCheckinAt.Equal(at(2, 0)))

	st = StatusOf(acc, at(2, 15), loc)
	assert.False(t, st.CheckedInToday)
	assert.Equal(t, int64(4), st.CurrentStreak)
	assert.True(t, st.NextCheckinAt.Equal(at(2, 15)))

	st = StatusOf(acc, at(3, 15), loc)
	assert.Zero(t, st.CurrentStreak, "broken streak")
	assert.Equal(t, int64(8), st.TotalDays)

	st = StatusOf(&model.Account{}, at(3, 15), loc)
	assert.False(t, st.CheckedInToday)
	assert.Empty(t, st.LastCheckin)
}
