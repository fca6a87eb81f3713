package metrics

import (
	"strconv"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// 2024-03-13 is a Wednesday.
var today = utils.MustParseDay("2024-03-13")

func dailyHabit(id string) models.Habit {
	return models.Habit{
		ID:           id,
		Title:        id,
		Frequency:    constants.FrequencyDaily,
		TrackingType: constants.TrackingCompletion,
	}
}

func weeklyHabit(id string, days ...time.Weekday) models.Habit {
	h := dailyHabit(id)
	h.Frequency = constants.FrequencyWeekly
	h.WeeklyDays = days
	return h
}

func progressHabit(id string, target float64) models.Habit {
	h := dailyHabit(id)
	h.TrackingType = constants.TrackingProgress
	h.Target = target
	h.Units = "miles"
	return h
}

// logDays marks habitID completed on each offset back from today.
func logDays(l models.Log, habitID string, offsets ...int) models.Log {
	for _, off := range offsets {
		l.Put(models.Entry{
			HabitID:   habitID,
			Day:       utils.DayKey(utils.AddDays(today, -off)),
			Completed: true,
			Feeling:   constants.DefaultFeeling,
		})
	}
	return l
}

func logProgress(l models.Log, habitID string, offset int, amount float64) {
	l.Put(models.Entry{
		HabitID:   habitID,
		Day:       utils.DayKey(utils.AddDays(today, -offset)),
		Completed: true,
		Feeling:   constants.DefaultFeeling,
		Progress:  strconv.FormatFloat(amount, 'f', -1, 64),
	})
}
