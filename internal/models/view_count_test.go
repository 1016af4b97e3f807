package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayOf_SameLocalDateSharesBucket(t *testing.T) {
	bangkok := time.FixedZone("UTC+7", 7*60*60)

	morning := time.Date(2026, 8, 30, 5, 0, 0, 0, bangkok)
	evening := time.Date(2026, 8, 30, 20, 0, 0, 0, bangkok)

	assert.Equal(t, DayOf(morning), DayOf(evening),
		"two views on the same local date must share one daily bucket")
	assert.Equal(t, "2026-08-30", DayOf(morning).Format("2006-01-02"))
}

func TestDayOf_MidnightBoundarySplitsBuckets(t *testing.T) {
	bangkok := time.FixedZone("UTC+7", 7*60*60)

	beforeMidnight := time.Date(2026, 8, 30, 23, 59, 0, 0, bangkok)
	afterMidnight := time.Date(2026, 8, 31, 0, 1, 0, 0, bangkok)

	assert.NotEqual(t, DayOf(beforeMidnight), DayOf(afterMidnight))
}
