package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	d, _ := time.Parse(DateLayout, s)
	return d
}

func TestIsWorkingDay(t *testing.T) {
	cal := Default()

	// 2024-01-01 是周一
	assert.True(t, cal.IsWorkingDay(date("2024-01-01")))
	assert.True(t, cal.IsWorkingDay(date("2024-01-05"))) // 周五
	assert.False(t, cal.IsWorkingDay(date("2024-01-06"))) // 周六
	assert.False(t, cal.IsWorkingDay(date("2024-01-07"))) // 周日
}

func TestIsWorkingDayHoliday(t *testing.T) {
	cal := New([]int{1, 2, 3, 4, 5}, []string{"2024-01-01"})

	assert.False(t, cal.IsWorkingDay(date("2024-01-01"))) // 元旦调休
	assert.True(t, cal.IsWorkingDay(date("2024-01-02")))
}

func TestNewIgnoresBadInput(t *testing.T) {
	cal := New([]int{1, 2, 3, 4, 5, 9, -1}, []string{"not-a-date", "2024-01-01"})

	assert.True(t, cal.IsWorkingDay(date("2024-01-02")))
	assert.False(t, cal.IsWorkingDay(date("2024-01-01")))
}

func TestCountDaysInclusive(t *testing.T) {
	cal := Default()

	// 2024-01-01(周一) 到 2024-01-07(周日)：7个日历天，5个工作日
	count := cal.CountDays(date("2024-01-01"), date("2024-01-07"))
	assert.Equal(t, 7, count.Calendar)
	assert.Equal(t, 5, count.Working)

	// 单天闭区间
	count = cal.CountDays(date("2024-01-01"), date("2024-01-01"))
	assert.Equal(t, 1, count.Calendar)
	assert.Equal(t, 1, count.Working)
}

func TestCountDaysReversedRange(t *testing.T) {
	cal := Default()
	count := cal.CountDays(date("2024-01-07"), date("2024-01-01"))
	assert.Equal(t, 0, count.Calendar)
	assert.Equal(t, 0, count.Working)
}

func TestCountDaysWithHolidays(t *testing.T) {
	cal := New([]int{1, 2, 3, 4, 5}, []string{"2024-01-01", "2024-01-02"})

	count := cal.CountDays(date("2024-01-01"), date("2024-01-05"))
	assert.Equal(t, 5, count.Calendar)
	assert.Equal(t, 3, count.Working)
}

func TestEndDateAfter(t *testing.T) {
	cal := Default()

	// 从周一开始，工期1天当天完工
	assert.Equal(t, date("2024-01-01"), cal.EndDateAfter(date("2024-01-01"), 1))

	// 5个工作日吃满一周
	assert.Equal(t, date("2024-01-05"), cal.EndDateAfter(date("2024-01-01"), 5))

	// 6个工作日跨过周末
	assert.Equal(t, date("2024-01-08"), cal.EndDateAfter(date("2024-01-01"), 6))
}

func TestEndDateAfterNonWorkingStart(t *testing.T) {
	cal := Default()

	// 周六开工顺延到周一
	assert.Equal(t, date("2024-01-08"), cal.EndDateAfter(date("2024-01-06"), 1))
}

func TestEndDateAfterHolidaySkipped(t *testing.T) {
	cal := New([]int{1, 2, 3, 4, 5}, []string{"2024-01-01"})

	// 元旦放假，第1个工作日落在1月2日
	assert.Equal(t, date("2024-01-02"), cal.EndDateAfter(date("2024-01-01"), 1))
}

func TestEndDateAfterHolidayMultiDay(t *testing.T) {
	cal := New([]int{1, 2, 3, 4, 5}, []string{"2024-01-01"})

	// 元旦放假，3个工作日是1月2、3、4日
	assert.Equal(t, date("2024-01-04"), cal.EndDateAfter(date("2024-01-01"), 3))
}

func TestEndDateAfterCountDaysInverse(t *testing.T) {
	// end = EndDateAfter(start, n) 时，[start, end] 恰好含 n 个工作日
	cal := New([]int{1, 2, 3, 4, 5}, []string{"2024-01-01", "2024-01-15"})
	starts := []time.Time{
		date("2024-01-01"), // 假日开工
		date("2024-01-02"),
		date("2024-01-06"), // 周六开工
		date("2024-01-12"), // 周五开工
	}

	for _, start := range starts {
		for n := 1; n <= 15; n++ {
			end := cal.EndDateAfter(start, n)
			count := cal.CountDays(start, end)
			assert.Equal(t, n, count.Working,
				"start=%s n=%d end=%s", start.Format(DateLayout), n, end.Format(DateLayout))
		}
	}
}

func TestEndDateAfterZeroDuration(t *testing.T) {
	cal := Default()
	assert.Equal(t, date("2024-01-01"), cal.EndDateAfter(date("2024-01-01"), 0))
}

func TestEndDateAfterEmptyMask(t *testing.T) {
	cal := New(nil, nil)
	// 掩码为空时直接返回开始日，不会死循环
	assert.Equal(t, date("2024-01-01"), cal.EndDateAfter(date("2024-01-01"), 5))
}

func TestWorkingDaysIn(t *testing.T) {
	cal := Default()
	assert.Equal(t, 10, cal.WorkingDaysIn(date("2024-01-01"), date("2024-01-12")))
}
