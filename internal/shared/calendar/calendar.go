package calendar

import (
	"time"
)

// DateLayout 日期序列化格式（与前端和数据库保持一致）
const DateLayout = "2006-01-02"

// Calendar 工作日历：按星期掩码 + 节假日集合判定工作日
// 星期编号 0=周日 ... 6=周六
type Calendar struct {
	mask     map[time.Weekday]bool
	holidays map[string]bool
}

// New 创建工作日历
func New(weekdays []int, holidays []string) *Calendar {
	c := &Calendar{
		mask:     make(map[time.Weekday]bool, len(weekdays)),
		holidays: make(map[string]bool, len(holidays)),
	}
	for _, d := range weekdays {
		if d >= 0 && d <= 6 {
			c.mask[time.Weekday(d)] = true
		}
	}
	for _, h := range holidays {
		// 非法日期串直接忽略，不影响其余节假日
		if _, err := time.Parse(DateLayout, h); err == nil {
			c.holidays[h] = true
		}
	}
	return c
}

// Default 默认周一至周五工作、无节假日
func Default() *Calendar {
	return New([]int{1, 2, 3, 4, 5}, nil)
}

// IsWorkingDay 是否工作日：星期在掩码内且不是节假日
func (c *Calendar) IsWorkingDay(date time.Time) bool {
	if !c.mask[date.Weekday()] {
		return false
	}
	return !c.holidays[date.Format(DateLayout)]
}

// DayCount 日历天/工作日统计结果
type DayCount struct {
	Calendar int `json:"calendar_days"`
	Working  int `json:"working_days"`
}

// CountDays 统计 [start, end] 闭区间内的日历天数和工作日数
// start > end 时返回零值
func (c *Calendar) CountDays(start, end time.Time) DayCount {
	start = truncate(start)
	end = truncate(end)
	if start.After(end) {
		return DayCount{}
	}

	var count DayCount
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		count.Calendar++
		if c.IsWorkingDay(d) {
			count.Working++
		}
	}
	return count
}

// EndDateAfter 从 start 起第 n 个工作日落在哪一天
// start 当天如果是工作日计为第1个；n <= 0 时返回 start
func (c *Calendar) EndDateAfter(start time.Time, n int) time.Time {
	d := truncate(start)
	if n <= 0 || len(c.mask) == 0 {
		return d
	}

	remaining := n
	for {
		if c.IsWorkingDay(d) {
			remaining--
			if remaining == 0 {
				return d
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}

// WorkingDaysIn 工作日数快捷方法
func (c *Calendar) WorkingDaysIn(start, end time.Time) int {
	return c.CountDays(start, end).Working
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
