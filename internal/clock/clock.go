// Package clock 提供可注入的时钟能力
// 执行窗口校验依赖外部时间源，注入时钟使窗口逻辑可用合成时间测试
package clock

import "time"

// Clock 时钟接口
type Clock interface {
	// Now 返回当前时间
	Now() time.Time
}

// systemClock 系统时钟
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// System 返回系统时钟
func System() Clock {
	return systemClock{}
}

// Fixed 固定时钟 (测试用)
type Fixed struct {
	Time time.Time
}

func (f *Fixed) Now() time.Time {
	return f.Time
}

// Advance 将固定时钟前移
func (f *Fixed) Advance(d time.Duration) {
	f.Time = f.Time.Add(d)
}
