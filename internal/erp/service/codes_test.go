package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextProjectCode(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	// 年内第一个项目
	assert.Equal(t, "AIR-24-01", NextProjectCode("AIR", now, nil))

	// 已有项目顺延
	assert.Equal(t, "AIR-24-02", NextProjectCode("AIR", now, []string{"AIR-24-01"}))

	// 序号有空洞时取最大值+1，不填洞
	assert.Equal(t, "AIR-24-06", NextProjectCode("AIR", now, []string{"AIR-24-01", "AIR-24-05"}))

	// 别的年份和前缀不影响取号
	assert.Equal(t, "AIR-24-02", NextProjectCode("AIR", now,
		[]string{"AIR-24-01", "AIR-23-09", "BLD-24-07"}))
}

func TestNextProjectCodeYearRollover(t *testing.T) {
	jan2025 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	// 跨年序号重新从01开始
	assert.Equal(t, "AIR-25-01", NextProjectCode("AIR", jan2025, []string{"AIR-24-09"}))
}

func TestNextWBSCode(t *testing.T) {
	// 根节点：项目编码当父编码
	assert.Equal(t, "AIR-24-01.01", NextWBSCode("AIR-24-01", nil))
	assert.Equal(t, "AIR-24-01.03", NextWBSCode("AIR-24-01", []string{"AIR-24-01.01", "AIR-24-01.02"}))

	// 子节点
	assert.Equal(t, "AIR-24-01.02.01", NextWBSCode("AIR-24-01.02", nil))
}

func TestNextWBSCodeIgnoresDeeperDescendants(t *testing.T) {
	// 更深层的编码后缀不是纯数字，取号时跳过
	code := NextWBSCode("AIR-24-01", []string{
		"AIR-24-01.01",
		"AIR-24-01.01.01",
		"AIR-24-01.01.02",
	})
	assert.Equal(t, "AIR-24-01.02", code)
}

func TestNextActivityCode(t *testing.T) {
	assert.Equal(t, "AIR-24-01.01.02-A01", NextActivityCode("AIR-24-01.01.02", nil))
	assert.Equal(t, "AIR-24-01.01.02-A03", NextActivityCode("AIR-24-01.01.02",
		[]string{"AIR-24-01.01.02-A01", "AIR-24-01.01.02-A02"}))
}

func TestNextSuffixBeyondTwoDigits(t *testing.T) {
	codes := []string{"AIR-24-01.99", "AIR-24-01.100"}
	// 两位补零只是显示习惯，序号本身不设上限
	assert.Equal(t, "AIR-24-01.101", NextWBSCode("AIR-24-01", codes))
}
