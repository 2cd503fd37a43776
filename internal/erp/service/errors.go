package service

import "errors"

// 服务层错误哨兵，边界层据此选HTTP状态码
var (
	// ErrInvalid 输入校验或业务规则不通过
	ErrInvalid = errors.New("invalid input")
	// ErrCodeConflict 编码分配重试耗尽仍撞唯一索引
	ErrCodeConflict = errors.New("code allocation conflict")
)
