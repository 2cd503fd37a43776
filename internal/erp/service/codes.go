package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// nextSuffix 在已有编码里找给定前缀后的最大序号，返回下一个
// 后缀不是纯数字的编码（如更深层级的节点）直接跳过
func nextSuffix(codes []string, prefix string) int {
	max := 0
	for _, code := range codes {
		if !strings.HasPrefix(code, prefix) {
			continue
		}
		n, err := strconv.Atoi(code[len(prefix):])
		if err != nil || n <= 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1
}

// NextProjectCode 生成项目编码 {类别前缀}-{两位年}-{序号}，如 AIR-24-01
func NextProjectCode(categoryPrefix string, now time.Time, existing []string) string {
	prefix := fmt.Sprintf("%s-%02d-", categoryPrefix, now.Year()%100)
	return fmt.Sprintf("%s%02d", prefix, nextSuffix(existing, prefix))
}

// NextWBSCode 生成WBS节点编码 {父编码}.{序号}
// 根节点传项目编码作为父编码，如 AIR-24-01.01、AIR-24-01.01.02
func NextWBSCode(parentCode string, siblingCodes []string) string {
	prefix := parentCode + "."
	return fmt.Sprintf("%s%02d", prefix, nextSuffix(siblingCodes, prefix))
}

// NextActivityCode 生成活动编码 {WBS编码}-A{序号}，如 AIR-24-01.01.02-A01
func NextActivityCode(wbsCode string, siblingCodes []string) string {
	prefix := wbsCode + "-A"
	return fmt.Sprintf("%s%02d", prefix, nextSuffix(siblingCodes, prefix))
}
