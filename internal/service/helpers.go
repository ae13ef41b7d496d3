package service

import (
	"time"

	pkgErrors "quality-scanner/pkg/errors"
)

// timeNow 测试中可替换
var timeNow = func() time.Time {
	return time.Now().UTC()
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// notFoundAs 将仓储层的 ErrRecordNotFound 转为带实体信息的 NotFound
func notFoundAs(err error, format string, args ...interface{}) error {
	if pkgErrors.IsNotFound(err) {
		return pkgErrors.NotFound(format, args...)
	}
	return err
}
