package repository

import (
	"errors"

	"gorm.io/gorm"

	pkgErrors "quality-scanner/pkg/errors"
)

type QueryOption func(*gorm.DB) *gorm.DB

func WithPreload(association string, conds ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, conds...)
	}
}

// WithOrderedPreload 预加载关联并排序
func WithOrderedPreload(association, order string) QueryOption {
	return WithPreload(association, func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}

func applyOptions(db *gorm.DB, opts []QueryOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

// wrapWriteError 唯一索引冲突映射为 Conflict, 需开启 gorm.Config.TranslateError
func wrapWriteError(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgErrors.Wrap(pkgErrors.CodeConflict, message+": 记录已存在", err)
	}
	return pkgErrors.Wrap(pkgErrors.CodeDatabaseError, message, err)
}
