package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDModel uuid 主键, 只有创建时间的记录(扫描, 阶段结果)直接使用
type IDModel struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

// BeforeCreate 未指定ID时生成随机 uuid
func (m *IDModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type BaseModel struct {
	IDModel
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// AllModels 参与 AutoMigrate 的模型, 按依赖顺序
func AllModels() []interface{} {
	return []interface{}{
		&QualityProfile{},
		&ConfigItem{},
		&Project{},
		&Scan{},
		&PhaseResult{},
	}
}
