package model

const QualityProfileTableName = "quality_profiles"

// QualityProfile 一组工具配置文件, 可被多个项目引用
type QualityProfile struct {
	BaseModel
	Name        string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	IsActive    bool    `gorm:"not null" json:"is_active"`

	Items    []ConfigItem `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Projects []Project    `gorm:"foreignKey:QualityProfileID;constraint:OnDelete:SET NULL" json:"projects,omitempty"`
}

func (QualityProfile) TableName() string {
	return QualityProfileTableName
}
