package model

const ConfigItemTableName = "quality_config_items"

// ConfigItem 某个工具的一份配置文件内容
type ConfigItem struct {
	BaseModel
	ProfileID   string  `gorm:"size:36;not null;index" json:"profile_id"`
	Tool        string  `gorm:"size:100;not null" json:"tool"`
	Filename    string  `gorm:"size:255;not null" json:"filename"`
	Content     string  `gorm:"type:text;not null" json:"content"`
	Description *string `gorm:"size:500" json:"description"`
}

func (ConfigItem) TableName() string {
	return ConfigItemTableName
}
