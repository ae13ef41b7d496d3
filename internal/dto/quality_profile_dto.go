package dto

// CreateQualityProfileRequest 创建质量配置请求, 可同时携带配置项
type CreateQualityProfileRequest struct {
	Name        string                     `json:"name" binding:"required,max=255"`
	Description *string                    `json:"description"`
	IsActive    *bool                      `json:"is_active"` // 默认 true
	Items       []*CreateConfigItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateQualityProfileRequest 更新质量配置请求
type UpdateQualityProfileRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// QualityProfileResponse 质量配置响应
type QualityProfileResponse struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description *string                  `json:"description"`
	IsActive    bool                     `json:"is_active"`
	Items       []*ConfigItemResponse    `json:"items"`
	Projects    []*ProjectSimpleResponse `json:"projects,omitempty"`
	CreatedAt   string                   `json:"created_at"`
	UpdatedAt   string                   `json:"updated_at"`
}

// CreateConfigItemRequest 添加配置项请求
type CreateConfigItemRequest struct {
	Tool        string  `json:"tool" binding:"required,max=100"`
	Filename    string  `json:"filename" binding:"required,max=255"`
	Content     string  `json:"content" binding:"required"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// UpdateConfigItemRequest 更新配置项请求
type UpdateConfigItemRequest struct {
	Tool        *string `json:"tool" binding:"omitempty,min=1,max=100"`
	Filename    *string `json:"filename" binding:"omitempty,min=1,max=255"`
	Content     *string `json:"content" binding:"omitempty,min=1"`
	Description *string `json:"description" binding:"omitempty,max=500"`
}

// ConfigItemResponse 配置项响应
type ConfigItemResponse struct {
	ID          string  `json:"id"`
	ProfileID   string  `json:"profile_id"`
	Tool        string  `json:"tool"`
	Filename    string  `json:"filename"`
	Content     string  `json:"content"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
