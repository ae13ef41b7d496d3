package handler

import (
	"github.com/gin-gonic/gin"

	"quality-scanner/internal/dto"
	"quality-scanner/internal/service"
	"quality-scanner/pkg/utils"
)

type QualityProfileHandler struct {
	profileService service.QualityProfileService
}

func NewQualityProfileHandler(profileService service.QualityProfileService) *QualityProfileHandler {
	return &QualityProfileHandler{
		profileService: profileService,
	}
}

// Create 创建质量配置
// @Summary 创建质量配置
// @Tags QualityProfile
// @Accept json
// @Produce json
// @Param request body dto.CreateQualityProfileRequest true "创建质量配置请求"
// @Success 201 {object} utils.Response{data=dto.QualityProfileResponse}
// @Failure 409 {object} utils.Response
// @Router /api/v1/quality-profiles [post]
func (h *QualityProfileHandler) Create(c *gin.Context) {
	var req dto.CreateQualityProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Create(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, profile)
}

// List 质量配置列表
// @Summary 质量配置列表(包含配置项)
// @Tags QualityProfile
// @Produce json
// @Success 200 {object} utils.Response{data=[]dto.QualityProfileResponse}
// @Router /api/v1/quality-profiles [get]
func (h *QualityProfileHandler) List(c *gin.Context) {
	profiles, err := h.profileService.List()
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, profiles)
}

// GetByID 质量配置详情
// @Summary 质量配置详情(包含配置项与关联项目)
// @Tags QualityProfile
// @Produce json
// @Param id path string true "质量配置ID"
// @Success 200 {object} utils.Response{data=dto.QualityProfileResponse}
// @Router /api/v1/quality-profiles/{id} [get]
func (h *QualityProfileHandler) GetByID(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetByID(id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, profile)
}

// Update 更新质量配置
// @Summary 更新质量配置
// @Tags QualityProfile
// @Accept json
// @Produce json
// @Param id path string true "质量配置ID"
// @Param request body dto.UpdateQualityProfileRequest true "更新质量配置请求"
// @Success 200 {object} utils.Response{data=dto.QualityProfileResponse}
// @Router /api/v1/quality-profiles/{id} [patch]
func (h *QualityProfileHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req dto.UpdateQualityProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Update(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, profile)
}

// Delete 删除质量配置
// @Summary 删除质量配置(关联项目解除引用)
// @Tags QualityProfile
// @Produce json
// @Param id path string true "质量配置ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/quality-profiles/{id} [delete]
func (h *QualityProfileHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.profileService.Delete(id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}

// AddConfigItem 添加配置项
// @Summary 添加配置项
// @Tags QualityProfile
// @Accept json
// @Produce json
// @Param id path string true "质量配置ID"
// @Param request body dto.CreateConfigItemRequest true "配置项"
// @Success 201 {object} utils.Response{data=dto.ConfigItemResponse}
// @Router /api/v1/quality-profiles/{id}/configs [post]
func (h *QualityProfileHandler) AddConfigItem(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req dto.CreateConfigItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.profileService.AddConfigItem(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, item)
}

// ListConfigItems 配置项列表
// @Summary 配置项列表(按 tool, filename 排序)
// @Tags QualityProfile
// @Produce json
// @Param id path string true "质量配置ID"
// @Success 200 {object} utils.Response{data=[]dto.ConfigItemResponse}
// @Router /api/v1/quality-profiles/{id}/configs [get]
func (h *QualityProfileHandler) ListConfigItems(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	items, err := h.profileService.ListConfigItems(id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, items)
}

// UpdateConfigItem 更新配置项
// @Summary 更新配置项
// @Tags QualityProfile
// @Accept json
// @Produce json
// @Param id path string true "配置项ID"
// @Param request body dto.UpdateConfigItemRequest true "更新配置项请求"
// @Success 200 {object} utils.Response{data=dto.ConfigItemResponse}
// @Router /api/v1/config-items/{id} [patch]
func (h *QualityProfileHandler) UpdateConfigItem(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req dto.UpdateConfigItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.profileService.UpdateConfigItem(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, item)
}

// RemoveConfigItem 删除配置项
// @Summary 删除配置项
// @Tags QualityProfile
// @Produce json
// @Param id path string true "配置项ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/config-items/{id} [delete]
func (h *QualityProfileHandler) RemoveConfigItem(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.profileService.RemoveConfigItem(id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}
