package handler

import (
	"github.com/gin-gonic/gin"

	"quality-scanner/internal/dto"
	"quality-scanner/internal/service"
	pkgErrors "quality-scanner/pkg/errors"
	"quality-scanner/pkg/utils"
)

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// Create 注册项目
// @Summary 注册项目
// @Tags Project
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "注册项目请求"
// @Success 201 {object} utils.Response{data=dto.ProjectResponse}
// @Failure 409 {object} utils.Response
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(&req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Created(c, project)
}

// List 项目列表, 传 key 时只返回该项目
// @Summary 项目列表
// @Tags Project
// @Produce json
// @Param key query string false "项目key"
// @Success 200 {object} utils.Response{data=[]dto.ProjectResponse}
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	var query dto.ProjectListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorWithDetail(c, pkgErrors.CodeBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	if query.Key != "" {
		project, err := h.projectService.GetByKey(query.Key)
		if err != nil {
			utils.Error(c, err)
			return
		}
		utils.Success(c, []*dto.ProjectResponse{project})
		return
	}

	projects, err := h.projectService.List()
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, projects)
}

// GetByID 项目详情
// @Summary 项目详情(包含扫描记录)
// @Tags Project
// @Produce json
// @Param id path string true "项目ID"
// @Success 200 {object} utils.Response{data=dto.ProjectDetailResponse}
// @Failure 404 {object} utils.Response
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(id)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// GetConfigs 获取项目的配置文件集合
// @Summary 获取项目配置文件(扫描前调用)
// @Tags Project
// @Produce json
// @Param key path string true "项目key"
// @Success 200 {object} utils.Response{data=dto.ConfigBundleResponse}
// @Failure 404 {object} utils.Response
// @Router /api/v1/projects/configs/{key} [get]
func (h *ProjectHandler) GetConfigs(c *gin.Context) {
	var param dto.KeyParam
	if err := c.ShouldBindUri(&param); err != nil {
		utils.ErrorWithDetail(c, pkgErrors.CodeBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return
	}

	bundle, err := h.projectService.ResolveConfigs(param.Key)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, bundle)
}

// Update 部分更新项目
// @Summary 更新项目
// @Tags Project
// @Accept json
// @Produce json
// @Param id path string true "项目ID"
// @Param request body dto.UpdateProjectRequest true "更新项目请求"
// @Success 200 {object} utils.Response{data=dto.ProjectResponse}
// @Router /api/v1/projects/{id} [patch]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(id, &req)
	if err != nil {
		utils.Error(c, err)
		return
	}

	utils.Success(c, project)
}

// Delete 删除项目
// @Summary 删除项目(级联删除扫描记录)
// @Tags Project
// @Produce json
// @Param id path string true "项目ID"
// @Success 200 {object} utils.Response
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(id); err != nil {
		utils.Error(c, err)
		return
	}

	utils.SuccessWithMessage(c, "删除成功", nil)
}
