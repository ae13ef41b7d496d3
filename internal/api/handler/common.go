package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"quality-scanner/internal/dto"
	pkgErrors "quality-scanner/pkg/errors"
	"quality-scanner/pkg/utils"
)

// bindID 解析路径中的 uuid, 失败时已写入 400 响应
func bindID(c *gin.Context) (string, bool) {
	var param dto.IDParam
	if err := c.ShouldBindUri(&param); err != nil {
		utils.ErrorWithDetail(c, pkgErrors.CodeBadRequest, pkgErrors.ErrInvalidID.Message, utils.FormatValidationError(err))
		return "", false
	}
	return param.ID, true
}

// bindJSON 失败时已写入 400 响应
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.ErrorWithDetail(c, pkgErrors.CodeBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return false
	}
	return true
}

// bindOptionalJSON 允许空请求体
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		utils.ErrorWithDetail(c, pkgErrors.CodeBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return false
	}
	return true
}
