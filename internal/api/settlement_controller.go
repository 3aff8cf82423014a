package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trustspirit/reimburse-gin/internal/auth"
	"github.com/trustspirit/reimburse-gin/internal/service"
)

// SettlementController 结算控制器
type SettlementController struct {
	settlementService service.SettlementService
}

// NewSettlementController 创建结算控制器
func NewSettlementController(settlementService service.SettlementService) *SettlementController {
	return &SettlementController{
		settlementService: settlementService,
	}
}

// Consolidate 合并结算
// @Summary      合并结算
// @Description  把选中的已批准申请按收款人分组合并为结算记录,原子翻转状态
// @Tags         结算管理
// @Accept       json
// @Produce      json
// @Param        request body service.ConsolidateRequest true "结算参数"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /settlements [post]
// @Security     BearerAuth
func (c *SettlementController) Consolidate(ctx *gin.Context) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	var req service.ConsolidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	settlements, err := c.settlementService.Consolidate(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, settlements)
}

// Get 获取结算详情
// @Summary      获取结算详情
// @Description  根据 ID 获取结算记录详情
// @Tags         结算管理
// @Produce      json
// @Param        id path string true "结算 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /settlements/{id} [get]
// @Security     BearerAuth
func (c *SettlementController) Get(ctx *gin.Context) {
	settlement, err := c.settlementService.Get(ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, settlement)
}

// List 查询项目结算列表
// @Summary      查询结算列表
// @Description  查询项目下的所有结算记录
// @Tags         结算管理
// @Produce      json
// @Param        projectId query string true "项目 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /settlements [get]
// @Security     BearerAuth
func (c *SettlementController) List(ctx *gin.Context) {
	projectID := ctx.Query("projectId")
	if projectID == "" {
		Error(ctx, http.StatusBadRequest, "invalid request", "projectId is required")
		return
	}

	settlements, err := c.settlementService.ListByProject(projectID)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, settlements)
}
