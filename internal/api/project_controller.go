package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trustspirit/reimburse-gin/internal/auth"
	"github.com/trustspirit/reimburse-gin/internal/service"
	"github.com/trustspirit/reimburse-gin/internal/utils"
)

// ProjectController 项目控制器
type ProjectController struct {
	projectService service.ProjectService
	budgetService  service.BudgetService
}

// NewProjectController 创建项目控制器
func NewProjectController(projectService service.ProjectService, budgetService service.BudgetService) *ProjectController {
	return &ProjectController{
		projectService: projectService,
		budgetService:  budgetService,
	}
}

// Create 创建项目
// @Summary      创建项目
// @Description  创建新项目,仅管理员可调用
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        request body service.CreateProjectRequest true "项目信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /projects [post]
// @Security     BearerAuth
func (c *ProjectController) Create(ctx *gin.Context) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	var req service.CreateProjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	project, err := c.projectService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, project)
}

// Get 获取项目详情
// @Summary      获取项目详情
// @Description  根据 ID 获取项目详情
// @Tags         项目管理
// @Produce      json
// @Param        id path string true "项目 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /projects/{id} [get]
// @Security     BearerAuth
func (c *ProjectController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateProjectID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid project ID", err.Error())
		return
	}

	project, err := c.projectService.Get(id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, project)
}

// List 查询项目列表
// @Summary      查询项目列表
// @Description  查询所有项目
// @Tags         项目管理
// @Produce      json
// @Success      200  {object}  Response
// @Router       /projects [get]
// @Security     BearerAuth
func (c *ProjectController) List(ctx *gin.Context) {
	projects, err := c.projectService.List()
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, projects)
}

// UpdateBudget 更新项目预算配置
// @Summary      更新预算配置
// @Description  更新项目预算总额/分项额度/阈值,仅管理员可调用
// @Tags         项目管理
// @Accept       json
// @Produce      json
// @Param        id path string true "项目 ID"
// @Param        request body service.UpdateBudgetRequest true "预算配置"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /projects/{id}/budget [put]
// @Security     BearerAuth
func (c *ProjectController) UpdateBudget(ctx *gin.Context) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	var req service.UpdateBudgetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	project, err := c.projectService.UpdateBudget(ctx.Request.Context(), actor, ctx.Param("id"), &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, project)
}

// BudgetUsage 查询预算占用
// @Summary      查询预算占用
// @Description  计算项目当前预算占用率与预警状态
// @Tags         项目管理
// @Produce      json
// @Param        id path string true "项目 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /projects/{id}/budget-usage [get]
// @Security     BearerAuth
func (c *ProjectController) BudgetUsage(ctx *gin.Context) {
	usage, err := c.budgetService.GetUsage(ctx.Param("id"))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, usage)
}
