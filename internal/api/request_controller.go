package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trustspirit/reimburse-gin/internal/auth"
	"github.com/trustspirit/reimburse-gin/internal/repository"
	"github.com/trustspirit/reimburse-gin/internal/service"
	"github.com/trustspirit/reimburse-gin/internal/utils"
	"github.com/trustspirit/reimburse-gin/internal/workflow"
)

// RequestController 报销申请控制器
type RequestController struct {
	requestService service.RequestService
}

// NewRequestController 创建报销申请控制器
func NewRequestController(requestService service.RequestService) *RequestController {
	return &RequestController{
		requestService: requestService,
	}
}

// validateRequestID 验证申请 ID 并返回错误响应（如果无效）
func (c *RequestController) validateRequestID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateRequestID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request ID", err.Error())
		return false
	}
	return true
}

// actor 从上下文取出认证用户,失败时写出错误响应
func (c *RequestController) actor(ctx *gin.Context) (workflow.Actor, bool) {
	actor, err := auth.ActorFromContext(ctx)
	if err != nil {
		Error(ctx, http.StatusUnauthorized, "unauthorized", err.Error())
		return workflow.Actor{}, false
	}
	return actor, true
}

// Create 创建报销申请
// @Summary      创建报销申请
// @Description  申请人提交新的报销申请,初始状态为 pending
// @Tags         报销申请
// @Accept       json
// @Produce      json
// @Param        request body service.CreateRequestRequest true "申请信息"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /requests [post]
// @Security     BearerAuth
func (c *RequestController) Create(ctx *gin.Context) {
	actor, ok := c.actor(ctx)
	if !ok {
		return
	}

	var req service.CreateRequestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	request, err := c.requestService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, request)
}

// Get 获取申请详情
// @Summary      获取申请详情
// @Description  根据 ID 获取报销申请详情
// @Tags         报销申请
// @Produce      json
// @Param        id path string true "申请 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /requests/{id} [get]
// @Security     BearerAuth
func (c *RequestController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	request, err := c.requestService.Get(id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, request)
}

// List 查询申请列表
// @Summary      查询申请列表
// @Description  按项目/状态/委员会/申请人过滤查询报销申请
// @Tags         报销申请
// @Produce      json
// @Param        projectId   query string false "项目 ID"
// @Param        status      query string false "状态"
// @Param        committee   query string false "委员会"
// @Param        requestedBy query string false "申请人 UID"
// @Param        sortBy      query string false "排序字段"
// @Param        sortOrder   query string false "排序方向 ASC/DESC"
// @Success      200  {object}  Response
// @Failure      500  {object}  ErrorResponse
// @Router       /requests [get]
// @Security     BearerAuth
func (c *RequestController) List(ctx *gin.Context) {
	filter := &repository.RequestFilter{
		SortBy:    ctx.Query("sortBy"),
		SortOrder: ctx.Query("sortOrder"),
	}
	if v := ctx.Query("projectId"); v != "" {
		filter.ProjectID = &v
	}
	if v := ctx.Query("status"); v != "" {
		filter.Status = &v
	}
	if v := ctx.Query("committee"); v != "" {
		filter.Committee = &v
	}
	if v := ctx.Query("requestedBy"); v != "" {
		filter.RequestedBy = &v
	}
	if v := ctx.Query("settlementId"); v != "" {
		filter.SettlementID = &v
	}

	requests, err := c.requestService.List(filter)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, requests)
}

// History 查询申请状态历史
// @Summary      查询状态历史
// @Description  查询申请的状态转换历史记录
// @Tags         报销申请
// @Produce      json
// @Param        id path string true "申请 ID"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Router       /requests/{id}/history [get]
// @Security     BearerAuth
func (c *RequestController) History(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	history, err := c.requestService.History(id)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, history)
}

// Review 审核申请
// @Summary      审核申请
// @Description  审核人将 pending 申请标记为 reviewed
// @Tags         报销申请
// @Produce      json
// @Param        id path string true "申请 ID"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests/{id}/review [post]
// @Security     BearerAuth
func (c *RequestController) Review(ctx *gin.Context) {
	actor, ok := c.actor(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	if err := c.requestService.Review(ctx.Request.Context(), actor, id); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// Approve 批准申请
// @Summary      批准申请
// @Description  批准人附签名批准申请,金额超阈值需主管级角色
// @Tags         报销申请
// @Accept       json
// @Produce      json
// @Param        id path string true "申请 ID"
// @Param        request body service.ApproveRequest true "批准参数"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests/{id}/approve [post]
// @Security     BearerAuth
func (c *RequestController) Approve(ctx *gin.Context) {
	actor, ok := c.actor(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	var req service.ApproveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.requestService.Approve(ctx.Request.Context(), actor, id, &req); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// Reject 驳回申请
// @Summary      驳回申请
// @Description  审核人/批准人附理由驳回申请
// @Tags         报销申请
// @Accept       json
// @Produce      json
// @Param        id path string true "申请 ID"
// @Param        request body service.RejectRequest true "驳回参数"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests/{id}/reject [post]
// @Security     BearerAuth
func (c *RequestController) Reject(ctx *gin.Context) {
	actor, ok := c.actor(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	var req service.RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.requestService.Reject(ctx.Request.Context(), actor, id, &req); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// ForceReject 强制驳回申请
// @Summary      强制驳回申请
// @Description  撤回已批准但尚未结算的申请,仅限高级角色
// @Tags         报销申请
// @Accept       json
// @Produce      json
// @Param        id path string true "申请 ID"
// @Param        request body service.RejectRequest true "驳回参数"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests/{id}/force-reject [post]
// @Security     BearerAuth
func (c *RequestController) ForceReject(ctx *gin.Context) {
	actor, ok := c.actor(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	var req service.RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	if err := c.requestService.ForceReject(ctx.Request.Context(), actor, id, &req); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// Cancel 撤回申请
// @Summary      撤回申请
// @Description  申请人撤回自己的 pending 申请
// @Tags         报销申请
// @Produce      json
// @Param        id path string true "申请 ID"
// @Success      200  {object}  Response
// @Failure      403  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /requests/{id}/cancel [post]
// @Security     BearerAuth
func (c *RequestController) Cancel(ctx *gin.Context) {
	actor, ok := c.actor(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	if err := c.requestService.Cancel(ctx.Request.Context(), actor, id); err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, nil)
}

// Resubmit 重新提交申请
// @Summary      重新提交申请
// @Description  基于被驳回/已撤回的申请创建新申请,原记录保持不变
// @Tags         报销申请
// @Accept       json
// @Produce      json
// @Param        id path string true "原申请 ID"
// @Param        request body service.ResubmitRequest true "重新提交参数"
// @Success      200  {object}  Response
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /requests/{id}/resubmit [post]
// @Security     BearerAuth
func (c *RequestController) Resubmit(ctx *gin.Context) {
	actor, ok := c.actor(ctx)
	if !ok {
		return
	}
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	var req service.ResubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	request, err := c.requestService.Resubmit(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, request)
}
