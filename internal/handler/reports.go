package handler

import (
	"net/http"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Summary godoc
// @Summary      Sales summary
// @Description  Aggregates revenue, units sold, average order value and average supplier delivery time, optionally filtered by date range.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        from query string false "YYYY-MM-DD inclusive"
// @Param        to   query string false "YYYY-MM-DD inclusive"
// @Success      200  {object} dto.SummaryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/analytics/summary [get]
func (h *ReportsHandler) Summary(c *gin.Context) {
	var filter dto.SummaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Summary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid period"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
