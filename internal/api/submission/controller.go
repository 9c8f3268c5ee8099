package submission

import (
	"errors"
	"net/http"

	"github.com/chivis/survey-relay/internal/types"
	"github.com/chivis/survey-relay/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Controller handles HTTP requests for form submission
type Controller struct {
	service *Service
}

// NewController creates a new submission controller
func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Submit godoc
// @Summary Append a questionnaire response to the spreadsheet
// @Accept json
// @Produce json
// @Param request body types.AnswerRecord true "Answer record"
// @Success 200 {object} types.SubmitResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /api/submit-form [post]
func (ctrl *Controller) Submit(c *gin.Context) {
	var record types.AnswerRecord

	if err := c.ShouldBindJSON(&record); err != nil {
		utils.Zlog.Warn("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	response, err := ctrl.service.Submit(c.Request.Context(), record)
	if err != nil {
		var cfgErr *types.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: cfgErr.Error()})
			return
		}

		utils.Zlog.Error("Failed to save submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error:   "Error saving data",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, response)
}
