package executehandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"collabeditgo/internal/services/execute"
)

type Handler struct {
	svc execute.IExecuteService
}

func New(svc execute.IExecuteService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/execute", h.execute)
}

// @Summary		Run a code snippet
// @Description	Executes the snippet with the configured interpreter under a bounded timeout. Not a sandbox.
// @Tags			Execute
// @Param			body	body		ExecuteBody	true	"Code payload"
// @Success		200		{object}	ExecuteResponse
// @Failure		400		{object}	ErrorResponse
// @Failure		422		{object}	ErrorResponse
// @Router			/execute [post]
func (h *Handler) execute(ginCtx *gin.Context) {
	var body ExecuteBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	output, err := h.svc.Run(ginCtx.Request.Context(), body.Code)
	switch {
	case errors.Is(err, execute.ErrEmptyCode):
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
	case errors.Is(err, execute.ErrTimeout):
		// Timeout is its own failure class, distinct from a program error.
		ginCtx.JSON(http.StatusUnprocessableEntity, &ErrorResponse{Error: err.Error()})
	case err != nil:
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
	default:
		ginCtx.JSON(http.StatusOK, &ExecuteResponse{Output: output})
	}
}
