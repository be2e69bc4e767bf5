package web

import (
	"net/http"

	"go-jobmatch-web/internal/delivery/http/response"
	"go-jobmatch-web/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	healthUC usecase.HealthUsecase
}

func NewPageHandler(public, student, employer *gin.RouterGroup, healthUC usecase.HealthUsecase) {
	handler := &PageHandler{healthUC: healthUC}

	public.GET("/", handler.Home)
	public.GET("/health", handler.Health)
	student.GET("/student-dashboard", handler.Dashboard)
	employer.GET("/employer-dashboard", handler.Dashboard)
}

func (h *PageHandler) Home(c *gin.Context) {
	response.Render(c, http.StatusOK, "home.html", "", nil)
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	response.Render(c, http.StatusOK, "dashboard.html", "", nil)
}

// Health godoc
// @Summary      Health check
// @Description  Reports the backend API and Redis reachability
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response{data=map[string]string}
// @Failure      503  {object}  response.Response{data=map[string]string}
// @Router       /health [get]
func (h *PageHandler) Health(c *gin.Context) {
	status, healthy := h.healthUC.Check(c.Request.Context())
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Success:   false,
			Message:   "System degraded",
			Data:      status,
			RequestID: requestID(c),
		})
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}
