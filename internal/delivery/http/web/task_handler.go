package web

import (
	"net/http"

	"go-jobmatch-web/internal/delivery/http/response"
	"go-jobmatch-web/internal/domain"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskUC domain.TaskUsecase
}

// NewTaskHandler registers the student's task list. Forms cannot send PUT,
// PATCH or DELETE so each has a POST twin.
func NewTaskHandler(student *gin.RouterGroup, taskUC domain.TaskUsecase) {
	handler := &TaskHandler{taskUC: taskUC}

	student.GET("/tasks", handler.List)
	student.POST("/tasks", handler.Create)
	student.PUT("/tasks/:id", handler.Update)
	student.POST("/tasks/:id", handler.Update)
	student.DELETE("/tasks/:id", handler.Delete)
	student.POST("/tasks/:id/delete", handler.Delete)
	student.PATCH("/tasks/:id/toggle", handler.Toggle)
	student.POST("/tasks/:id/toggle", handler.Toggle)
}

type tasksView struct {
	List       *domain.TaskList `json:"list"`
	Categories []string         `json:"-"`
	Priorities []string         `json:"-"`
}

// List godoc
// @Summary      Job search tasks
// @Tags         tasks
// @Produce      json,html
// @Param        completed  query  bool    false  "Completion state"
// @Param        category   query  string  false  "Category"
// @Param        priority   query  string  false  "Priority"
// @Success      200  {object}  response.Response{data=domain.TaskList}
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	var filter domain.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(bindError(err))
		return
	}
	list, err := h.taskUC.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	if response.WantsJSON(c) {
		response.Success(c, http.StatusOK, "Tasks retrieved", list)
		return
	}
	response.Render(c, http.StatusOK, "tasks.html", "", tasksView{
		List:       list,
		Categories: domain.TaskCategories,
		Priorities: domain.TaskPriorities,
	})
}

// Create godoc
// @Summary      Add a task
// @Tags         tasks
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body  body      domain.TaskInput  true  "Task"
// @Success      201   {object}  response.Response{data=domain.Task}
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var input domain.TaskInput
	if err := c.ShouldBind(&input); err != nil {
		c.Error(bindError(err))
		return
	}
	task, err := h.taskUC.Create(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	h.done(c, http.StatusCreated, "Task added", task)
}

// Update godoc
// @Summary      Edit a task
// @Tags         tasks
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id    path      string            true  "Task ID"
// @Param        body  body      domain.TaskInput  true  "Task"
// @Success      200   {object}  response.Response{data=domain.Task}
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	var input domain.TaskInput
	if err := c.ShouldBind(&input); err != nil {
		c.Error(bindError(err))
		return
	}
	task, err := h.taskUC.Update(c.Request.Context(), id, input)
	if err != nil {
		c.Error(err)
		return
	}
	h.done(c, http.StatusOK, "Task updated", task)
}

// Delete godoc
// @Summary      Remove a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	if err := h.taskUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	h.done(c, http.StatusOK, "Task deleted", nil)
}

// Toggle godoc
// @Summary      Flip a task's completion
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response{data=domain.Task}
// @Router       /tasks/{id}/toggle [patch]
func (h *TaskHandler) Toggle(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	task, err := h.taskUC.Toggle(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	h.done(c, http.StatusOK, "", task)
}

func (h *TaskHandler) done(c *gin.Context, code int, message string, data interface{}) {
	if response.WantsJSON(c) {
		response.Success(c, code, message, data)
		return
	}
	response.Redirect(c, "/tasks", "success", message)
}
