package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskdeck/domain"
)

const requestBodyMaxSize = 64 * 1024 // 64 KiB

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, tasks Tasks, categories Categories, auth Authenticator, logger *log.Logger) {
	e.Use(GzipRequestMiddleware())

	e.GET("/api/tasks", listTasks(tasks, auth, logger))
	e.GET("/api/tasks/today", todayTasks(tasks, auth))
	e.GET("/api/tasks/overdue", overdueTasks(tasks, auth))
	e.GET("/api/tasks/search", searchTasks(tasks, auth))
	e.GET("/api/tasks/:id", getTask(tasks, auth))
	e.POST("/api/tasks", createTask(tasks, auth))
	e.PATCH("/api/tasks/:id", updateTask(tasks, auth))
	e.DELETE("/api/tasks/:id", deleteTask(tasks, auth))
	e.POST("/api/tasks/reorder", reorderTasks(tasks, auth))

	e.GET("/api/categories", listCategories(categories, auth))
	e.GET("/api/categories/:id", getCategory(categories, auth))
	e.POST("/api/categories", createCategory(categories, auth))
	e.PATCH("/api/categories/:id", updateCategory(categories, auth))
	e.DELETE("/api/categories/:id", deleteCategory(categories, auth))

	e.GET("/healthz", healthz())
}

type errorResponse struct {
	Error string `json:"error"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. The UI
// shows the message as a dismissible notification, so it travels verbatim.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	var se *domain.StoreError
	switch {
	case domain.IsValidation(err):
		status = http.StatusBadRequest
	case domain.IsNotFound(err):
		status = http.StatusNotFound
	case errors.As(err, &se):
		status = http.StatusBadGateway
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}

func authorize(c echo.Context, auth Authenticator) (string, error) {
	return auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
}

func decodeBody(c echo.Context, dst any) error {
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, requestBodyMaxSize))
	return dec.Decode(dst)
}

func pathID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

func listTasks(tasks Tasks, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics := newListRequestMetrics(logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		userID, authErr := authorize(c, auth)
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}
		metrics.SetUser(userID)

		fetchStart := time.Now()
		var out []domain.Task
		var fetchErr error
		if cid := strings.TrimSpace(c.QueryParam("category")); cid != "" {
			id, parseErr := strconv.Atoi(cid)
			if parseErr != nil {
				metrics.SetErrorStage("invalid_category")
				err = c.String(http.StatusBadRequest, "invalid category")
				return err
			}
			out, fetchErr = tasks.GetByCategory(ctx, id)
		} else {
			out, fetchErr = tasks.GetAll(ctx)
		}
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("store")
			err = writeError(c, fetchErr)
			return err
		}
		metrics.SetTasksReturned(len(out))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, out)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func todayTasks(tasks Tasks, auth Authenticator) echo.HandlerFunc {
	return listHandler(auth, func(c echo.Context) ([]domain.Task, error) {
		return tasks.GetTodayTasks(c.Request().Context())
	})
}

func overdueTasks(tasks Tasks, auth Authenticator) echo.HandlerFunc {
	return listHandler(auth, func(c echo.Context) ([]domain.Task, error) {
		return tasks.GetOverdueTasks(c.Request().Context())
	})
}

func searchTasks(tasks Tasks, auth Authenticator) echo.HandlerFunc {
	return listHandler(auth, func(c echo.Context) ([]domain.Task, error) {
		return tasks.Search(c.Request().Context(), c.QueryParam("q"))
	})
}

func listHandler(auth Authenticator, fetch func(echo.Context) ([]domain.Task, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		out, err := fetch(c)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func getTask(tasks Tasks, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid id")
		}
		t, err := tasks.GetByID(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		if t == nil {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "task not found"})
		}
		return c.JSON(http.StatusOK, t)
	}
}

type createTaskRequest struct {
	Name        string  `json:"name"`
	Tags        string  `json:"tags"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    flexInt `json:"category"`
	Priority    flexInt `json:"priority"`
	DueDate     string  `json:"dueDate"`
	Order       *int    `json:"order"`
}

func createTask(tasks Tasks, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		nt := domain.NewTask{
			Name:        req.Name,
			Tags:        req.Tags,
			Title:       req.Title,
			Description: req.Description,
			Category:    int(req.Category),
			Priority:    int(req.Priority),
			Order:       req.Order,
		}
		if req.DueDate != "" {
			due, err := parseDate(req.DueDate)
			if err != nil {
				return writeError(c, &domain.ValidationError{Field: "dueDate", Reason: "must be an ISO-8601 date"})
			}
			nt.DueDate = due
		}
		t, err := tasks.Create(c.Request().Context(), nt)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, t)
	}
}

type taskPatchRequest struct {
	Name        *string  `json:"name"`
	Tags        *string  `json:"tags"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *flexInt `json:"category"`
	Priority    *flexInt `json:"priority"`
	DueDate     *string  `json:"dueDate"`
	Completed   *bool    `json:"completed"`
	Order       *int     `json:"order"`
}

func updateTask(tasks Tasks, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid id")
		}
		var req taskPatchRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		patch := domain.TaskPatch{
			Name:        req.Name,
			Tags:        req.Tags,
			Title:       req.Title,
			Description: req.Description,
			Completed:   req.Completed,
			Order:       req.Order,
		}
		if req.Category != nil {
			v := int(*req.Category)
			patch.Category = &v
		}
		if req.Priority != nil {
			v := int(*req.Priority)
			patch.Priority = &v
		}
		if req.DueDate != nil {
			due, err := parseDate(*req.DueDate)
			if err != nil {
				return writeError(c, &domain.ValidationError{Field: "dueDate", Reason: "must be an ISO-8601 date"})
			}
			patch.DueDate = &due
		}
		t, err := tasks.Update(c.Request().Context(), id, patch)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, t)
	}
}

func deleteTask(tasks Tasks, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid id")
		}
		if err := tasks.Delete(c.Request().Context(), id); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

type reorderRequest struct {
	TaskIDs []int `json:"taskIds"`
}

func reorderTasks(tasks Tasks, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req reorderRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if len(req.TaskIDs) == 0 {
			return writeError(c, &domain.ValidationError{Field: "taskIds", Reason: "must not be empty"})
		}
		if err := tasks.Reorder(c.Request().Context(), req.TaskIDs); err != nil {
			return writeError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func listCategories(categories Categories, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		out, err := categories.GetAll(c.Request().Context())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

func getCategory(categories Categories, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid id")
		}
		cat, err := categories.GetByID(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		if cat == nil {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "category not found"})
		}
		return c.JSON(http.StatusOK, cat)
	}
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Tags  string `json:"tags"`
	Color string `json:"color"`
}

func createCategory(categories Categories, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		var req createCategoryRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		cat, err := categories.Create(c.Request().Context(), domain.NewCategory{
			Name:  req.Name,
			Tags:  req.Tags,
			Color: req.Color,
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, cat)
	}
}

type categoryPatchRequest struct {
	Name  *string `json:"name"`
	Tags  *string `json:"tags"`
	Color *string `json:"color"`
}

func updateCategory(categories Categories, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid id")
		}
		var req categoryPatchRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		cat, err := categories.Update(c.Request().Context(), id, domain.CategoryPatch{
			Name:  req.Name,
			Tags:  req.Tags,
			Color: req.Color,
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, cat)
	}
}

func deleteCategory(categories Categories, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := authorize(c, auth); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, err := pathID(c)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid id")
		}
		cat, err := categories.Delete(c.Request().Context(), id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, cat)
	}
}

// parseDate accepts an ISO-8601 instant or bare calendar date.
func parseDate(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", s)
}

// flexInt decodes from either a JSON number or a numeric string; UI form
// inputs arrive as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}
