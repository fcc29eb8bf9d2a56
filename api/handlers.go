package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"worklist/calendar"
	"worklist/domain"
	"worklist/store"
	"worklist/view"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, st *store.Store, ded Deduper, logger *log.Logger) {
	e.GET("/api/board", getBoard(st, logger))
	e.GET("/api/stream", streamBoard(st))

	e.POST("/api/tasks", postTask(st, ded))
	e.PUT("/api/tasks/:id", putTask(st))
	e.DELETE("/api/tasks/:id", deleteTask(st))
	e.POST("/api/tasks/:id/toggle", toggleTask(st))
	e.POST("/api/tasks/:id/subtasks/:sid", putSubtask(st))
	e.POST("/api/tasks/reorder", reorderTasks(st))
	e.POST("/api/tasks/complete-all", completeAll(st))
	e.POST("/api/tasks/clear-completed", clearCompleted(st))

	e.POST("/api/classes", postClass(st))

	e.GET("/api/ui", getUI(st))
	e.PUT("/api/ui", putUI(st))

	e.GET("/api/export", exportDocument(st))
	e.POST("/api/import", importDocument(st, ded))

	e.GET("/healthz", healthz())
}

type calendarPayload struct {
	WeekStart string         `json:"weekStart"`
	Label     string         `json:"label"`
	Heading   string         `json:"heading"`
	Days      []calendar.Day `json:"days"`
}

type boardResponse struct {
	Title    string            `json:"title"`
	Tasks    []domain.Task     `json:"tasks"`
	Summary  view.Summary      `json:"summary"`
	Classes  []view.ClassCount `json:"classes"`
	Calendar calendarPayload   `json:"calendar"`
	UI       domain.UISettings `json:"ui"`
}

// buildBoard assembles the full render model for the current filters: the
// filtered task list plus the aggregates, chips and calendar computed over
// the unfiltered collection.
func buildBoard(st *store.Store, f view.Filter) boardResponse {
	tasks := st.Tasks()
	ui := st.UI()
	today := domain.Today()
	heading := "Showing all tasks"
	if ui.FocusDate != "" {
		heading = "Planning from " + domain.DateHeading(ui.FocusDate)
	}
	return boardResponse{
		Title:   view.BoardTitle(ui.FocusDate),
		Tasks:   view.Apply(tasks, f, today),
		Summary: view.Summarize(tasks),
		Classes: view.ClassCounts(tasks, st.Classes(), ui.SelectedClassID),
		Calendar: calendarPayload{
			WeekStart: ui.CalendarWeekStart,
			Label:     calendar.Label(ui.CalendarWeekStart),
			Heading:   heading,
			Days:      calendar.Week(ui.CalendarWeekStart, ui.FocusDate, tasks, today),
		},
		UI: ui,
	}
}

func boardFilter(c echo.Context, ui domain.UISettings) view.Filter {
	class := c.QueryParam("class")
	if class == "" {
		class = ui.SelectedClassID
	}
	return view.Filter{
		Search:    c.QueryParam("q"),
		Status:    c.QueryParam("status"),
		Priority:  c.QueryParam("priority"),
		Class:     class,
		FocusDate: ui.FocusDate,
	}
}

func getBoard(st *store.Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newBoardRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		fetchStart := time.Now()
		resp := buildBoard(st, boardFilter(c, st.UI()))
		metrics.ObserveFetch(time.Since(fetchStart))
		metrics.SetTasksReturned(len(resp.Tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, resp)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func postTask(st *store.Store, ded Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req taskRequest
		if err := decodeJSON(c, taskRequestMaxSize, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		dup, release := claimIdempotency(c, ded)
		if dup {
			return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
		}
		task, err := st.CreateTask(c.Request().Context(), req.fields())
		if err != nil {
			release()
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, task)
	}
}

func putTask(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		var req taskRequest
		if err := decodeJSON(c, taskRequestMaxSize, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		task, err := st.UpdateTask(c.Request().Context(), id, req.fields())
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		st.DeleteTask(c.Request().Context(), id)
		return c.NoContent(http.StatusNoContent)
	}
}

func toggleTask(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		task, ok := st.ToggleComplete(c.Request().Context(), id)
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func putSubtask(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		sid, err := strconv.Atoi(c.Param("sid"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid subtask id"})
		}
		var req subtaskRequest
		if err := decodeJSON(c, taskRequestMaxSize, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		st.SetSubtaskDone(c.Request().Context(), id, sid, req.Done)
		return c.NoContent(http.StatusNoContent)
	}
}

func reorderTasks(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req reorderRequest
		if err := decodeJSON(c, taskRequestMaxSize, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		st.Reorder(c.Request().Context(), req.Order)
		return c.NoContent(http.StatusNoContent)
	}
}

func completeAll(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		st.CompleteAll(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}
}

func clearCompleted(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		removed := st.ClearCompleted(c.Request().Context())
		return c.JSON(http.StatusOK, clearedResponse{Removed: removed})
	}
}

func postClass(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req classRequest
		if err := decodeJSON(c, taskRequestMaxSize, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		class, err := st.AddClass(c.Request().Context(), req.Name)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, class)
	}
}

func getUI(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, st.UI())
	}
}

func putUI(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req uiRequest
		if err := decodeJSON(c, taskRequestMaxSize, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		ctx := c.Request().Context()
		if req.Theme != nil {
			if err := st.SetTheme(ctx, *req.Theme); err != nil {
				return writeError(c, err)
			}
		}
		if req.CycleTheme {
			st.CycleTheme(ctx)
		}
		if req.FocusDate != nil {
			if err := st.SetFocusDate(ctx, *req.FocusDate); err != nil {
				return writeError(c, err)
			}
		}
		if req.ShiftWeek != nil {
			st.ShiftWeek(ctx, *req.ShiftWeek)
		}
		if req.SelectedClass != nil {
			st.SelectClass(ctx, *req.SelectedClass)
		}
		if req.Scratchpad != nil {
			st.SetScratchpad(ctx, *req.Scratchpad)
		}
		return c.JSON(http.StatusOK, st.UI())
	}
}

func exportDocument(st *store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc := st.Export()
		filename := "the-work-list-export-" + domain.Today() + ".json"
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.JSON(http.StatusOK, doc)
	}
}

func importDocument(st *store.Store, ded Deduper) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := io.ReadAll(io.LimitReader(c.Request().Body, importMaxSize))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "unable to read body"})
		}
		dup, release := claimIdempotency(c, ded)
		if dup {
			return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
		}
		imported, err := st.Import(c.Request().Context(), data)
		if err != nil {
			release()
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, importResponse{Imported: imported})
	}
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// decodeJSON decodes a size-capped request body, rejecting unknown fields.
func decodeJSON(c echo.Context, maxSize int64, v any) error {
	lr := io.LimitReader(c.Request().Body, maxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// claimIdempotency records the request's idempotency key. dup reports a
// repeat delivery; release undoes the claim when processing fails so the
// client may retry. Deduper errors favor availability: the request proceeds.
func claimIdempotency(c echo.Context, ded Deduper) (dup bool, release func()) {
	release = func() {}
	if ded == nil {
		return false, release
	}
	key := c.Request().Header.Get(HeaderIdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}
	ctx := c.Request().Context()
	fresh, err := ded.Add(ctx, key)
	if err != nil {
		c.Logger().Errorf("idempotency claim failed: %v", err)
		return false, release
	}
	c.Response().Header().Set(HeaderIdempotencyKey, key)
	if !fresh {
		return true, release
	}
	return false, func() {
		if err := ded.Remove(ctx, key); err != nil {
			c.Logger().Errorf("idempotency release failed: %v", err)
		}
	}
}

func writeError(c echo.Context, err error) error {
	var validation domain.ValidationError
	var notFound domain.NotFoundError
	var format domain.FormatError
	switch {
	case errors.As(err, &validation):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: validation.Error()})
	case errors.As(err, &format):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: format.Error()})
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: notFound.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
