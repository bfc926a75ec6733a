package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meal-window-planner/internal/app"
	"meal-window-planner/internal/meal"
	"meal-window-planner/internal/profile"
	"meal-window-planner/internal/redistribution"
	"meal-window-planner/internal/shared"
)

// Server exposes the planner over HTTP. It is caller glue around the
// pure core: every handler resolves inputs, invokes App, and renders
// the result.
type Server struct {
	app *app.App
}

// NewServer creates a new API server over the given App.
func NewServer(a *app.App) *Server {
	return &Server{app: a}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.SetTrustedProxies(nil)

	api := router.Group("/api")
	api.GET("/users/:user/windows/:date", s.getWindows)
	api.POST("/users/:user/plan/:date", s.planDay)
	api.POST("/users/:user/first-day", s.planFirstDay)
	api.POST("/users/:user/checkin", s.submitCheckIn)
	api.POST("/users/:user/meals", s.logMeal)
	api.POST("/users/:user/windows/:id/fasted", s.markFasted)
	api.POST("/users/:user/redistribution/preview", s.previewRedistribution)
	api.POST("/users/:user/redistribution/apply", s.applyRedistribution)
	return router
}

func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

func (s *Server) getWindows(c *gin.Context) {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	windows, err := s.app.PlanDay(c.Request.Context(), c.Param("user"), date, time.Now())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

func (s *Server) planDay(c *gin.Context) {
	s.getWindows(c)
}

type firstDayRequest struct {
	CompletionTime time.Time `json:"completion_time" binding:"required"`
}

func (s *Server) planFirstDay(c *gin.Context) {
	var req firstDayRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	plan, err := s.app.PlanFirstDay(c.Request.Context(), c.Param("user"), req.CompletionTime)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

type checkInRequest struct {
	Date           string    `json:"date" binding:"required"`
	WakeTime       time.Time `json:"wake_time" binding:"required"`
	PlannedBedtime time.Time `json:"planned_bedtime" binding:"required"`
}

func (s *Server) submitCheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	proposal, err := s.app.SubmitCheckIn(c.Request.Context(), &profile.MorningCheckIn{
		UserID:         c.Param("user"),
		Date:           date,
		WakeTime:       req.WakeTime,
		PlannedBedtime: req.PlannedBedtime,
		SubmittedAt:    time.Now(),
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

type logMealRequest struct {
	WindowID string        `json:"window_id"`
	Name     string        `json:"name"`
	Calories int           `json:"calories" binding:"required"`
	Macros   shared.Macros `json:"macros"`
}

func (s *Server) logMeal(c *gin.Context) {
	var req logMealRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}

	m := &meal.Meal{
		UserID:   c.Param("user"),
		WindowID: req.WindowID,
		Name:     req.Name,
		LoggedAt: time.Now(),
		Calories: req.Calories,
		Macros:   req.Macros,
	}
	if err := s.app.LogMeal(c.Request.Context(), m); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

type fastedRequest struct {
	Fasted bool `json:"fasted"`
}

func (s *Server) markFasted(c *gin.Context) {
	var req fastedRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	if err := s.app.MarkWindowFasted(c.Request.Context(), c.Param("user"), c.Param("id"), req.Fasted); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type redistributionRequest struct {
	Date string `json:"date" binding:"required"`
}

func (s *Server) previewRedistribution(c *gin.Context) {
	var req redistributionRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	res, err := s.app.PreviewRedistribution(c.Request.Context(), c.Param("user"), date, time.Now())
	if err != nil {
		s.renderError(c, err)
		return
	}
	if res == nil {
		c.JSON(http.StatusOK, gin.H{"proposal": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": res})
}

type applyRequest struct {
	Date     string                 `json:"date" binding:"required"`
	Proposal *redistribution.Result `json:"proposal" binding:"required"`
}

func (s *Server) applyRedistribution(c *gin.Context) {
	var req applyRequest
	if err := c.BindJSON(&req); err != nil {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	if err := s.app.ApplyRedistribution(c.Request.Context(), c.Param("user"), date, req.Proposal); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) renderError(c *gin.Context, err error) {
	if errors.Is(err, app.ErrProfileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
