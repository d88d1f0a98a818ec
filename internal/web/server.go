// Package web serves the restaurant finder pages and its JSON API.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/hestia/internal/ranking"
	"github.com/UnknownOlympus/hestia/internal/service"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templates embed.FS

const indexTemplate = "index.html"

// Finder is the search surface the handlers depend on.
type Finder interface {
	Search(ctx context.Context, address string) service.Outcome
	Browse() []ranking.Result
}

// Server holds the gin engine and the handlers' dependencies.
type Server struct {
	log    *slog.Logger
	finder Finder
	router *gin.Engine
}

type searchForm struct {
	Location string `form:"location_input"`
}

type rankQuery struct {
	Address string `form:"address" binding:"required"`
}

// NewServer builds the router with request ID, access log and recovery middleware.
func NewServer(log *slog.Logger, finder Finder) *Server {
	server := &Server{log: log, finder: finder}

	router := gin.New()
	router.Use(RequestID(), AccessLog(log), gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templates, "templates/*.html")))

	router.GET("/", server.index)
	router.POST("/calculate_distance", server.calculateDistance)
	router.GET("/api/rank", server.rank)

	server.router = router

	return server
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, gin.H{
		"address":       "",
		"ranked":        false,
		"results":       s.finder.Browse(),
		"error_message": "",
	})
}

func (s *Server) calculateDistance(c *gin.Context) {
	var form searchForm
	if err := c.ShouldBind(&form); err != nil {
		s.log.DebugContext(c.Request.Context(), "Failed to bind search form", "error", err)
	}

	outcome := s.finder.Search(c.Request.Context(), form.Location)

	c.HTML(http.StatusOK, indexTemplate, gin.H{
		"address":       outcome.Address,
		"ranked":        outcome.Ranked,
		"results":       outcome.Results,
		"error_message": outcome.Message(),
	})
}

func (s *Server) rank(c *gin.Context) {
	var query rankQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})
		return
	}

	outcome := s.finder.Search(c.Request.Context(), query.Address)
	if outcome.Err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": outcome.Message()})
		return
	}

	c.JSON(http.StatusOK, newRankResponse(outcome))
}
