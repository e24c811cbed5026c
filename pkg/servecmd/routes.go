package servecmd

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	ghErrors "github.com/ronit-raj9/portfolio-server/pkg/errors"
	"github.com/ronit-raj9/portfolio-server/pkg/github"
)

type statsParams struct {
	Year string `form:"year"`
}

func (s *Server) githubStats(ctx context.Context, params *statsParams) (any, error) {
	return s.fetcher.Fetch(ctx, github.ResolveYear(params.Year, s.now()))
}

// noCache marks every response as uncacheable, errors included.
func noCache() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Next()
	}
}

func sendError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(ghErrors.HTTPStatus(err), gin.H{"error": ghErrors.PublicMessage(err)})
}

func get(f func(context.Context) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := f(c.Request.Context())
		if err != nil {
			sendError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getP[P any](f func(context.Context, *P) (any, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params P

		err := c.ShouldBindQuery(&params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := f(c.Request.Context(), &params)
		if err != nil {
			sendError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
