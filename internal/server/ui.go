package server

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web
var webFS embed.FS

func (s *Server) registerUI() {
	static, err := fs.Sub(webFS, "web")
	if err != nil {
		panic(err)
	}
	s.engine.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", http.FS(static))
	})
	s.engine.StaticFS("/static", http.FS(static))
}
