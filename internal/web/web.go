// Package web serves the single-page client bundled into the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	"repairtrack/internal/apierror"

	"github.com/gin-gonic/gin"
)

//go:embed static
var assets embed.FS

// Register mounts the client at / and answers unknown non-API GET paths with
// index.html so client-side routes survive a reload.
func Register(r *gin.Engine) {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err) // embedded tree is fixed at build time
	}
	files := http.FS(sub)

	r.GET("/", func(c *gin.Context) { c.FileFromFS("/", files) })
	r.StaticFS("/assets", http.FS(mustSub(sub, "assets")))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, apierror.New("Not found"))
			return
		}
		c.FileFromFS("/", files)
	})
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
