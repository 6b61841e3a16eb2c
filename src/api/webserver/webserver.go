package webserver

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/filmnight/movienight/src/api/config"
	"github.com/filmnight/movienight/src/api/omdb"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	g.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.tmpl")))
	attachRoutes(g, db, rdb, omdb.NewClient(cfg.OMDBKey, cfg.OMDBURL))
	return g
}
