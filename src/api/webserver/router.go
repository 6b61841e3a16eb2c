package webserver

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/filmnight/movienight/src/api/data"
	"github.com/filmnight/movienight/src/api/listings"
)

func attachRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, fetcher listings.Fetcher) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	movH := NewMovies(data.NewStore(db), rdb, fetcher)

	r.GET("/", movH.Index)
	r.GET("/movies", movH.List)
	r.POST("/movies", movH.Add)
	r.POST("/movies/watch", movH.Watch)
	r.POST("/movies/veto", movH.Veto)
}
