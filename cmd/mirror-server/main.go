package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"lolapi/pkg/models"
)

func main() {
	var (
		addr     = flag.String("addr", ":9000", "listen address")
		dataPath = flag.String("data", "data/mirror.json", "mirror JSON written by export-mirror")
	)
	flag.Parse()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, *dataPath)

	log.Printf("mirror-server listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, router))
}

// registerRoutes serves dataPath at GET /champions. The file is re-read on
// every request so a fresh export shows up without a restart.
func registerRoutes(router gin.IRoutes, dataPath string) {
	router.GET("/champions", func(c *gin.Context) {
		b, err := os.ReadFile(dataPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read mirror data: " + err.Error()})
			return
		}

		var champs []models.ChampionCanonical
		if err := json.Unmarshal(b, &champs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "mirror data is not a champion list: " + err.Error()})
			return
		}

		c.Data(http.StatusOK, "application/json", b)
	})
}
