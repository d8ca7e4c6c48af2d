package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/verity-id/verity/service"
)

// SetupRouter sets up the Gin router. externalURL overrides the serving
// host used in callback URLs; leave empty to derive it per request.
func SetupRouter(authService *service.AuthService, log zerolog.Logger, externalURL string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	handlers := NewAuthHandlers(authService, externalURL)

	router.GET("/sign-in", handlers.SignIn)
	router.GET("/sign-in/deeplink", handlers.DeepLink)
	router.GET("/sign-in/qr", handlers.QRCode)
	router.GET("/status", handlers.Status)
	router.POST("/callback", handlers.Callback)

	return router
}
