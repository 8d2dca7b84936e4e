package internal

import (
	"net/http"

	"gxd/internal/controllers"
	"gxd/internal/providers"
	"gxd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/register", http.HandlerFunc(apiController.Register))
	routers.Post("/login", http.HandlerFunc(apiController.Login))
	routers.Post("/logout", http.HandlerFunc(apiController.Logout))
	routers.Get("/session", http.HandlerFunc(apiController.Session))
	routers.Get("/catalog", http.HandlerFunc(apiController.GetCatalog))
	routers.Post("/send", http.HandlerFunc(apiController.SendGift))
	routers.Post("/open", http.HandlerFunc(apiController.OpenGift))
	routers.Post("/earn", http.HandlerFunc(apiController.Earn))
	routers.Get("/inbox", http.HandlerFunc(apiController.GetInbox))
	routers.Get("/collection", http.HandlerFunc(apiController.GetCollection))
	if conf.Exchange.DevMode {
		routers.Post("/unlock-all", http.HandlerFunc(apiController.UnlockAll))
	}
	return routers
}
