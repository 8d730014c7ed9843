package http

import (
	"ShopRec/internal/app"
	jwtMiddleware "ShopRec/internal/middleware/jwt"
	"ShopRec/internal/middleware/metrics"
	catalogHandler "ShopRec/internal/modules/catalog/interface/http"
	interactionHandler "ShopRec/internal/modules/interaction/interface/http"
	recMCP "ShopRec/internal/modules/recommend/infrastructure/mcp"
	recHandler "ShopRec/internal/modules/recommend/interface/http"
	userHandler "ShopRec/internal/modules/user/interface/http"
	"ShopRec/pkg/back"
	"ShopRec/pkg/ssl"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
)

// NewRouter 注册全部路由
func NewRouter(c *app.Container) *gin.Engine {
	conf := c.Conf
	GE := gin.New()
	GE.Use(gin.Recovery(), metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	if conf.MainConfig.TLS {
		GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	userH := userHandler.NewUserHandler(c.Users)
	productH := catalogHandler.NewProductHandler(c.Catalog)
	interactionH := interactionHandler.NewInteractionHandler(c.Interactions)
	cartH := interactionHandler.NewCartHandler(c.Interactions)
	recH := recHandler.NewRecommendHandler(c.Recommend)
	wsH := recHandler.NewWsHandler(c.Hub, c.Recommend)

	GE.GET("/healthz", func(ctx *gin.Context) {
		back.Success(ctx, gin.H{"status": "ok"})
	})
	GE.GET("/metrics", metrics.Handler())
	GE.GET("/wss", wsH.Connect)

	// 原始接口，不鉴权，user_id 由请求体传入
	GE.POST("/add_user", userH.AddUser)
	GE.POST("/add_product", productH.AddProduct)
	GE.POST("/view_product", interactionH.ViewProduct)
	GE.POST("/add_to_cart", interactionH.AddToCart)
	GE.POST("/search_product", interactionH.SearchProduct)
	GE.GET("/top_picks", recH.TopPicks)

	GE.POST("/auth/register", userH.Register)
	GE.POST("/auth/login", userH.Login)
	GE.POST("/auth/logout", userH.Logout)

	optional := GE.Group("/")
	optional.Use(jwtMiddleware.Optional())
	optional.GET("/products", productH.ListProducts)
	optional.GET("/products/categories", productH.ListCategories)
	optional.GET("/products/search", interactionH.SearchQuery)
	optional.GET("/products/recommendations", recH.Recommendations)
	optional.GET("/products/popular", recH.Popular)
	optional.GET("/products/:id", productH.GetProduct)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.GET("/auth/profile", userH.Profile)
	authed.GET("/cart", cartH.GetCart)
	authed.POST("/cart/add", cartH.Add)
	authed.PUT("/cart/update", cartH.Update)
	authed.DELETE("/cart/remove", cartH.Remove)
	authed.GET("/user/recently-viewed", interactionH.RecentlyViewed)
	authed.POST("/user/recently-viewed", interactionH.AddRecentlyViewed)

	if conf.MCPConfig.Enabled {
		mcpServer := recMCP.NewRecommendMCPServer(conf.MCPConfig.Name, conf.MCPConfig.Version, c.Recommend)
		GE.Any("/mcp", gin.WrapH(server.NewStreamableHTTPServer(mcpServer)))
	}
	return GE
}
