package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/kahenya/sales-crm/auth"
	"github.com/kahenya/sales-crm/handlers"
	"github.com/kahenya/sales-crm/middleware"
	"github.com/kahenya/sales-crm/service"
	"github.com/kahenya/sales-crm/store"
)

// SetupRouter builds the full API. rdb and oidcVerifier may be nil; caching,
// rate limiting and federated login are then disabled.
func SetupRouter(db *gorm.DB, rdb *redis.Client, jwtSecret string, oidcVerifier *auth.OIDCVerifier) *gin.Engine {
	users := store.NewUserStore(db)
	products := store.NewProductStore(db)
	clients := store.NewClientStore(db)
	orders := store.NewOrderStore(db)
	reports := store.NewReportStore(db)
	orderService := service.NewOrderService(db)

	uh := handlers.NewUserHandler(users, jwtSecret)
	ph := handlers.NewProductHandler(products, rdb)
	ch := handlers.NewClientHandler(clients)
	oh := handlers.NewOrderHandler(orders, orderService, rdb)
	rh := handlers.NewReportHandler(reports)

	r := gin.Default()
	r.Use(middleware.Identity(jwtSecret, oidcVerifier, users))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/register", middleware.RateLimit(rdb), uh.Register)
	r.POST("/login", middleware.RateLimit(rdb), uh.Login)

	r.GET("/products", ph.List)
	r.GET("/products/search", ph.Search)
	r.GET("/products/:id", ph.Get)
	r.POST("/products", ph.Create)
	r.PUT("/products/:id", ph.Update)
	r.DELETE("/products/:id", ph.Delete)

	r.GET("/clients", ch.List)
	r.GET("/orders", oh.List)
	r.GET("/reports/top-clients", rh.TopClients)
	r.GET("/reports/top-sellers", rh.TopSellers)

	authed := r.Group("/", middleware.RequireIdentity)
	{
		authed.GET("/me", uh.Me)

		authed.GET("/clients/mine", ch.ListMine)
		authed.GET("/clients/:id", ch.Get)
		authed.POST("/clients", ch.Create)
		authed.PUT("/clients/:id", ch.Update)
		authed.DELETE("/clients/:id", ch.Delete)

		authed.GET("/orders/mine", oh.ListMine)
		authed.GET("/orders/mine/status/:status", oh.ListMineByStatus)
		authed.GET("/orders/:id", oh.Get)
		authed.POST("/orders", oh.Place)
		authed.PUT("/orders/:id", oh.Revise)
		authed.DELETE("/orders/:id", oh.Cancel)
	}

	return r
}
