package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterSetup(t *testing.T) {
	t.Run("mounts registrars under the default version", func(t *testing.T) {
		engine := gin.New()
		billing := NewDomainGroup("billing", "/billing")
		billing.GET("/invoices", func(c *gin.Context) {
			c.String(http.StatusOK, "invoices")
		})

		NewRouter(engine).Register(billing).Setup()

		w := serve(engine, http.MethodGet, "/api/v1/billing/invoices")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "invoices", w.Body.String())
	})

	t.Run("WithAPIVersion changes the prefix", func(t *testing.T) {
		engine := gin.New()
		system := NewDomainGroup("system", "/system")
		system.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		NewRouter(engine, WithAPIVersion("v2")).Register(system).Setup()

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/v2/system/ping").Code)
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/system/ping").Code)
	})

	t.Run("mounts several domains side by side", func(t *testing.T) {
		engine := gin.New()
		billing := NewDomainGroup("billing", "/billing")
		billing.GET("/orders", func(c *gin.Context) { c.String(http.StatusOK, "orders") })
		partner := NewDomainGroup("partner", "/partner")
		partner.GET("/organizations", func(c *gin.Context) { c.String(http.StatusOK, "organizations") })

		NewRouter(engine).Register(billing).Register(partner).Setup()

		assert.Equal(t, "orders", serve(engine, http.MethodGet, "/api/v1/billing/orders").Body.String())
		assert.Equal(t, "organizations", serve(engine, http.MethodGet, "/api/v1/partner/organizations").Body.String())
	})
}

func TestDomainGroupVerbs(t *testing.T) {
	engine := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	g := NewDomainGroup("billing", "/billing")
	g.GET("/orders", ok).
		POST("/orders", ok).
		PUT("/orders/:id", ok).
		PATCH("/orders/:id", ok).
		DELETE("/orders/:id", ok)

	g.RegisterRoutes(engine.Group("/api/v1"))

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/billing/orders"},
		{http.MethodPost, "/api/v1/billing/orders"},
		{http.MethodPut, "/api/v1/billing/orders/42"},
		{http.MethodPatch, "/api/v1/billing/orders/42"},
		{http.MethodDelete, "/api/v1/billing/orders/42"},
	} {
		assert.Equal(t, http.StatusOK, serve(engine, tc.method, tc.path).Code,
			"%s %s not routed", tc.method, tc.path)
	}
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("billing", "/billing")
	g.Use(func(c *gin.Context) {
		c.Header("X-Domain", g.Name())
		c.Next()
	})
	g.GET("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/billing/orders")
	assert.Equal(t, "billing", w.Header().Get("X-Domain"))
}

func TestDomainGroupSubgroups(t *testing.T) {
	engine := gin.New()
	billing := NewDomainGroup("billing", "/billing")

	orders := billing.Group("orders", "/orders")
	orders.GET("", func(c *gin.Context) { c.String(http.StatusOK, "order list") })
	invoices := billing.Group("invoices", "/invoices")
	invoices.GET("/:id/payments", func(c *gin.Context) { c.String(http.StatusOK, "payments") })

	billing.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, "order list", serve(engine, http.MethodGet, "/api/v1/billing/orders").Body.String())
	assert.Equal(t, "payments", serve(engine, http.MethodGet, "/api/v1/billing/invoices/42/payments").Body.String())
	assert.Equal(t, "orders", orders.Name())
	assert.Equal(t, "/invoices", invoices.Prefix())
}
