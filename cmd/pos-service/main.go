// Command pos-service is the REST backend of the café POS: menu, tables and
// orders on Postgres, with changes published to RabbitMQ when configured.
//
// @title        Café POS API
// @version      1.0
// @description  Menu, tables and table orders for the café point of sale.
// @BasePath     /api
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	_ "github.com/MikeMC777/cafe-pos/docs"
	"github.com/MikeMC777/cafe-pos/internal/catalog"
	"github.com/MikeMC777/cafe-pos/internal/config"
	"github.com/MikeMC777/cafe-pos/internal/database"
	"github.com/MikeMC777/cafe-pos/internal/events"
	"github.com/MikeMC777/cafe-pos/internal/httpx"
	"github.com/MikeMC777/cafe-pos/internal/logging"
	"github.com/MikeMC777/cafe-pos/internal/order"
	"github.com/MikeMC777/cafe-pos/internal/table"
)

type deps struct {
	menu   catalog.Repository
	tables table.Repository
	orders orderAPI
	pub    events.Publisher
	log    *zap.Logger
	// ready reports backing service health for /healthz; nil means always ready.
	ready func(ctx context.Context) error
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(d.log))

	r.GET("/healthz", func(c *gin.Context) {
		if d.ready != nil {
			if err := d.ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, catalog.HTTPError{Error: err.Error()})
				return
			}
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.GET("/menu", listMenuHandler(d.menu))
	api.POST("/menu", createMenuItemHandler(d.menu))
	api.PUT("/menu/:id", updateMenuItemHandler(d.menu))
	api.DELETE("/menu/:id", deleteMenuItemHandler(d.menu))

	api.GET("/tables", listTablesHandler(d.tables))
	api.POST("/tables", createTableHandler(d.tables, d.pub, d.log))
	api.PATCH("/tables/:id/availability", setTableAvailabilityHandler(d.tables, d.pub, d.log))

	api.GET("/orders", listOrdersHandler(d.orders))
	api.POST("/orders", createOrderHandler(d.orders))
	api.GET("/orders/table/:tableId/active", activeOrderHandler(d.orders))
	api.GET("/orders/:id", getOrderHandler(d.orders))
	api.PATCH("/orders/:id", updateOrderHandler(d.orders))
	api.PATCH("/orders/:id/pay", payOrderHandler(d.orders))
	api.POST("/orders/:id/cancel", cancelOrderHandler(d.orders))
	return r
}

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	cfg.Log(logger)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var pub events.Publisher = events.Nop{}
	var mq *events.Client
	if cfg.RabbitMQURL != "" {
		mq, err = events.Dial(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Fatal("connect rabbitmq", zap.Error(err))
		}
		defer mq.Close()
		pub = mq
	}

	menu := catalog.NewPGRepo(pool)
	d := deps{
		menu:   menu,
		tables: table.NewPGRepo(pool),
		orders: order.NewService(order.NewPGRepo(pool), menu, pub, logger),
		pub:    pub,
		log:    logger,
		ready: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			if mq != nil {
				return mq.Ping()
			}
			return nil
		},
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}
	gs := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	go func() {
		if err := gs.Serve(lis); err != nil {
			logger.Error("grpc serve", zap.Error(err))
		}
	}()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: newRouter(d), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http serve", zap.Error(err))
		}
	}()
	logger.Info("pos-service listening", zap.String("http", cfg.HTTPAddr), zap.String("grpc", cfg.GRPCAddr))

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	gs.GracefulStop()
}
