package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/santoshrchetty/construction-erp/internal/config"
	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/santoshrchetty/construction-erp/internal/erp/handler"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
	"github.com/santoshrchetty/construction-erp/internal/erp/treestate"
	"github.com/santoshrchetty/construction-erp/internal/middleware"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// migrationSQL 数据库端函数和补充索引
// AutoMigrate负责表结构，这里放DDL无法表达的部分
var migrationSQL = []string{
	// EVM：PV按预算×计划工期占比近似，EV按预算×进度，AC取五类直接成本合计
	`CREATE OR REPLACE FUNCTION project_evm(pid VARCHAR)
	RETURNS TABLE (
		project_id VARCHAR,
		planned_value NUMERIC,
		earned_value NUMERIC,
		actual_cost NUMERIC,
		schedule_variance NUMERIC,
		cost_variance NUMERIC,
		spi NUMERIC,
		cpi NUMERIC,
		estimate_at_complete NUMERIC
	) AS $$
	WITH agg AS (
		SELECT
			COALESCE(SUM(a.budget_amount * CASE
				WHEN a.planned_start IS NULL OR a.planned_duration <= 0 THEN 1
				WHEN CURRENT_DATE < a.planned_start THEN 0
				ELSE LEAST(1.0, (CURRENT_DATE - a.planned_start + 1)::NUMERIC / a.planned_duration)
			END), 0) AS pv,
			COALESCE(SUM(a.budget_amount * a.progress / 100.0), 0) AS ev,
			COALESCE(SUM(a.labor_cost + a.material_cost + a.equipment_cost + a.subcontract_cost + a.expense_cost), 0) AS ac,
			COALESCE(SUM(a.budget_amount), 0) AS bac
		FROM activities a WHERE a.project_id = pid
	)
	SELECT
		pid,
		pv, ev, ac,
		ev - pv,
		ev - ac,
		CASE WHEN pv > 0 THEN ROUND(ev / pv, 4) ELSE 0 END,
		CASE WHEN ac > 0 THEN ROUND(ev / ac, 4) ELSE 0 END,
		CASE WHEN ac > 0 AND ev > 0 THEN ROUND(bac / (ev / ac), 2) ELSE bac END
	FROM agg
	$$ LANGUAGE SQL STABLE`,

	// CTC：已承诺成本取未关闭采购订单金额，完工尚需 = 预算 - 挣值口径的已赚预算
	`CREATE OR REPLACE FUNCTION project_ctc(pid VARCHAR)
	RETURNS TABLE (
		project_id VARCHAR,
		budget_total NUMERIC,
		committed_cost NUMERIC,
		actual_cost NUMERIC,
		cost_to_complete NUMERIC,
		forecast_at_end NUMERIC,
		budget_variance NUMERIC
	) AS $$
	WITH act AS (
		SELECT
			COALESCE(SUM(a.budget_amount), 0) AS bac,
			COALESCE(SUM(a.budget_amount * a.progress / 100.0), 0) AS earned,
			COALESCE(SUM(a.labor_cost + a.material_cost + a.equipment_cost + a.subcontract_cost + a.expense_cost), 0) AS ac
		FROM activities a WHERE a.project_id = pid
	), po AS (
		SELECT COALESCE(SUM(p.total_amount), 0) AS committed
		FROM purchase_orders p
		WHERE p.project_id = pid AND p.status IN ('approved', 'sent', 'partial')
	)
	SELECT
		pid,
		act.bac,
		po.committed,
		act.ac,
		GREATEST(act.bac - act.earned, 0),
		act.ac + GREATEST(act.bac - act.earned, 0),
		act.bac - (act.ac + GREATEST(act.bac - act.earned, 0))
	FROM act, po
	$$ LANGUAGE SQL STABLE`,

	// 毛利：合同额取项目预算，成本预测复用CTC口径
	`CREATE OR REPLACE FUNCTION project_margin(pid VARCHAR)
	RETURNS TABLE (
		project_id VARCHAR,
		contract_value NUMERIC,
		cost_incurred NUMERIC,
		cost_forecast NUMERIC,
		margin_amount NUMERIC,
		margin_percent NUMERIC
	) AS $$
	WITH c AS (
		SELECT * FROM project_ctc(pid)
	), p AS (
		SELECT COALESCE(budget, 0) AS contract FROM projects WHERE id = pid
	)
	SELECT
		pid,
		p.contract,
		c.actual_cost,
		c.forecast_at_end,
		p.contract - c.forecast_at_end,
		CASE WHEN p.contract > 0 THEN ROUND((p.contract - c.forecast_at_end) / p.contract * 100, 2) ELSE 0 END
	FROM c, p
	$$ LANGUAGE SQL STABLE`,

	`CREATE INDEX IF NOT EXISTS idx_activity_deps_predecessor ON activity_dependencies(predecessor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_txns_activity ON stock_transactions(activity_id)`,
}

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting construction-erp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// 建表
	if err := db.AutoMigrate(
		&entity.Project{},
		&entity.WBSNode{},
		&entity.Activity{},
		&entity.ActivityDependency{},
		&entity.Task{},
		&entity.Supplier{},
		&entity.PurchaseOrder{},
		&entity.POItem{},
		&entity.StoreItem{},
		&entity.StockTransaction{},
		&entity.TimesheetEntry{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// 数据库函数与补充索引
	for _, stmt := range migrationSQL {
		if err := db.Exec(stmt).Error; err != nil {
			zapLogger.Warn("Migration statement warning", zap.Error(err))
		}
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos)
	stateStore := treestate.NewStore(rdb)
	handlers := handler.NewHandlers(services, stateStore)

	// 夜间任务：项目进度重算 + 节点成本汇总
	c := cron.New()
	if _, err := c.AddFunc("0 2 * * *", func() {
		ctx := context.Background()
		if err := services.Project.RecalculateAllProgress(ctx); err != nil {
			zapLogger.Error("Nightly progress rollup failed", zap.Error(err))
		}
		projects, err := repos.Project.ListActive(ctx)
		if err != nil {
			zapLogger.Error("Nightly cost rollup failed to list projects", zap.Error(err))
			return
		}
		for _, p := range projects {
			if err := services.WBS.RecalculateNodeCost(ctx, p.ID); err != nil {
				zapLogger.Error("Nightly cost rollup failed",
					zap.String("project", p.Code), zap.Error(err))
			}
		}
		zapLogger.Info("Nightly rollup done", zap.Int("projects", len(projects)))
	}); err != nil {
		zapLogger.Fatal("Failed to schedule nightly rollup", zap.Error(err))
	}
	c.Start()
	defer c.Stop()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/sse"})))

	// 注册路由
	registerRoutes(router, handlers, cfg, db, rdb)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true, // 编码撞唯一索引要映射成 ErrDuplicatedKey
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, db *gorm.DB, rdb *redis.Client) {
	// 健康检查：live只看进程，ready探依赖
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": Version})
	})
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(503, gin.H{"status": "unavailable", "component": "database"})
			return
		}
		if err := rdb.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(503, gin.H{"status": "unavailable", "component": "redis"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{"version": Version, "build_time": BuildTime})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// SSE走query参数带token，不走Authorization头
	sseGroup := r.Group("/api/v1/sse")
	sseGroup.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		sseGroup.GET("/events", h.SSE.Stream)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWT.Secret))
	{
		// 项目
		api.GET("/projects", h.Project.ListProjects)
		api.POST("/projects", h.Project.CreateProject)
		api.GET("/projects/:id", h.Project.GetProject)
		api.PUT("/projects/:id", h.Project.UpdateProject)
		api.DELETE("/projects/:id", middleware.RequirePermission("project:delete"), h.Project.DeleteProject)
		api.POST("/projects/:id/recalculate", h.Project.RecalculateProgress)

		// 项目工作日历
		api.GET("/projects/:id/calendar/count", h.Project.CountWorkingDays)
		api.GET("/projects/:id/calendar/end-date", h.Project.ProjectEndDate)

		// 项目树与WBS
		api.GET("/projects/:id/tree", h.WBS.GetTree)
		api.POST("/projects/:id/wbs", h.WBS.CreateNode)
		api.POST("/projects/:id/wbs/recalculate-cost", h.WBS.RecalculateCost)
		api.GET("/wbs/:id", h.WBS.GetNode)
		api.PUT("/wbs/:id", h.WBS.UpdateNode)
		api.GET("/wbs/:id/delete-impact", h.WBS.PreviewDelete)
		api.DELETE("/wbs/:id", h.WBS.DeleteNode)

		// 树UI状态
		api.GET("/projects/:id/tree-state", h.TreeState.GetState)
		api.DELETE("/projects/:id/tree-state", h.TreeState.Reset)
		api.POST("/projects/:id/tree-state/nodes/:nodeId/toggle", h.TreeState.ToggleNode)
		api.POST("/projects/:id/tree-state/nodes/:nodeId/toggle-activities", h.TreeState.ToggleActivities)
		api.POST("/projects/:id/tree-state/activities/:activityId/toggle-tasks", h.TreeState.ToggleTasks)
		api.PUT("/projects/:id/tree-state/selection", h.TreeState.Select)
		api.DELETE("/projects/:id/tree-state/selection", h.TreeState.ClearSelection)

		// 活动
		api.GET("/wbs/:id/activities", h.Activity.ListByNode)
		api.POST("/wbs/:id/activities", h.Activity.CreateActivity)
		api.GET("/activities/:id", h.Activity.GetActivity)
		api.PUT("/activities/:id", h.Activity.UpdateActivity)
		api.DELETE("/activities/:id", h.Activity.DeleteActivity)
		api.GET("/activities/:id/schedule", h.Activity.Schedule)

		// 活动依赖
		api.POST("/activities/:id/dependencies", h.Activity.AddDependency)
		api.DELETE("/activities/:id/dependencies/:depId", h.Activity.RemoveDependency)
		api.GET("/activities/:id/predecessors", h.Activity.ListPredecessors)
		api.GET("/activities/:id/successors", h.Activity.ListSuccessors)

		// 任务
		api.GET("/activities/:id/tasks", h.Task.ListByActivity)
		api.POST("/activities/:id/tasks", h.Task.CreateTask)
		api.GET("/tasks/:id", h.Task.GetTask)
		api.PUT("/tasks/:id", h.Task.UpdateTask)
		api.PUT("/tasks/:id/progress", h.Task.UpdateProgress)
		api.DELETE("/tasks/:id", h.Task.DeleteTask)
		api.GET("/projects/:id/tasks/overdue", h.Task.ListOverdue)

		// 供应商与采购
		api.GET("/suppliers", h.Procurement.ListSuppliers)
		api.POST("/suppliers", h.Procurement.CreateSupplier)
		api.GET("/suppliers/:id", h.Procurement.GetSupplier)
		api.PUT("/suppliers/:id", h.Procurement.UpdateSupplier)
		api.GET("/purchase-orders", h.Procurement.ListPOs)
		api.POST("/purchase-orders", h.Procurement.CreatePO)
		api.GET("/purchase-orders/:id", h.Procurement.GetPO)
		api.PUT("/purchase-orders/:id/status", middleware.RequirePermission("po:manage"), h.Procurement.SetPOStatus)
		api.POST("/purchase-orders/:id/receive", middleware.RequirePermission("po:manage"), h.Procurement.ReceivePO)

		// 库存
		api.GET("/store-items", h.Inventory.ListItems)
		api.POST("/store-items", h.Inventory.CreateItem)
		api.POST("/store-items/issue", h.Inventory.Issue)
		api.POST("/store-items/adjust", h.Inventory.Adjust)
		api.GET("/store-items/:id", h.Inventory.GetItem)
		api.GET("/store-items/:id/transactions", h.Inventory.ListTransactions)

		// 工时
		api.GET("/timesheets", h.Timesheet.ListEntries)
		api.POST("/timesheets", h.Timesheet.SubmitEntry)
		api.GET("/timesheets/:id", h.Timesheet.GetEntry)
		api.POST("/timesheets/:id/approve", middleware.RequirePermission("timesheet:approve"), h.Timesheet.Approve)
		api.POST("/timesheets/:id/reject", middleware.RequirePermission("timesheet:approve"), h.Timesheet.Reject)
		api.GET("/activities/:id/hours", h.Timesheet.ActivityHours)
		api.GET("/activities/:id/costs", h.Analytics.ActivityCosts)

		// 项目分析
		api.GET("/projects/:id/analytics/evm", h.Analytics.EVM)
		api.GET("/projects/:id/analytics/ctc", h.Analytics.CTC)
		api.GET("/projects/:id/analytics/margin", h.Analytics.Margin)
	}
}
