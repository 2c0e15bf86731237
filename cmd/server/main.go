// HotelPlan 前台周排班引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hotelplan/hotelplan/internal/config"
	"github.com/hotelplan/hotelplan/internal/database"
	"github.com/hotelplan/hotelplan/internal/handler"
	"github.com/hotelplan/hotelplan/internal/metrics"
	"github.com/hotelplan/hotelplan/internal/middleware"
	"github.com/hotelplan/hotelplan/internal/property"
	"github.com/hotelplan/hotelplan/internal/repository"
	"github.com/hotelplan/hotelplan/internal/security"
	"github.com/hotelplan/hotelplan/pkg/logger"
	"github.com/hotelplan/hotelplan/pkg/planner/solver"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	// 打印版本信息
	fmt.Printf("HotelPlan 前台周排班引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 数据库是可选依赖：未接入时排班端点照常工作，员工管理端点不可用
	var staffRepo *repository.StaffRepository
	var scheduleRepo *repository.ScheduleRepository
	if os.Getenv("DB_ENABLED") == "true" {
		db, err := database.New(&cfg.Database)
		if err != nil {
			logger.Error().Err(err).Msg("数据库连接失败")
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(context.Background()); err != nil {
			logger.Error().Err(err).Msg("初始化表结构失败")
			os.Exit(1)
		}
		staffRepo = repository.NewStaffRepository(db)
		scheduleRepo = repository.NewScheduleRepository(db)
	}

	solverOpts := solver.Options{
		TimeBudget: cfg.Solver.TimeBudget,
		MaxNodes:   cfg.Solver.MaxNodes,
		Workers:    cfg.Solver.Workers,
	}

	// 创建处理器
	planningHandler := handler.NewPlanningHandler(solverOpts, scheduleRepo)
	statsHandler := handler.NewStatsHandler()
	rulesHandler := handler.NewRulesHandler()
	rosterHandler := handler.NewRosterHandler(staffRepo)
	swapHandler := handler.NewSwapHandler()

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"hotelplan"}`))
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "HotelPlan 前台周排班引擎 API v1",
			"endpoints": {
				"planning": {
					"requirements": "POST /api/v1/planning/requirements",
					"feasibility": "POST /api/v1/planning/feasibility",
					"generate": "POST /api/v1/planning/generate",
					"validate": "POST /api/v1/planning/validate",
					"schedules": "GET /api/v1/planning/schedules"
				},
				"swaps": {
					"evaluate": "POST /api/v1/swaps/evaluate",
					"recommend": "POST /api/v1/swaps/recommend"
				},
				"rules": {
					"library": "GET /api/v1/rules/library"
				},
				"stats": {
					"workload": "POST /api/v1/stats/workload",
					"coverage": "POST /api/v1/stats/coverage"
				},
				"roster": {
					"sample": "GET /api/v1/roster/sample",
					"staff": "GET|POST /api/v1/roster/staff",
					"staff_by_id": "GET|PUT|DELETE /api/v1/roster/staff/{id}"
				}
			}
		}`))
	})

	// 周排班 API
	mux.HandleFunc("/api/v1/planning/requirements", planningHandler.Requirements)
	mux.HandleFunc("/api/v1/planning/feasibility", planningHandler.Feasibility)
	mux.HandleFunc("/api/v1/planning/generate", planningHandler.Generate)
	mux.HandleFunc("/api/v1/planning/validate", planningHandler.Validate)
	mux.HandleFunc("/api/v1/planning/schedules", planningHandler.Schedules)

	// 换班 API
	mux.HandleFunc("/api/v1/swaps/evaluate", swapHandler.Evaluate)
	mux.HandleFunc("/api/v1/swaps/recommend", swapHandler.Recommend)

	// 规则目录 API
	mux.HandleFunc("/api/v1/rules/library", rulesHandler.Library)

	// 统计分析 API
	mux.HandleFunc("/api/v1/stats/workload", statsHandler.Workload)
	mux.HandleFunc("/api/v1/stats/coverage", statsHandler.Coverage)

	// 员工名单 API
	mux.HandleFunc("/api/v1/roster/sample", rosterHandler.Sample)
	mux.HandleFunc("/api/v1/roster/staff", rosterHandler.Staff)
	mux.HandleFunc("/api/v1/roster/staff/", rosterHandler.StaffByID)

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> rateLimit -> cors -> logging -> [auth] -> handler
	var root http.Handler = mux
	if os.Getenv("API_AUTH_ENABLED") == "true" {
		root = buildAuthMiddleware(cfg)(root)
	}
	root = requestIDMiddleware(rateLimitMiddleware(corsMiddleware(loggingMiddleware(root))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Str("api_docs", fmt.Sprintf("http://localhost:%d/api/v1/", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// buildAuthMiddleware 构建API密钥认证中间件
// 启动时生成一把默认密钥并打印，供开发联调使用
func buildAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	keyManager := security.NewAPIKeyManager()
	propertyManager := property.NewPropertyManager()

	defaultProperty := property.CreateDefaultProperty()
	if err := propertyManager.Register(defaultProperty); err != nil {
		logger.Warn().Err(err).Msg("注册默认酒店失败")
	}

	key, err := keyManager.GenerateKey(defaultProperty.Code, "默认密钥", []string{"*"}, nil)
	if err == nil {
		logger.Info().Str("api_key", key.Key).Msg("已生成默认API密钥")
	}

	return middleware.AuthMiddleware(&middleware.AuthConfig{
		APIKeyManager:   keyManager,
		PropertyManager: propertyManager,
		RateLimiter:     security.NewRateLimiter(cfg.API.RateLimit, time.Minute),
		SkipPaths:       []string{"/health", "/version", cfg.Metrics.Path},
		EnableRateLimit: true,
	})
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RateLimiter 简单的令牌桶限流器
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter 创建限流器
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	return &RateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

var globalRateLimiter = NewRateLimiter(100) // 默认 100 QPS

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
