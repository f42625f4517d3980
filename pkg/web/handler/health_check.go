package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type HealthCheckHandler struct {
	db *gorm.DB
}

func NewHealthCheckHandler(db *gorm.DB) *HealthCheckHandler {
	return &HealthCheckHandler{db: db}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

// 启用关键组件标签判断
type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	IsCore  bool          `json:"is_core"` // 关键组件标识
	Latency time.Duration `json:"latency,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var startupTime = time.Now()

// AdvancedHealthCheck 增强的健康检查接口
func (h *HealthCheckHandler) AdvancedHealthCheck(c context.Context, ctx *app.RequestContext) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(startupTime).Round(time.Second).String(),
		Components: []ComponentStatus{
			h.checkDatabase(c),
		},
	}

	if hasCriticalErrors(status.Components) {
		status.Status = "degraded"
		ctx.JSON(503, status)
		return
	}

	ctx.JSON(200, status)
}

func (h *HealthCheckHandler) checkDatabase(c context.Context) ComponentStatus {
	comp := ComponentStatus{Name: "database", Status: "ok", IsCore: true}
	if h.db == nil {
		comp.Status = "critical"
		comp.Error = "not configured"
		return comp
	}

	pingCtx, cancel := context.WithTimeout(c, pingTimeout)
	defer cancel()

	start := time.Now()
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(pingCtx)
	}
	comp.Latency = time.Since(start)
	if err != nil {
		comp.Status = "down"
		comp.Error = err.Error()
	}
	return comp
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		// 核心组件状态异常或任意组件发生严重错误
		if (comp.IsCore && comp.Status != "ok") || comp.Status == "critical" {
			return true
		}
	}
	return false
}
