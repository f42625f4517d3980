package middleware

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/cors"

	"social-blog/pkg/common/config"
	"social-blog/pkg/web/render"
)

// LoggerMiddleware 结构化的请求日志记录
func LoggerMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c) // 放行到后续处理器
		latency := time.Since(start)

		if len(ctx.Errors) > 0 {
			hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | errors=%v",
				ctx.Response.StatusCode(),
				latency,
				ctx.ClientIP(),
				ctx.Method(),
				ctx.Path(),
				ctx.Errors.Errors(),
			)
			return
		}
		hlog.CtxInfof(c, "| %3d | %13v | %15s | %-7s | %s | UA=%s",
			ctx.Response.StatusCode(),
			latency,
			ctx.ClientIP(),
			ctx.Method(),
			ctx.Path(),
			ctx.GetHeader("User-Agent"),
		)
	}
}

/*
	启动时指定环境变量
	export APP_ENV=production
	go run ./cmd/web
*/

// RecoveryMiddleware 增强型异常捕获（带配置依赖版本）
func RecoveryMiddleware(cfg *config.Config) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				// 获取调用堆栈
				stack := string(debug.Stack())

				hlog.CtxErrorf(c, "[PANIC RECOVERED] %v\n%s", err, stack)

				// 生产环境处理
				if cfg.IsProd() {
					render.Message(ctx, 500, "internal server error")
				} else { // 开发环境显示详细错误
					ctx.AbortWithStatusJSON(500, map[string]interface{}{
						"code":    500,
						"message": "internal server error",
						"error":   fmt.Sprintf("%v", err),
						"stack":   strings.Split(stack, "\n"),
					})
				}
			}
		}()
		ctx.Next(c)
	}
}

// CORSMiddleware 安全的跨域配置
func CORSMiddleware(corsConfig config.CORSConfig) app.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     corsConfig.AllowOrigins,
		AllowMethods:     corsConfig.AllowMethods,
		AllowHeaders:     corsConfig.AllowHeaders,
		ExposeHeaders:    corsConfig.ExposeHeaders,
		AllowCredentials: corsConfig.AllowCredentials,
		MaxAge:           corsConfig.MaxAge,
	}
	// 动态校验来源
	if len(corsConfig.TrustedDomains) > 0 {
		cfg.AllowOriginFunc = func(origin string) bool {
			for _, domain := range corsConfig.TrustedDomains {
				if strings.HasSuffix(origin, domain) {
					return true
				}
			}
			return false
		}
	}
	return cors.New(cfg)
}

// TimeoutMiddleware 为请求上下文设置截止时间，数据库与图床调用随之取消
func TimeoutMiddleware(seconds int) app.HandlerFunc {
	if seconds <= 0 {
		return func(c context.Context, ctx *app.RequestContext) {
			ctx.Next(c)
		}
	}
	timeout := time.Duration(seconds) * time.Second

	return func(c context.Context, ctx *app.RequestContext) {
		timeoutCtx, cancel := context.WithTimeout(c, timeout)
		defer cancel()

		ctx.Next(timeoutCtx)

		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			hlog.CtxWarnf(c, "request timeout path=%s", ctx.Path())
		}
	}
}

// RateLimitMiddleware 令牌桶算法限流，rate<=0 时不限流
func RateLimitMiddleware(rate int, interval time.Duration) app.HandlerFunc {
	if rate <= 0 || interval <= 0 {
		return func(c context.Context, ctx *app.RequestContext) {
			ctx.Next(c)
		}
	}
	limiter := NewTokenBucket(rate, interval)

	return func(c context.Context, ctx *app.RequestContext) {
		if !limiter.Allow() {
			hlog.CtxInfof(c, "[RATE LIMIT] path=%s", ctx.Path())
			render.Message(ctx, 429, "too many requests")
			return
		}
		ctx.Next(c)
	}
}

// TokenBucket 令牌桶实现，每个 interval 补充一个令牌，初始为满
type TokenBucket struct {
	mu       sync.Mutex
	capacity int
	tokens   int
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

func NewTokenBucket(capacity int, interval time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity: capacity,
		tokens:   capacity,
		interval: interval,
		last:     time.Now(),
		now:      time.Now,
	}
}

func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// 按流逝时间补充令牌
	now := tb.now()
	if elapsed := now.Sub(tb.last); elapsed >= tb.interval {
		refill := int(elapsed / tb.interval)
		tb.tokens = min(tb.capacity, tb.tokens+refill)
		tb.last = tb.last.Add(time.Duration(refill) * tb.interval)
	}

	if tb.tokens == 0 {
		return false
	}
	tb.tokens--
	return true
}

// SecurityCheckMiddleware 全局安全校验中间件
func SecurityCheckMiddleware(cfg config.SecurityConfig) app.HandlerFunc {
	// 预编译恶意字符正则
	xssRegex := regexp.MustCompile(`(?i)<script.*?>|</script>|alert\(|onerror=`)

	allowed := make(map[string]bool, len(cfg.AllowedMethods))
	for _, m := range cfg.AllowedMethods {
		allowed[strings.ToUpper(m)] = true
	}
	hosts := make(map[string]bool, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		hosts[strings.ToLower(h)] = true
	}

	return func(c context.Context, ctx *app.RequestContext) {
		// 防护机制1：请求体大小限制
		if cfg.MaxBodySize > 0 && int64(ctx.Request.Header.ContentLength()) > cfg.MaxBodySize {
			securityResponse(c, ctx, "request body exceeds max size", 413)
			return
		}

		// 防护机制2：参数恶意字符检查
		if hasMaliciousContent(ctx, xssRegex) {
			securityResponse(c, ctx, "request contains invalid characters", 422)
			return
		}

		// 防护机制3：检查HTTP方法
		if len(allowed) > 0 && !allowed[string(ctx.Method())] {
			securityResponse(c, ctx, "method not allowed", 405)
			return
		}

		// 防护机制4：Host 白名单，未配置时不限制
		if len(hosts) > 0 && !hosts[requestHost(ctx)] {
			securityResponse(c, ctx, "host not allowed", 400)
			return
		}

		ctx.Next(c)
	}
}

func hasMaliciousContent(ctx *app.RequestContext, xss *regexp.Regexp) bool {
	found := false
	visitor := func(key, value []byte) {
		if !found && (xss.Match(key) || xss.Match(value)) {
			found = true
		}
	}

	// 检查Query参数
	ctx.QueryArgs().VisitAll(visitor)
	if found {
		return true
	}

	// 检查Post表单参数
	ctx.PostArgs().VisitAll(visitor)
	return found
}

// 安全响应统一处理
func securityResponse(c context.Context, ctx *app.RequestContext, msg string, status int) {
	hlog.CtxWarnf(c, "SecurityAlert[%d] path=%s: %s", status, ctx.Path(), msg)
	render.Message(ctx, status, msg)
}

// requestHost 去掉端口的小写 Host
func requestHost(ctx *app.RequestContext) string {
	host := strings.ToLower(string(ctx.Host()))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
