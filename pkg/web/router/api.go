package router

import (
	"fmt"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"gorm.io/gorm"

	"social-blog/pkg/common/config"
	apperrors "social-blog/pkg/common/errors"
	"social-blog/pkg/core/auth"
	"social-blog/pkg/core/media"
	"social-blog/pkg/core/policy"
	postdao "social-blog/pkg/core/post/repository/dao/impl"
	postservice "social-blog/pkg/core/post/service"
	userdao "social-blog/pkg/core/user/repository/dao/impl"
	userservice "social-blog/pkg/core/user/service"
	"social-blog/pkg/web/handler"
	"social-blog/pkg/web/middleware"
)

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, db *gorm.DB, host media.Host) error {
	jwtCfg := cfg.Middleware.JWT
	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		Secret:        jwtCfg.Secret,
		Issuer:        jwtCfg.Issuer,
		SigningMethod: jwtCfg.SigningMethod,
		TTL:           jwtCfg.ExpireDuration,
	})
	if err != nil {
		return fmt.Errorf("init token issuer: %w", err)
	}

	// 组装业务层
	users := userservice.NewUserService(userdao.NewGormUserRepository(db), auth.NewHasher(jwtCfg.PasswordCost), issuer, host)
	posts := postservice.NewPostService(postdao.NewGormPostRepository(db), host)

	// 初始化Handler实例
	healthHandler := handler.NewHealthCheckHandler(db)
	authHandler := handler.NewAuthHandler(users)
	userHandler := handler.NewUserHandler(users, cfg.Media.MaxImageSize)
	postHandler := handler.NewPostHandler(posts, cfg.Media.MaxImageSize)

	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.RateLimitMiddleware(
			cfg.Middleware.RateLimit.Rate,
			cfg.Middleware.RateLimit.Interval,
		),
	)

	// 鉴权规则
	var (
		guard         = middleware.Guard
		authenticate  = policy.Authenticate(issuer)
		resolveAuthor = policy.ResolveOwner(policy.OwnerResolverFunc(posts.OwnerOf), apperrors.ErrPostNotFound)
	)

	// 基础接口组
	h.GET("/health", healthHandler.AdvancedHealthCheck)
	if cfg.Media.Driver == "" || cfg.Media.Driver == "local" {
		registerMedia(h, cfg.Media.Local)
	}

	// 业务接口组
	apiGroup := h.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		userGroup := apiGroup.Group("/users/profile")
		{
			userGroup.GET("", guard(authenticate, policy.RequireAdmin()), userHandler.List)
			userGroup.POST("/profile-photo-upload", guard(authenticate), userHandler.UploadPhoto)
			userGroup.GET("/:id", guard(policy.RequireValidID()), userHandler.Get)
			userGroup.PUT("/:id", guard(policy.RequireValidID(), authenticate, policy.RequireSelf()), userHandler.Update)
			userGroup.DELETE("/:id", guard(policy.RequireValidID(), authenticate, policy.RequireSelfOrAdmin()), userHandler.Delete)
		}

		postGroup := apiGroup.Group("/posts")
		{
			postGroup.GET("", postHandler.List)
			postGroup.POST("", guard(authenticate), postHandler.Create)
			postGroup.GET("/count", postHandler.Count)
			postGroup.GET("/:id", guard(policy.RequireValidID()), postHandler.Get)
			postGroup.PUT("/:id", guard(policy.RequireValidID(), authenticate, resolveAuthor, policy.RequireOwner()), postHandler.Update)
			postGroup.DELETE("/:id", guard(policy.RequireValidID(), authenticate, resolveAuthor, policy.RequireOwnerOrAdmin()), postHandler.Delete)
			postGroup.PUT("/upload-image/:id", guard(policy.RequireValidID(), authenticate, resolveAuthor, policy.RequireOwner()), postHandler.UploadImage)
			postGroup.PUT("/likes/:id", guard(policy.RequireValidID(), authenticate), postHandler.ToggleLike)
		}
	}
	return nil
}

// registerMedia 本地图床的静态文件访问
func registerMedia(h *server.Hertz, local config.LocalMediaConfig) {
	route := "/" + strings.Trim(local.Route, "/")
	if route == "/" || local.Dir == "" {
		return
	}
	h.StaticFS(route, &app.FS{
		Root:        local.Dir,
		PathRewrite: app.NewPathSlashesStripper(strings.Count(route, "/")),
	})
}
