package main

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"social-blog/pkg/common/config"
	"social-blog/pkg/core/media"
	postmodel "social-blog/pkg/core/post/model"
	usermodel "social-blog/pkg/core/user/model"
	"social-blog/pkg/web/router"
)

func main() {
	// 初始化配置
	cfg := config.Load()
	hlog.SetLevel(cfg.LogLevel())

	// 初始化数据库连接
	db, err := cfg.InitDB()
	if err != nil {
		hlog.Fatalf("Failed to initialize database: %v", err)
	}
	if err := usermodel.AutoMigrate(db); err != nil {
		hlog.Fatalf("Failed to migrate users: %v", err)
	}
	if err := postmodel.AutoMigrate(db); err != nil {
		hlog.Fatalf("Failed to migrate posts: %v", err)
	}

	// 初始化图床
	host, err := media.New(cfg.Media)
	if err != nil {
		hlog.Fatalf("Failed to initialize media host: %v", err)
	}

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
	)

	// 注册路由
	if err := router.RegisterAPIs(h, cfg, db, host); err != nil {
		hlog.Fatalf("Failed to register routes: %v", err)
	}

	if cfg.Middleware.JWT.Secret == config.Default().Middleware.JWT.Secret {
		if cfg.IsProd() {
			hlog.Fatal("JWT_SECRET must be set in production")
		}
		hlog.Warn("using the development JWT secret")
	}

	// 启动服务
	h.Spin()
}
