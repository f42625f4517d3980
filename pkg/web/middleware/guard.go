package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"social-blog/pkg/core/auth"
	"social-blog/pkg/core/policy"
	"social-blog/pkg/web/render"
)

const claimsKey = "auth_claims"

// Guard 按顺序执行鉴权规则，首个失败的规则决定响应
// 令牌取自 Authorization 头，资源ID取自路径参数 :id
func Guard(rules ...policy.Rule) app.HandlerFunc {
	chain := policy.Chain(rules)
	return func(c context.Context, ctx *app.RequestContext) {
		in := &policy.Input{
			Token:  string(ctx.GetHeader("Authorization")),
			PathID: ctx.Param("id"),
		}
		if err := chain.Evaluate(c, in); err != nil {
			render.Error(c, ctx, err)
			return
		}
		if in.Claims != nil {
			ctx.Set(claimsKey, in.Claims)
		}
		ctx.Next(c)
	}
}

// ClaimsFrom 读取 Guard 写入的身份信息
func ClaimsFrom(ctx *app.RequestContext) (*auth.Claims, bool) {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}
