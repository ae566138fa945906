// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alibaba/opensandbox/fsd/pkg/log"
	"github.com/alibaba/opensandbox/fsd/pkg/web/controller"
	"github.com/alibaba/opensandbox/fsd/pkg/web/model"
)

const requestIDHeader = "X-Request-Id"

// NewRouter builds a Gin engine with all fsd routes.
func NewRouter(accessToken string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware(), logMiddleware(), accessTokenMiddleware(accessToken))

	r.GET("/ping", controller.PingHandler)

	files := r.Group("/files")
	{
		files.GET("", withFilesystem(func(c *controller.FilesystemController) { c.ReadFile() }))
		files.PUT("", withFilesystem(func(c *controller.FilesystemController) { c.WriteFile() }))
		files.POST("/edit", withFilesystem(func(c *controller.FilesystemController) { c.EditFile() }))
		files.POST("/manage", withFilesystem(func(c *controller.FilesystemController) { c.ManageFile() }))
		files.GET("/search", withFilesystem(func(c *controller.FilesystemController) { c.Search() }))
		files.GET("/info", withFilesystem(func(c *controller.FilesystemController) { c.GetFilesInfo() }))
	}

	directories := r.Group("/directories")
	{
		directories.POST("/manage", withFilesystem(func(c *controller.FilesystemController) { c.ManageDir() }))
	}

	metric := r.Group("/metrics")
	{
		metric.GET("", withMetric(func(c *controller.MetricController) { c.GetMetrics() }))
		metric.GET("/watch", withMetric(func(c *controller.MetricController) { c.WatchMetrics() }))
	}

	return r
}

func withFilesystem(fn func(*controller.FilesystemController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewFilesystemController(ctx))
	}
}

func withMetric(fn func(*controller.MetricController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewMetricController(ctx))
	}
}

func accessTokenMiddleware(token string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token == "" {
			ctx.Next()
			return
		}

		requestedToken := ctx.GetHeader(model.ApiAccessTokenHeader)
		if requestedToken == "" || requestedToken != token {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, map[string]any{
				"error": "Unauthorized: invalid or missing header " + model.ApiAccessTokenHeader,
			})
			return
		}

		ctx.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		ctx.Set("request_id", id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}

func logMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log.Info("Requested: %v - %v - %v", ctx.GetString("request_id"), ctx.Request.Method, ctx.Request.URL.String())
		ctx.Next()
	}
}
