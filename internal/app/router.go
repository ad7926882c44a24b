package app

import (
	"edu_content_backend/docs"
	"edu_content_backend/internal/config"
	"edu_content_backend/internal/middleware"
	"edu_content_backend/internal/model"
	"edu_content_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		// 版本生命周期
		authGroup.POST("/versions", c.version.CreateVersion)
		authGroup.GET("/versions/:id", c.version.GetVersion)
		authGroup.PUT("/versions/:id/content", c.version.UpdateContent)
		authGroup.POST("/versions/:id/submit", c.version.SubmitForReview)
		authGroup.POST("/versions/:id/publish", c.version.Publish)
		authGroup.GET("/versions/:id/export", c.version.ExportVersion)
		authGroup.GET("/versions/:id/approvals", c.review.GetApprovals)

		// 审核流程（审核人/管理员）
		review := authGroup.Group("/versions/:id/review")
		review.Use(middleware.RoleMiddleware(model.Reviewer))
		{
			review.POST("/start", c.review.StartReview)
			review.POST("/approve", c.review.Approve)
			review.POST("/reject", c.review.Reject)
			review.POST("/request-changes", c.review.RequestChanges)
		}
		authGroup.POST("/versions/:id/reviewers", middleware.RoleMiddleware(model.Reviewer), c.review.AssignReviewer)

		// 实体维度
		authGroup.POST("/entities/:type/:id/rollback", c.version.Rollback)
		authGroup.POST("/entities/:type/:id/branches", c.branch.CreateBranch)
		authGroup.GET("/entities/:type/:id/branches", c.branch.ListBranches)
		authGroup.GET("/entities/:type/:id/history", c.history.GetVersionHistory)
		authGroup.GET("/entities/:type/:id/current", c.history.GetCurrentVersion)
		authGroup.GET("/entities/:type/:id/summary", c.history.GetHistorySummary)

		// 分支合并
		authGroup.POST("/branches/:id/close", c.branch.CloseBranch)
		authGroup.GET("/branches/:id/merges", c.merge.ListBranchMerges)
		authGroup.POST("/merges", c.merge.MergeBranches)
		authGroup.GET("/merges/:id", c.merge.GetMerge)
		authGroup.GET("/diffs", c.merge.GetDiff)

		// 审核看板
		queue := authGroup.Group("/reviews")
		queue.Use(middleware.RoleMiddleware(model.Reviewer))
		{
			queue.GET("/pending", c.history.GetPendingReviews)
			queue.GET("/my-queue", c.history.GetReviewerQueue)
		}

		// 编辑锁
		authGroup.GET("/locks/:type/:id/status", c.lock.CheckLockStatus)
		authGroup.POST("/locks/:type/:id", c.lock.AcquireLock)
		authGroup.PUT("/locks/:id/refresh", c.lock.RefreshLock)
		authGroup.DELETE("/locks/:id", c.lock.ReleaseLock)
	}
}
