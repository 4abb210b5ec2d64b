package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/taskhive-dev/taskhive/internal/handlers"
	"github.com/taskhive-dev/taskhive/internal/middleware"
	"github.com/taskhive-dev/taskhive/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth", middleware.AuthMiddleware())
		{
			auth.GET("/me", handlers.Me)
			auth.POST("/sync", handlers.SyncProfile)
			auth.DELETE("/me", handlers.DeleteAccount)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)
		}

		todos := api.Group("/todos", middleware.AuthMiddleware())
		{
			todos.POST("", handlers.CreateTodo)
			todos.GET("", handlers.ListTodos)
			todos.GET("/stats", handlers.GetTodoStats)

			// Archive lifecycle. Static segments must register alongside the
			// :todo_id params below.
			todos.GET("/archived", handlers.ListArchivedTodos)
			todos.POST("/archived/:todo_id/restore", handlers.RestoreTodo)
			todos.DELETE("/archived/:todo_id", handlers.DeleteArchivedTodo)

			todos.GET("/:todo_id", handlers.GetTodo)
			todos.PATCH("/:todo_id", handlers.UpdateTodo)
			todos.DELETE("/:todo_id", handlers.DeleteTodo)
			todos.GET("/:todo_id/subtasks", handlers.GetSubtasks)
			todos.POST("/:todo_id/archive", handlers.ArchiveTodo)
		}

		aiGroup := api.Group("/ai", middleware.AuthMiddleware())
		{
			aiGroup.POST("/todos/:todo_id/subtasks", handlers.GenerateSubtasks)
			aiGroup.POST("/analyze", handlers.Analyze)
			aiGroup.GET("/interactions", handlers.ListAIInteractions)
		}

		chat := api.Group("/chat", middleware.AuthMiddleware())
		{
			chat.GET("/ws", handlers.ChatSocket)
			chat.POST("/conversations", handlers.CreateConversation)
			chat.GET("/conversations", handlers.ListConversations)
			chat.GET("/conversations/:conversation_id", handlers.GetConversation)
			chat.DELETE("/conversations/:conversation_id", handlers.DeleteConversation)
			chat.GET("/conversations/:conversation_id/messages", handlers.ListMessages)
			chat.POST("/conversations/:conversation_id/messages", handlers.PostMessage)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.POST("/test", handlers.SendTestReminder)
			notifications.GET("/upcoming", handlers.UpcomingReminders)
		}

		settings := api.Group("/settings", middleware.AuthMiddleware())
		{
			settings.GET("", handlers.GetSettings)
			settings.PUT("", handlers.UpdateSettings)
		}
	}

	return r
}
