package router

import (
	"github.com/gabeVald/Personal-Task-Manager/internal/audit"
	"github.com/gabeVald/Personal-Task-Manager/internal/config"
	"github.com/gabeVald/Personal-Task-Manager/internal/handler"
	"github.com/gabeVald/Personal-Task-Manager/internal/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the gin engine and wires every API group.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	recorder := audit.NewRecorder(db)

	api := r.Group("/api")

	// signup and sign-in are the only unauthenticated endpoints
	authHandler := handler.NewAuthHandler(db, recorder, cfg)
	api.POST("/users/signup", authHandler.Signup)
	api.POST("/users/sign-in", authHandler.SignIn)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	protected.POST("/users/logout", authHandler.Logout)

	userHandler := handler.NewUserHandler(db, recorder)
	adminUsers := protected.Group("/users", middleware.RequireAdmin())
	adminUsers.GET("/all", userHandler.GetAll)
	adminUsers.PATCH("/:username/role", userHandler.UpdateRole)
	adminUsers.DELETE("/:username", userHandler.Delete)

	taskHandler := handler.NewTaskHandler(db, recorder)
	tasks := protected.Group("/tasks")
	tasks.GET("/all", taskHandler.GetAll)
	tasks.GET("/tasks", taskHandler.GetTasks)
	tasks.GET("/todos", taskHandler.GetTodos)
	tasks.GET("/gottados", taskHandler.GetGottados)
	tasks.GET("/completed", taskHandler.GetCompleted)
	tasks.POST("/create", taskHandler.CreateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)
	tasks.PATCH("/title/:id", taskHandler.UpdateTitle)
	tasks.PATCH("/desc/:id", taskHandler.UpdateDescription)
	tasks.PATCH("/expired_date/:id", taskHandler.UpdateExpiredDate)
	tasks.PATCH("/completed_date/:id", taskHandler.UpdateCompletedDate)
	tasks.PATCH("/high_priority/:id", taskHandler.UpdatePriority)
	tasks.PATCH("/completed/:id", taskHandler.UpdateCompletion)
	tasks.PATCH("/level/:id", taskHandler.UpdateLevel)

	fileHandler := handler.NewFileHandler(db, recorder, cfg.Upload.MaxSizeMB)
	files := protected.Group("/files")
	files.GET("/all", fileHandler.GetAll)
	files.GET("/task/:id", fileHandler.GetByTask)
	files.POST("/upload", fileHandler.Upload)
	files.DELETE("/:id", fileHandler.Delete)

	statementHandler := handler.NewStatementHandler(db, recorder, cfg)
	summaryHandler := handler.NewSummaryHandler(db, recorder)
	exportHandler := handler.NewExportHandler(db, recorder)
	statements := protected.Group("/statements")
	statements.POST("/upload", statementHandler.Upload)
	statements.GET("/files", statementHandler.GetFiles)
	statements.GET("/files/:id", statementHandler.GetFile)
	statements.DELETE("/files/:id", statementHandler.DeleteFile)
	statements.GET("/transactions", statementHandler.GetTransactions)
	statements.PATCH("/transactions/:id/category", statementHandler.UpdateTransactionCategory)
	statements.GET("/categories", statementHandler.GetCategories)
	statements.GET("/summary", summaryHandler.GetSummary)
	statements.GET("/summary/multi-month", summaryHandler.GetMultiMonthSummary)
	statements.GET("/export/csv", exportHandler.ExportCSV)
	statements.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db, recorder)
	logs := protected.Group("/logs")
	logs.GET("/all", middleware.RequireAdmin(), logHandler.GetAll)
	logs.GET("/user/:username", middleware.RequireAdmin(), logHandler.GetUserLogs)
	logs.GET("/me", logHandler.GetMyLogs)

	return r
}
