package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workspaceflow/internal/auth"
	"workspaceflow/internal/config"
	"workspaceflow/internal/database"
	"workspaceflow/internal/handler"
	"workspaceflow/internal/middleware"
	"workspaceflow/internal/repository"
	"workspaceflow/internal/service"
	"workspaceflow/internal/storage"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config config.Config
	log    *slog.Logger
}

func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*Server, error) {
	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Info("connected to database", "driver", cfg.Database.Driver)

	blobs, err := storage.NewLocal(cfg.Storage.Dir)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	store := repository.NewStore(db,
		repository.WithTimeout(cfg.Database.Timeout),
		repository.WithLockTimeout(cfg.Database.LockTimeout),
	)
	svc := service.New(store, blobs, log,
		service.WithUploadLimits(cfg.Storage.MaxAttachmentSize, cfg.Storage.MaxProfilePictureSize),
	)
	if err := svc.EnsureDefaultTemplates(ctx); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to seed status templates: %w", err)
	}

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expiry)
	return &Server{
		Engine: NewRouter(svc, tokens, log),
		DB:     db,
		Config: cfg,
		log:    log,
	}, nil
}

// NewRouter wires every handler onto a gin engine.
func NewRouter(svc *service.Service, tokens *auth.TokenIssuer, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())
	r.MaxMultipartMemory = 8 << 20

	authHandler := handler.NewAuthHandler(svc, tokens)
	memberHandler := handler.NewMemberHandler(svc)
	workspaceHandler := handler.NewWorkspaceHandler(svc)
	workflowHandler := handler.NewWorkflowHandler(svc)
	statusHandler := handler.NewStatusHandler(svc)
	taskHandler := handler.NewTaskHandler(svc)
	chatHandler := handler.NewChatHandler(svc)
	activityHandler := handler.NewActivityHandler(svc)

	// Public routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/health", func(c *gin.Context) {
		if err := svc.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(tokens))
	{
		// Member routes
		authorized.GET("/me", memberHandler.Me)
		authorized.GET("/me/tasks", memberHandler.MyTasks)
		authorized.POST("/me/picture", memberHandler.UploadPicture)
		authorized.DELETE("/me/picture", memberHandler.DeletePicture)
		authorized.GET("/members", memberHandler.GetAll)
		authorized.GET("/members/:id", memberHandler.GetByID)
		authorized.PUT("/members/:id", memberHandler.Update)
		authorized.DELETE("/members/:id", memberHandler.Delete)
		authorized.PUT("/members/:id/password", memberHandler.ChangePassword)
		authorized.GET("/members/:id/picture", memberHandler.GetPicture)

		// Workspace routes
		authorized.POST("/workspaces", workspaceHandler.Create)
		authorized.GET("/workspaces", workspaceHandler.GetAll)
		authorized.GET("/workspaces/:id", workspaceHandler.GetByID)
		authorized.PUT("/workspaces/:id", workspaceHandler.Update)
		authorized.DELETE("/workspaces/:id", workspaceHandler.Delete)
		authorized.GET("/workspaces/:id/members", workspaceHandler.GetMembers)
		authorized.POST("/workspaces/:id/members", workspaceHandler.AddMember)
		authorized.DELETE("/workspaces/:id/members/:member_id", workspaceHandler.RemoveMember)

		// Workflow routes
		authorized.POST("/workspaces/:id/workflows", workflowHandler.Create)
		authorized.GET("/workspaces/:id/workflows", workflowHandler.GetByWorkspace)
		authorized.GET("/workflows/:id", workflowHandler.GetByID)
		authorized.PUT("/workflows/:id", workflowHandler.Update)
		authorized.DELETE("/workflows/:id", workflowHandler.Delete)
		authorized.GET("/workflows/:id/members", workflowHandler.GetMembers)
		authorized.POST("/workflows/:id/members", workflowHandler.AddMember)
		authorized.DELETE("/workflows/:id/members/:member_id", workflowHandler.RemoveMember)

		// Status template and column routes
		authorized.GET("/templates", statusHandler.GetTemplates)
		authorized.POST("/templates", statusHandler.CreateTemplate)
		authorized.GET("/templates/:id", statusHandler.GetTemplate)
		authorized.PUT("/templates/:id", statusHandler.UpdateTemplate)
		authorized.DELETE("/templates/:id", statusHandler.DeleteTemplate)
		authorized.GET("/templates/:id/columns", statusHandler.GetColumns)
		authorized.POST("/templates/:id/columns", statusHandler.CreateColumn)
		authorized.POST("/templates/:id/columns/reorder", statusHandler.ReorderColumns)
		authorized.PUT("/columns/:id", statusHandler.UpdateColumn)
		authorized.DELETE("/columns/:id", statusHandler.DeleteColumn)

		// Task routes
		authorized.POST("/workflows/:id/tasks", taskHandler.Create)
		authorized.GET("/workflows/:id/tasks", taskHandler.GetByWorkflow)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/move", taskHandler.Move)
		authorized.POST("/tasks/:id/timer/start", taskHandler.StartTimer)
		authorized.POST("/tasks/:id/timer/stop", taskHandler.StopTimer)
		authorized.GET("/tasks/:id/assignees", taskHandler.GetAssignees)
		authorized.POST("/tasks/:id/assignees", taskHandler.Assign)
		authorized.DELETE("/tasks/:id/assignees/:member_id", taskHandler.Unassign)

		// Subtask routes
		authorized.GET("/tasks/:id/subtasks", taskHandler.GetSubtasks)
		authorized.POST("/tasks/:id/subtasks", taskHandler.CreateSubtask)
		authorized.PUT("/subtasks/:id", taskHandler.UpdateSubtask)
		authorized.DELETE("/subtasks/:id", taskHandler.DeleteSubtask)

		// Chat and attachment routes
		authorized.GET("/tasks/:id/messages", chatHandler.GetMessages)
		authorized.POST("/tasks/:id/messages", chatHandler.PostMessage)
		authorized.PUT("/messages/:id", chatHandler.UpdateMessage)
		authorized.DELETE("/messages/:id", chatHandler.DeleteMessage)
		authorized.GET("/tasks/:id/attachments", chatHandler.GetAttachments)
		authorized.POST("/tasks/:id/attachments", chatHandler.Upload)
		authorized.GET("/attachments/:id", chatHandler.Download)
		authorized.DELETE("/attachments/:id", chatHandler.DeleteAttachment)

		// Activity routes
		authorized.GET("/activities", activityHandler.GetAll)
		authorized.POST("/activities", activityHandler.Create)
	}
	return r
}

// Run serves until SIGINT or SIGTERM, then drains requests and closes the database.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server running", "port", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		_ = database.Close(s.DB)
		return fmt.Errorf("failed to listen: %w", err)
	case <-quit:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(ctx)
	if err := database.Close(s.DB); err != nil {
		s.log.Error("failed to close database", "error", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}
	s.log.Info("server exited properly")
	return nil
}
