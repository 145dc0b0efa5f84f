package api

import (
	"database/sql"
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"

	intconfig "taskhub/internal/config"
	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/http/crud"
	h "taskhub/internal/http/handlers"
	"taskhub/internal/http/middleware"
	"taskhub/internal/repositories"
	"taskhub/internal/services"

	"golang.org/x/crypto/bcrypt"
)

func NewRouter(env intconfig.Env, db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	secret := []byte(env.JWTSecret)

	userRepo := repositories.NewUserRepository(db)
	userSvc := services.Resource[*models.User]{Repo: userRepo, Schema: userRepo.Schema}
	taskRepo := repositories.NewTaskRepository(db)
	taskSvc := services.Resource[*models.Task]{Repo: taskRepo, Schema: taskRepo.Schema}
	categoryRepo := repositories.NewCategoryRepository(db)
	categorySvc := services.Resource[*models.Category]{Repo: categoryRepo, Schema: categoryRepo.Schema}

	authHandler := h.AuthHandler{
		Users:    userRepo,
		Svc:      userSvc,
		Secret:   secret,
		TokenTTL: env.JWTTTL,
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)

		protected := api.Group("", middleware.RequireAuth(secret))

		crud.Controller[*models.Task]{
			Service: taskSvc,
			New:     func() *models.Task { return &models.Task{} },
		}.Register(protected.Group("/tasks"))

		crud.Controller[*models.Category]{
			Service: categorySvc,
			New:     func() *models.Category { return &models.Category{} },
		}.Register(protected.Group("/categories"))

		users := protected.Group("/users")
		users.GET("/me", authHandler.Me)
		crud.Controller[*models.User]{
			Service: userSvc,
			New:     func() *models.User { return &models.User{} },
			Roles: crud.Roles{
				Create: []string{"admin"},
				Read:   []string{"admin"},
				Update: []string{"admin"},
				Delete: []string{"admin"},
			},
			BeforeCreate: hashUserPassword,
			BeforeUpdate: hashUserPasswordChange,
		}.Register(users)

		reports := protected.Group("/reports")
		reports.GET("/tasks", h.ReportHandler{Tasks: taskSvc}.TaskReport)
	}

	return r
}

// hashUserPassword moves the plaintext password out of the payload and into
// the record as a bcrypt hash. The password column is excluded from JSON, so
// this is the only path that sets it.
func hashUserPassword(_ domain.RequestContext, rec *models.User, payload map[string]any) error {
	plain, ok := payload["password"].(string)
	if !ok || plain == "" {
		return domain.ValidationError{Fields: []domain.FieldViolation{{
			Field: "password", Message: "field 'password' is required", Rule: "required",
		}}}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return domain.InternalError{Msg: "hash password", Err: err}
	}
	rec.Password = string(hash)
	return nil
}

func hashUserPasswordChange(_ domain.RequestContext, changes map[string]any) error {
	plain, ok := changes["password"].(string)
	if !ok {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return domain.InternalError{Msg: "hash password", Err: err}
	}
	changes["password"] = string(hash)
	return nil
}
