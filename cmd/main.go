package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/codecat-lms/codecat/config"
	"github.com/codecat-lms/codecat/database"
	authctrl "github.com/codecat-lms/codecat/internal/controller/auth"
	instructorctrl "github.com/codecat-lms/codecat/internal/controller/instructor"
	studentctrl "github.com/codecat-lms/codecat/internal/controller/student"
	"github.com/codecat-lms/codecat/internal/logger"
	"github.com/codecat-lms/codecat/internal/middleware"
	"github.com/codecat-lms/codecat/internal/model"
	"github.com/codecat-lms/codecat/internal/repository"
	"github.com/codecat-lms/codecat/internal/service"
)

// @title CodeCat Quiz API
// @version 1.0
// @description Course-based quiz platform: instructors author topics, students take them and get scored exactly once per topic.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewRedisClient,
			NewGinEngine,
		),

		// Repositories
		fx.Provide(
			repository.NewUserRepository,
			repository.NewStudentRepository,
			repository.NewCourseRepository,
			repository.NewTopicRepository,
			repository.NewQuestionRepository,
			repository.NewTakenTopicRepository,
			repository.NewSessionRepos,
			repository.NewUnitOfWork,
		),

		// Services
		fx.Provide(
			service.NewAuthService,
			service.NewTopicSessionService,
			service.NewStudentTopicService,
			service.NewInstructorTopicService,
		),

		// Controllers
		fx.Provide(
			authctrl.NewAuthController,
			studentctrl.NewStudentController,
			instructorctrl.NewTopicController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

// NewRedisClient connects the optional rate-limiter backend. Returns nil when
// no address is configured; the limiter middleware treats nil as disabled.
func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("Redis not configured, submission rate limiting disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable at startup, limiter will fail open")
	}
	return client
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	redisClient *redis.Client,
	authService service.AuthService,
	authCtrl *authctrl.AuthController,
	studentCtrl *studentctrl.StudentController,
	instructorCtrl *instructorctrl.TopicController,
) {
	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup/student", authCtrl.SignUpStudent)
		authGroup.POST("/signup/instructor", authCtrl.SignUpInstructor)
		authGroup.POST("/login", authCtrl.Login)
	}

	studentGroup := api.Group("/students")
	studentGroup.Use(middleware.Authenticate(authService), middleware.RequireStudent())
	{
		studentGroup.GET("/topics", studentCtrl.ListTopics)
		studentGroup.GET("/taken-topics", studentCtrl.ListTakenTopics)
		studentGroup.GET("/topics/:topic_id/session", studentCtrl.TakeTopic)
		studentGroup.POST("/topics/:topic_id/session",
			middleware.SubmissionRateLimit(redisClient, cfg), studentCtrl.SubmitAnswer)
	}

	instructorGroup := api.Group("/instructors")
	instructorGroup.Use(middleware.Authenticate(authService), middleware.RequireInstructor())
	{
		instructorGroup.POST("/topics", instructorCtrl.CreateTopic)
		instructorGroup.GET("/topics", instructorCtrl.ListTopics)
		instructorGroup.GET("/topics/:topic_id", instructorCtrl.GetTopic)
		instructorGroup.PUT("/topics/:topic_id", instructorCtrl.UpdateTopic)
		instructorGroup.DELETE("/topics/:topic_id", instructorCtrl.DeleteTopic)
		instructorGroup.POST("/topics/:topic_id/questions", instructorCtrl.AddQuestion)
		instructorGroup.DELETE("/topics/:topic_id/questions/:question_id", instructorCtrl.DeleteQuestion)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("CodeCat API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Topic{},
		&model.Question{},
		&model.Answer{},
		&model.Student{},
		&model.StudentAnswer{},
		&model.TakenTopic{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
