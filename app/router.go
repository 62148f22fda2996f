// Package app wires the HTTP surface: middleware, routes and the
// shared dependencies behind them
package app

import (
	"fmt"
	"time"

	"cwt/backend-api/app/content"
	"cwt/backend-api/app/email"
	"cwt/backend-api/app/milestone"
	"cwt/backend-api/app/module"
	"cwt/backend-api/app/root"
	"cwt/backend-api/app/user"
	"cwt/backend-api/aws"
	"cwt/backend-api/db"
	"cwt/backend-api/internal"
	"cwt/backend-api/internal/service"
	"cwt/backend-api/internal/verification"
	"cwt/backend-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type handler func(*gin.Context, *internal.Deps)

// NewRouter builds the engine with all dependencies attached. The
// returned cleanup stops the verification sweeper and must run on
// shutdown
func NewRouter() (*gin.Engine, func(), error) {
	database, err := db.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	makeLogger()

	s3, err := aws.NewS3()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}

	uploader := service.NewUploader(s3)
	ledger := verification.NewLedger(
		verification.NewMemoryStore(),
		service.NewAccounts(database),
		service.NewMailer(),
	)

	d := &internal.Deps{
		DB:       database,
		S3:       s3,
		Uploader: uploader,
		Ledger:   ledger,
	}

	h := func(f handler) gin.HandlerFunc {
		return func(c *gin.Context) { f(c, d) }
	}

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: viper.GetInt("security.rate_limit"),
			Burst:             viper.GetInt("security.rate_limit") * 2,
		}),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	maxUploadSize := viper.GetInt64("upload.max_size")
	jsonBody := middleware.BodySizeLimiter(1 << 20)

	router.GET("/", root.Banner)

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/health		-> Service banner with timestamp
		main.GET("/health", root.Health)

		// POST /api/logout		-> Stamps lastActive for a user
		main.POST("/logout", jsonBody, h(user.Logout))

		// PUT /api/user		-> Upserts a profile by email
		main.PUT("/user", jsonBody, h(user.Upsert))
	}

	users := main.Group("/users")
	{
		// GET /api/users		-> Lists every user
		users.GET("", h(user.List))

		// POST /api/users/register	-> Registers a new user, idempotent on uid/email
		users.POST("/register", jsonBody, h(user.Register))

		// GET /api/users/email/:email	-> Fetches a user by email
		users.GET("/email/:email", h(user.FetchByEmail))

		// GET /api/users/uid/:uid	-> Fetches a user by auth provider uid
		users.GET("/uid/:uid", h(user.FetchByUID))

		// GET /api/users/id/:id	-> Fetches a user by record ID
		users.GET("/id/:id", h(user.FetchByID))

		// GET /api/users/check/:email	-> Existence check, never 404s
		users.GET("/check/:email", h(user.Check))

		// PATCH /api/users/uid/:uid	-> Partial profile update
		users.PATCH("/uid/:uid", jsonBody, h(user.Update))

		// DELETE /api/users/:uid	-> Deletes the account and its photo object
		users.DELETE("/:uid", h(user.Delete))

		// POST /api/users/upload-photo	-> Replaces the profile photo
		users.POST("/upload-photo", middleware.BodySizeLimiter(maxUploadSize), h(user.UploadPhoto))
	}

	milestones := main.Group("/milestones")
	{
		milestones.POST("", jsonBody, h(milestone.Create))
		milestones.GET("", cacheFor(30), h(milestone.List))
		milestones.GET("/:id", h(milestone.Fetch))
		milestones.PUT("/:id", jsonBody, h(milestone.Update))
		milestones.DELETE("/:id", h(milestone.Delete))
	}

	modules := main.Group("/modules")
	{
		modules.POST("", jsonBody, h(module.Create))
		modules.GET("/milestone/:milestoneId", h(module.FetchByMilestone))
		modules.PUT("/:id", jsonBody, h(module.Update))
		modules.DELETE("/:id", h(module.Delete))
	}

	contents := main.Group("/content")
	{
		// POST /api/content/upload	-> Uploads a lesson asset to the media bucket
		contents.POST("/upload", middleware.BodySizeLimiter(maxUploadSize), h(content.Upload))

		contents.GET("/:id", h(content.Fetch))
		contents.GET("/module/:moduleId", h(content.FetchByModule))
		contents.PUT("/:id", jsonBody, h(content.Update))
		contents.DELETE("/:id", h(content.Delete))
	}

	// GET /api/contents		-> Lists every asset, cached briefly
	main.GET("/contents", cacheFor(30), h(content.List))

	emails := main.Group("/email", jsonBody)
	{
		// POST /api/email/send-verification	-> Issues and mails a new code
		emails.POST("/send-verification", h(email.SendVerification))

		// POST /api/email/verify-code		-> Checks a submitted code
		emails.POST("/verify-code", h(email.VerifyCode))

		// GET /api/email/verification-status/:userId
		emails.GET("/verification-status/:userId", h(email.VerificationStatus))
	}

	stopSweeper := ledger.StartSweeper(verification.SweepInterval)

	return router, stopSweeper, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	level, err := zapcore.ParseLevel(viper.GetString("app.log_level"))
	if err == nil {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
