package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sahanr03/devcamper/internal/config"
	"github.com/sahanr03/devcamper/internal/db"
	"github.com/sahanr03/devcamper/internal/events"
	"github.com/sahanr03/devcamper/internal/geocoder"
	"github.com/sahanr03/devcamper/internal/handlers"
	"github.com/sahanr03/devcamper/internal/httperr"
	"github.com/sahanr03/devcamper/internal/mail"
	"github.com/sahanr03/devcamper/internal/middleware"
	"github.com/sahanr03/devcamper/internal/services"
	"github.com/sahanr03/devcamper/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment variables")
	}
	cfg := config.Load()

	log := logrus.New()
	if !cfg.IsProduction() {
		log.SetLevel(logrus.DebugLevel)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	database, err := db.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatalf("indexes: %v", err)
	}
	cancel()
	log.Info("connected to MongoDB")

	photos, err := storage.NewPhotoStore(storage.Options{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("photo storage: %v", err)
	}
	log.Info("connected to MinIO")

	geo := geocoder.New(cfg.GeocoderBaseURL, cfg.GeocoderKey)
	mailer := mail.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName)

	bus := events.NewBus(256, log)
	aggregates := services.NewAggregates(database, log)
	busCtx, stopBus := context.WithCancel(context.Background())
	go bus.Run(busCtx, aggregates.HandleEvent)

	authSvc := services.NewAuthService(database, mailer, cfg.JWTSecret, cfg.JWTExpire, log)
	userSvc := services.NewUserService(database)
	bootcampSvc := services.NewBootcampService(database, geo, photos, cfg.MaxFileUpload, log)
	courseSvc := services.NewCourseService(database, bus)
	reviewSvc := services.NewReviewService(database, bus)

	authHandler := handlers.NewAuthHandler(authSvc, cfg.CookieExpire, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userSvc)
	bootcampHandler := handlers.NewBootcampHandler(bootcampSvc)
	courseHandler := handlers.NewCourseHandler(courseSvc)
	reviewHandler := handlers.NewReviewHandler(reviewSvc)

	auth := middleware.NewAuth(userSvc, cfg.JWTSecret)

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler(log, cfg.IsProduction()),
		BodyLimit:    int(cfg.MaxFileUpload) * 2,
	})

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 10 * time.Minute,
	}))
	if !cfg.IsProduction() {
		app.Use(logger.New())
	}

	api := app.Group("/api/v1")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/logout", authHandler.Logout)
	authRoutes.Get("/me", auth.Protect, authHandler.Me)
	authRoutes.Put("/updatedetails", auth.Protect, authHandler.UpdateDetails)
	authRoutes.Put("/updatepassword", auth.Protect, authHandler.UpdatePassword)
	authRoutes.Post("/forgotpassword", authHandler.ForgotPassword)
	authRoutes.Put("/resetpassword/:resettoken", authHandler.ResetPassword)

	publishers := middleware.Authorize("publisher", "admin")

	bootcamps := api.Group("/bootcamps")
	bootcamps.Get("/radius/:zipcode/:distance", auth.Protect, bootcampHandler.InRadius)
	bootcamps.Get("/", bootcampHandler.List)
	bootcamps.Post("/", auth.Protect, publishers, bootcampHandler.Create)
	bootcamps.Get("/:id", bootcampHandler.Get)
	bootcamps.Put("/:id", auth.Protect, publishers, bootcampHandler.Update)
	bootcamps.Delete("/:id", auth.Protect, publishers, bootcampHandler.Delete)
	bootcamps.Put("/:id/photo", auth.Protect, publishers, bootcampHandler.UploadPhoto)
	bootcamps.Get("/:bootcampId/courses", courseHandler.ListByBootcamp)
	bootcamps.Post("/:bootcampId/courses", auth.Protect, publishers, courseHandler.Create)
	bootcamps.Get("/:bootcampId/reviews", reviewHandler.ListByBootcamp)
	bootcamps.Post("/:bootcampId/reviews", auth.Protect, middleware.Authorize("user", "admin"), reviewHandler.Create)

	courses := api.Group("/courses")
	courses.Get("/", courseHandler.List)
	courses.Get("/:id", courseHandler.Get)
	courses.Put("/:id", auth.Protect, publishers, courseHandler.Update)
	courses.Delete("/:id", auth.Protect, publishers, courseHandler.Delete)

	reviews := api.Group("/reviews")
	reviews.Get("/", reviewHandler.List)
	reviews.Get("/:id", reviewHandler.Get)
	reviews.Put("/:id", auth.Protect, middleware.Authorize("user", "admin"), reviewHandler.Update)
	reviews.Delete("/:id", auth.Protect, middleware.Authorize("user", "admin"), reviewHandler.Delete)

	users := api.Group("/users", auth.Protect, middleware.Authorize("admin"))
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// shut the listener down cleanly on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		stopBus()
		if err := app.Shutdown(); err != nil {
			log.WithError(err).Error("server shutdown")
		}
	}()

	log.Infof("server running in %s mode on port %s", cfg.Env, cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		stopBus()
		_ = db.Disconnect(database)
		log.Fatalf("server: %v", err)
	}

	if err := db.Disconnect(database); err != nil {
		log.WithError(err).Error("mongodb disconnect")
	}
}
