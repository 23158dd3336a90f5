package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/clockpoint/attendance-api/handlers"
	"github.com/clockpoint/attendance-api/store"
)

var logger *slog.Logger

func main() {
	port := flag.String("p", "8080", "port for the attendance API to listen on")
	logLevelFlag := flag.String("l", "info", "slog log level")
	flag.Parse()

	//setup logger
	var logLevel = new(slog.LevelVar)

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	err := setLogLevel(*logLevelFlag, logLevel)
	if err != nil {
		logger.Error("can not set log level", "error", err)
	}

	//environment from .env when present, real environment wins
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded environment from .env")
	}

	st, closeStore, err := openStore()
	if err != nil {
		logger.Error("can not open attendance store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	adminToken := os.Getenv("ATTENDANCE_ADMIN_TOKEN")
	if adminToken == "" {
		logger.Warn("ATTENDANCE_ADMIN_TOKEN is not set, admin endpoints are disabled")
	}

	router := gin.Default()

	router.Use(corsMiddleware())

	// health endpoint
	router.GET("/healthz", func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{
			"message": "healthy",
		})
	})

	router.GET("/ping", func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	router.GET("/status", func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{
			"message": "good",
		})
	})

	router.GET("/logLevel/:level", func(context *gin.Context) {
		err := setLogLevel(context.Param("level"), logLevel)
		if err != nil {
			logger.Error("can not set log level", "error", err)
			context.JSON(http.StatusInternalServerError, err.Error())
			return
		}
		context.JSON(http.StatusOK, gin.H{
			"current logLevel": logLevel.Level(),
		})
	})

	router.GET("/logLevel", func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{
			"current logLevel": logLevel.Level(),
		})
	})

	h := handlers.New(st)
	h.Register(router, adminToken)

	listeningPort := ":" + *port
	logger.Info("starting attendance API", "port", listeningPort)
	if err := router.Run(listeningPort); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// openStore picks the storage backend from ATTENDANCE_DB_DRIVER:
// "bolt" (default) keeps everything in a local file, "postgres"
// connects to the shared database.
func openStore() (store.Store, func(), error) {
	driver := os.Getenv("ATTENDANCE_DB_DRIVER")
	switch driver {
	case "", "bolt":
		path := os.Getenv("ATTENDANCE_DB_PATH")
		if path == "" {
			path = "attendance.db"
		}
		b, err := store.OpenBolt(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using bolt attendance store", "path", path)
		return b, func() { b.Close() }, nil
	case "postgres":
		p, err := store.OpenPostgres()
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using postgres attendance store")
		return p, func() { p.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown ATTENDANCE_DB_DRIVER %q (use bolt or postgres)", driver)
	}
}

func setLogLevel(level string, logLevel *slog.LevelVar) error {
	level = strings.ToLower(level)
	if level == "debug" {
		logLevel.Set(slog.LevelDebug)
	} else if level == "info" {
		logLevel.Set(slog.LevelInfo)
	} else if level == "warn" {
		logLevel.Set(slog.LevelWarn)
	} else if level == "error" {
		logLevel.Set(slog.LevelError)
	} else {
		return fmt.Errorf("the debug level must be one of (debug, info, warn, error) received %s", level)
	}
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
