package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"penguinclass/db"
	qhttp "penguinclass/http"
	"penguinclass/logging"
	"penguinclass/ml"
)

type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Model struct {
		Dir       string `yaml:"dir"`
		Watch     bool   `yaml:"watch"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"model"`
	Log logging.Config `yaml:"log"`
}

func main() {
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := db.InitDB(config.Database.Path); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("database initialized", zap.String("path", config.Database.Path))

	store := ml.NewStore(nil)
	if classifier, err := ml.LoadClassifier(config.Model.Dir); err != nil {
		logger.Warn("model artifact not loaded, predictions unavailable until one is published",
			zap.String("dir", config.Model.Dir),
			zap.Error(err))
	} else {
		store.Replace(classifier)
		logger.Info("model artifact loaded",
			zap.Strings("species_classes", classifier.Labels()),
			zap.Float64("accuracy", classifier.Accuracy()))
	}

	if config.Model.Watch {
		stopWatcher, err := ml.WatchArtifact(config.Model.Dir, store, logger)
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		} else {
			defer stopWatcher()
		}
	}

	hub := qhttp.NewPredictionHub(logger)
	go hub.Run()
	defer hub.Stop()

	api, err := qhttp.NewAPI(store, hub, config.Model.CacheSize, logger)
	if err != nil {
		logger.Fatal("failed to build API", zap.Error(err))
	}

	serverConfig := qhttp.DefaultServerConfig()
	if config.Http.Port > 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds > 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := qhttp.NewServer(serverConfig, api, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
