package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	MongoURI        string `yaml:"mongo_uri"`
	MongoDB         string `yaml:"mongo_db"`
	RedisAddr       string `yaml:"redis_addr"`
	RedisPass       string `yaml:"redis_password"`
	HTTPPort        string `yaml:"http_port"`
	DataDir         string `yaml:"data_dir"`
	OutputDir       string `yaml:"output_dir"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	LogLevel        string `yaml:"log_level"`
}

// Load lee .env (si existe) y las variables de entorno, con defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "movielens_100k"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPass:       getEnv("REDIS_PASSWORD", ""),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DataDir:         getEnv("DATA_DIR", "ml-100k"),
		OutputDir:       getEnv("OUTPUT_DIR", "charts"),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 3600),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

// LoadFile aplica encima de cfg los valores no vacíos del YAML en path.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("leyendo config %s: %w", path, err)
	}

	var overlay Config
	if err := yaml.Unmarshal(b, &overlay); err != nil {
		return fmt.Errorf("parseando config %s: %w", path, err)
	}
	c.merge(&overlay)
	return nil
}

func (c *Config) merge(o *Config) {
	setIfNotEmpty(&c.MongoURI, o.MongoURI)
	setIfNotEmpty(&c.MongoDB, o.MongoDB)
	setIfNotEmpty(&c.RedisAddr, o.RedisAddr)
	setIfNotEmpty(&c.RedisPass, o.RedisPass)
	setIfNotEmpty(&c.HTTPPort, o.HTTPPort)
	setIfNotEmpty(&c.DataDir, o.DataDir)
	setIfNotEmpty(&c.OutputDir, o.OutputDir)
	setIfNotEmpty(&c.LogLevel, o.LogLevel)
	if o.CacheTTLSeconds > 0 {
		c.CacheTTLSeconds = o.CacheTTLSeconds
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Printf("[config] %s no está seteado, usando valor por defecto\n", key)
		return def
	}
	return v
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] %s=%q inválido, usando %d\n", key, v, def)
		return def
	}
	return n
}
