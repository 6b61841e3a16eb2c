package config

import (
	"log"
	"os"
)

type Config struct {
	MySQLDSN string
	RedisURL string
	OMDBKey  string
	OMDBURL  string
	Port     string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	return Config{
		MySQLDSN: getenv("MYSQL_DSN", ""),
		RedisURL: os.Getenv("REDIS_URL"), // optional; empty disables the event stream
		OMDBKey:  getenv("OMDB_KEY", ""),
		OMDBURL:  getenv("OMDB_URL", "https://www.omdbapi.com"),
		Port:     getenv("PORT", "8080"),
	}
}
