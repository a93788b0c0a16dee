package utils

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv copies variables from dotenv files into the process environment so
// DATABASE_URL and MODELFORGE_* settings can live next to the project. It
// reads ".env" when no files are named. Variables that are already set are
// left alone. The result reports whether any file was read.
func LoadEnv(files ...string) bool {
	if len(files) == 0 {
		files = []string{".env"}
	}

	loaded := false
	for _, file := range files {
		err := godotenv.Load(file)
		switch {
		case err == nil:
			loaded = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			log.Printf("⚠️  Skipping %s: %v", file, err)
		}
	}
	if !loaded {
		log.Println("ℹ️  No .env file found; using DATABASE_URL from the environment or modelforge.yaml")
	}
	return loaded
}
