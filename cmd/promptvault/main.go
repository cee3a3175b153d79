package main

import (
	"log"

	"github.com/MrSnakeDoc/promptvault/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ promptvault failed to start: %v", err)
	}
}
