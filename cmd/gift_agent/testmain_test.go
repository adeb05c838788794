package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads .env if available so local runs see the same environment as the binary
func TestMain(m *testing.M) {
	// Missing .env is expected in CI
	_ = godotenv.Load()

	os.Exit(m.Run())
}
