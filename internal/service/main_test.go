package service

import (
	"os"
	"testing"

	"litreview/internal/cache"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	cache.SetClient(nil)
	os.Exit(m.Run())
}
