package repository

import (
	"os"
	"testing"

	"litreview/internal/cache"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	// repository tests exercise the database path; cache behaviour is covered in user_test.go
	cache.SetClient(nil)
	os.Exit(m.Run())
}
