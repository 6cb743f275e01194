package app

import (
	"os"
	"sync"
	"sync/atomic"
)

const testModeEnv = "VOYAGEOS_TEST_MODE"

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(testModeEnv) == "1")
}

// InTestMode reports whether binaries should skip connecting to Postgres, Redis and friends.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}

// RefreshTestMode re-reads the flag after the environment changes.
func RefreshTestMode() {
	testModeOnce.Do(func() {})
	detectTestMode()
}
