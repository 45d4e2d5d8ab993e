package obs

import (
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	bootID atomic.Value // string
	base   atomic.Pointer[zap.SugaredLogger]
)

// Init wires the process-wide zap logger. mode: "prod" => JSON production
// config, anything else => development console. Call once from main.
func Init(service, mode string) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		// zap config 出错没有降级余地，直接退
		log.Fatalf("obs: build logger: %v", err)
	}

	id := service + "#" + uuid.NewString()[:8]
	bootID.Store(id)
	base.Store(zl.Sugar().With("service", service, "boot", id))

	L("boot").Infow("started", "pid", os.Getpid())
}

// L returns a component-tagged logger. Safe before Init (falls back to a
// no-op development logger) so tests don't need boot plumbing.
func L(component string) *zap.SugaredLogger {
	if l := base.Load(); l != nil {
		return l.With("component", component)
	}
	return zap.NewNop().Sugar()
}

// BootID returns the process boot identifier, empty before Init.
func BootID() string {
	if v, ok := bootID.Load().(string); ok {
		return v
	}
	return ""
}

// Sync flushes buffered log entries; call on shutdown.
func Sync() {
	if l := base.Load(); l != nil {
		_ = l.Sync()
	}
}
