package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		log, err := New(Config{Level: "info", Format: "json"})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if log == nil {
			t.Fatal("logger is nil")
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		if _, err := New(Config{Level: "loud", Format: "json"}); err == nil {
			t.Error("expected error for invalid level")
		}
	})
}

func TestContextHelpersChain(t *testing.T) {
	// Each helper must return the wrapper type so call sites can keep
	// chaining wrapper methods.
	var log *Logger = Nop().
		WithComponent("store").
		With(zap.String("file", "data.json")).
		WithRequestID("req-1").
		WithBatch(7)

	if log == nil {
		t.Fatal("chained logger is nil")
	}
	log.Info("still usable")
}
