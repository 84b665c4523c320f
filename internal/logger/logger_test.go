package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info().Str("component", "sync").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"component":"sync"`) {
		t.Errorf("output missing structured field: %s", out)
	}
	if !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("output missing message: %s", out)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	ctx := WithContext(context.Background(), log)
	got := FromContext(ctx)

	got.Info().Msg("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Error("logger from context did not write to the original writer")
	}
}

func TestFromContextFallback(t *testing.T) {
	// A bare context must still yield a usable logger.
	log := FromContext(context.Background())
	log.Debug().Msg("no panic")
}
