package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithAttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithTraceID(context.Background(), "req-123")
	ctx = WithSessionPrefix(ctx, "abcd1234")

	With(ctx, &base).Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"trace_id":"req-123"`) {
		t.Fatalf("trace_id missing from output: %s", out)
	}
	if !strings.Contains(out, `"session_prefix":"abcd1234"`) {
		t.Fatalf("session_prefix missing from output: %s", out)
	}
}

func TestWithEmptyContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	With(context.Background(), &base).Info().Msg("hello")

	out := buf.String()
	if strings.Contains(out, "trace_id") || strings.Contains(out, "session_prefix") {
		t.Fatalf("unexpected fields on bare context: %s", out)
	}
}

func TestTraceDurationEmitsStartAndFinish(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).Level(zerolog.TraceLevel)
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(prev)

	done := TraceDuration(&base, "UC.Op")
	done()

	out := buf.String()
	if !strings.Contains(out, `"method":"UC.Op"`) {
		t.Fatalf("method field missing: %s", out)
	}
	if !strings.Contains(out, "start") || !strings.Contains(out, "finish") {
		t.Fatalf("start/finish pair missing: %s", out)
	}
	if !strings.Contains(out, "duration") {
		t.Fatalf("duration missing from finish line: %s", out)
	}
}

func TestRedact(t *testing.T) {
	cases := []struct {
		name string
		in   string
		dev  bool
		want string
	}{
		{"dev passthrough", "I want to hurt myself", true, "I want to hurt myself"},
		{"short is fully hidden", "hi doc", false, "***"},
		{"long keeps a preview", "I think I need to see a doctor", false, "I th...or"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Redact(tc.in, tc.dev); got != tc.want {
				t.Fatalf("Redact(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
