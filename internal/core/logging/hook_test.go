package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name      string
		setupCtx  func() context.Context
		wantKeys  []string
		wantEmpty []string
	}{
		{
			name: "both submission_id and step",
			setupCtx: func() context.Context {
				ctx := context.Background()
				ctx = WithSubmissionID(ctx, "sub-123")
				ctx = WithStep(ctx, 3)
				return ctx
			},
			wantKeys: []string{"submission_id", "step"},
		},
		{
			name: "only submission_id",
			setupCtx: func() context.Context {
				return WithSubmissionID(context.Background(), "sub-123")
			},
			wantKeys:  []string{"submission_id"},
			wantEmpty: []string{"step"},
		},
		{
			name: "only step",
			setupCtx: func() context.Context {
				return WithStep(context.Background(), 7)
			},
			wantKeys:  []string{"step"},
			wantEmpty: []string{"submission_id"},
		},
		{
			name:      "no context values",
			setupCtx:  context.Background,
			wantEmpty: []string{"submission_id", "step"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := tt.setupCtx()

			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(ctx).Msg("test")

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				t.Fatalf("failed to parse log: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := logEntry[key]; !ok {
					t.Errorf("expected %s to be present in log", key)
				}
			}

			for _, key := range tt.wantEmpty {
				if _, ok := logEntry[key]; ok {
					t.Errorf("expected %s to be absent from log", key)
				}
			}
		})
	}
}
