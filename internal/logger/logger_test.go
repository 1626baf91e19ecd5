package logger

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level       string
		development bool
		want        zapcore.Level
		wantErr     bool
	}{
		{level: "info", want: zapcore.InfoLevel},
		{level: "debug", development: true, want: zapcore.DebugLevel},
		{level: "warn", want: zapcore.WarnLevel},
		{level: "shout", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, tt.development)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.want) {
				t.Errorf("level %s should be enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
				t.Errorf("level %s should be disabled", tt.want-1)
			}
		})
	}
}

func TestRequestFields(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/users/u1/layout?date=2025-01-06", nil)
	fields := RequestFields(r)
	if len(fields) != 4 {
		t.Fatalf("expected 4 fields, got %d", len(fields))
	}
	if fields[1].String != "/api/users/u1/layout" {
		t.Errorf("unexpected path field: %q", fields[1].String)
	}
	if fields[2].String != "date=2025-01-06" {
		t.Errorf("unexpected query field: %q", fields[2].String)
	}
}
