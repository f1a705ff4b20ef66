package services_test

import (
	"context"
	"testing"

	"downconv/internal/services"
)

func TestContextValues(t *testing.T) {
	ctx := services.WithStage(services.WithItem(services.WithRunID(context.Background(), "run-1"), "song.wav"), "convert")

	tests := []struct {
		name string
		get  func(context.Context) (string, bool)
		want string
	}{
		{"run id", services.RunIDFromContext, "run-1"},
		{"item", services.ItemFromContext, "song.wav"},
		{"stage", services.StageFromContext, "convert"},
	}
	for _, tt := range tests {
		if got, ok := tt.get(ctx); !ok || got != tt.want {
			t.Fatalf("%s: got (%q, %v), want %q", tt.name, got, ok, tt.want)
		}
	}
}

func TestEmptyValuesLeaveContextUntouched(t *testing.T) {
	base := context.Background()
	if ctx := services.WithItem(base, ""); ctx != base {
		t.Fatal("expected the same context for an empty item")
	}
	if _, ok := services.StageFromContext(services.WithStage(base, "")); ok {
		t.Fatal("expected no stage value")
	}
}
