package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	var buf bytes.Buffer
	orig := logging.Default()
	t.Cleanup(func() { logging.SetDefault(orig) })

	logging.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	logging.From(context.Background()).Info("hello")
	gt.S(t, buf.String()).Contains("hello")
}

func TestWithOverridesDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil)).With("request_id", "r-1")

	ctx := logging.With(context.Background(), logger)
	logging.From(ctx).Info("scoped")
	gt.S(t, buf.String()).Contains(`"request_id":"r-1"`)
}
