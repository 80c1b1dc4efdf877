// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantValid bool
		wantErr   error
	}{
		{
			name:   "disabled",
			config: Config{Service: "ovwigho"},
		},
		{
			name:      "zipkin",
			config:    Config{Enabled: true, SampleRate: 1, Service: "ovwigho", Version: "test"},
			wantValid: true,
		},
		{
			name:      "otlp",
			config:    Config{Enabled: true, SampleRate: 1, Exporter: ExporterOTLP, Endpoint: "localhost:4318", Service: "ovwigho"},
			wantValid: true,
		},
		{
			name:      "unsampled",
			config:    Config{Enabled: true, Service: "ovwigho"},
			wantValid: false,
		},
		{
			name:    "unknown exporter",
			config:  Config{Enabled: true, Exporter: "jaeger"},
			wantErr: ErrUnknownExporter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			tr, err := New(&tt.config)
			require.ErrorIs(err, tt.wantErr)
			if tt.wantErr != nil {
				return
			}
			_, span := tr.Start(context.Background(), "Ledger.SendTransaction")
			require.Equal(tt.wantValid, span.SpanContext().IsSampled())
			span.End()
			// No collector is listening, so a failed flush is expected.
			_ = tr.Close()
		})
	}
}
