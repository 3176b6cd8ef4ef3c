package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.False(t, cfg.Enabled)
	require.Equal(t, ExporterFile, cfg.Exporter)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "richinput", cfg.ServiceName)
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled bool
		wantErr string
	}{
		{name: "disabled", cfg: Config{}, enabled: false},
		{name: "no exporter", cfg: Config{Enabled: true, Exporter: ExporterNone}, enabled: true},
		{name: "stdout", cfg: Config{Enabled: true, Exporter: ExporterStdout}, enabled: true},
		{name: "file without path", cfg: Config{Enabled: true, Exporter: ExporterFile}, wantErr: "file_path required"},
		{name: "unknown exporter", cfg: Config{Enabled: true, Exporter: "zipkin"}, wantErr: "unsupported exporter type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.enabled, p.Enabled())
			require.NotNil(t, p.Tracer())

			_, span := p.Tracer().Start(context.Background(), "test-span")
			span.End()
			require.NoError(t, p.Shutdown(context.Background()))
		})
	}
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	p, err := NewProvider(Config{Enabled: true, Exporter: ExporterFile, FilePath: path})
	require.NoError(t, err)

	_, span := Start(context.Background(), p.Tracer(), SpanApplyTextEdit, attribute.Int(AttrTextLength, 3))
	End(span, nil)
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec SpanRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	require.Equal(t, SpanApplyTextEdit, rec.Name)
	require.Equal(t, "OK", rec.Status)
	require.EqualValues(t, 3, rec.Attributes[AttrTextLength])
}

func TestValidExporter(t *testing.T) {
	for _, name := range []string{"", ExporterNone, ExporterFile, ExporterStdout, ExporterOTLP} {
		require.True(t, ValidExporter(name), name)
	}
	require.False(t, ValidExporter("jaeger"))
}

func TestStartEnd(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	_, span := Start(context.Background(), tracer, SpanToggleTag, attribute.String(AttrTag, "b"))
	End(span, nil)
	_, span = Start(context.Background(), tracer, SpanEndEdit)
	End(span, errors.New("rejected"))

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	require.Equal(t, SpanToggleTag, ended[0].Name())
	require.Equal(t, codes.Ok, ended[0].Status().Code)
	require.Contains(t, ended[0].Attributes(), attribute.String(AttrTag, "b"))
	require.Equal(t, codes.Error, ended[1].Status().Code)
	require.Equal(t, "rejected", ended[1].Status().Description)
	require.Len(t, ended[1].Events(), 1)

	// A nil tracer never panics.
	_, span = Start(context.Background(), nil, SpanEndEdit)
	End(span, nil)
}

func TestFileExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"existing":true}`+"\n"), 0600))

	exporter, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stub := tracetest.SpanStub{
		Name:       SpanKeyboardEvent,
		StartTime:  start,
		EndTime:    start.Add(250 * time.Millisecond),
		Status:     sdktrace.Status{Code: codes.Error, Description: "queue closed"},
		Attributes: []attribute.KeyValue{attribute.String(AttrKeyboardEvent, "done")},
		Events:     []sdktrace.Event{{Name: EventRejected, Time: start}},
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))
	require.Error(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)

	var rec SpanRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	require.Equal(t, SpanKeyboardEvent, rec.Name)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "queue closed", rec.StatusMsg)
	require.Equal(t, 250.0, rec.DurationMs)
	require.Equal(t, "done", rec.Attributes[AttrKeyboardEvent])
	require.Len(t, rec.Events, 1)
	require.Equal(t, EventRejected, rec.Events[0].Name)
	require.Empty(t, rec.ParentSpanID)
}
