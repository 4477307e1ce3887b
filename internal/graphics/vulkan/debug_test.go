package vulkan

import (
	"bytes"
	"log"
	"strings"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestSeverityOf(t *testing.T) {
	tests := []struct {
		flags vk.DebugReportFlags
		want  Severity
	}{
		{vk.DebugReportFlags(vk.DebugReportErrorBit), SeverityError},
		{vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit), SeverityError},
		{vk.DebugReportFlags(vk.DebugReportWarningBit), SeverityWarning},
		{vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit), SeverityWarning},
		{vk.DebugReportFlags(vk.DebugReportInformationBit), SeverityInfo},
	}
	for _, tt := range tests {
		if got := severityOf(tt.flags); got != tt.want {
			t.Errorf("severityOf(%d): got %v, want %v", tt.flags, got, tt.want)
		}
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := LogSink{Logger: log.New(&buf, "", 0)}
	sink.Message(SeverityWarning, "Validation", "image layout mismatch")
	got := strings.TrimSpace(buf.String())
	if got != "vulkan warning [Validation]: image layout mismatch" {
		t.Fatalf("log line: got %q", got)
	}
}
