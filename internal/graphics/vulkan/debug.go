package vulkan

import (
	"log"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Severity of a validation message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "info"
}

// DebugSink receives validation layer messages. It is passed to NewInstance
// rather than installed globally.
type DebugSink interface {
	Message(sev Severity, layer, msg string)
}

// LogSink writes validation messages to a standard logger.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Message(sev Severity, layer, msg string) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf("vulkan %s [%s]: %s", sev, layer, msg)
}

func severityOf(flags vk.DebugReportFlags) Severity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return SeverityWarning
	}
	return SeverityInfo
}

func installDebugReport(instance vk.Instance, sink DebugSink) (vk.DebugReportCallback, error) {
	info := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vk.DebugReportFlags, _ vk.DebugReportObjectType, _ uint64, _ uint,
			_ int32, layer string, msg string, _ unsafe.Pointer) vk.Bool32 {
			sink.Message(severityOf(flags), layer, msg)
			return vk.False
		},
	}
	var cb vk.DebugReportCallback
	if err := Check("vkCreateDebugReportCallbackEXT", vk.CreateDebugReportCallback(instance, &info, nil, &cb)); err != nil {
		return cb, err
	}
	return cb, nil
}
