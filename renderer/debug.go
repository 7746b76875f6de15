package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

const debugReportFlags = vk.DebugReportFlags(vk.DebugReportErrorBit |
	vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit)

// DebugReporter forwards validation layer messages to a logger.
type DebugReporter struct {
	instance vk.Instance
	callback vk.DebugReportCallback
	log      *slog.Logger
}

func NewDebugReporter(instance *Instance, log *slog.Logger) (*DebugReporter, error) {
	d := &DebugReporter{
		instance: instance.Handle,
		log:      log.With("layer", "validation"),
	}
	dbgCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       debugReportFlags,
		PfnCallback: d.callbackFunc,
	}
	err := vk.Error(vk.CreateDebugReportCallback(instance.Handle, &dbgCreateInfo, nil, &d.callback))
	if err != nil {
		err = fmt.Errorf("vkCreateDebugReportCallbackEXT failed with %w", err)
		return nil, err
	}
	return d, nil
}

func (d *DebugReporter) callbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	d.report(flags, messageCode, pLayerPrefix, pMessage)
	return vk.Bool32(vk.False)
}

func (d *DebugReporter) report(flags vk.DebugReportFlags, code int32, prefix, message string) {
	level := slog.LevelInfo
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		level = slog.LevelError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		level = slog.LevelWarn
	}
	d.log.Log(context.Background(), level, message, "prefix", prefix, "code", code)
}

func (d *DebugReporter) Destroy() {
	if d == nil || d.callback == vk.NullDebugReportCallback {
		return
	}
	vk.DestroyDebugReportCallback(d.instance, d.callback, nil)
	d.callback = vk.NullDebugReportCallback
}
