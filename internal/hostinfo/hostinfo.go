// Package hostinfo identifies the machine being observed, for report
// and dashboard headers. Probe never fails: unreadable fields stay
// empty.
package hostinfo

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

// Probe returns hostname, kernel, platform and logical CPU count.
func Probe() model.Host {
	var h model.Host
	if info, err := host.Info(); err == nil && info != nil {
		h.Hostname = info.Hostname
		h.Kernel = info.KernelVersion
		h.Platform = info.Platform
		if info.PlatformVersion != "" {
			h.Platform += " " + info.PlatformVersion
		}
	}
	if n, err := cpu.Counts(true); err == nil {
		h.CPUs = n
	}
	return h
}

// Describe renders a one-line summary such as
// "framework (kernel 6.8.0, ubuntu 24.04, 16 CPUs)".
func Describe(h model.Host) string {
	name := h.Hostname
	if name == "" {
		name = "unknown host"
	}
	detail := ""
	add := func(s string) {
		if s == "" {
			return
		}
		if detail != "" {
			detail += ", "
		}
		detail += s
	}
	if h.Kernel != "" {
		add("kernel " + h.Kernel)
	}
	add(h.Platform)
	if h.CPUs > 0 {
		add(fmt.Sprintf("%d CPUs", h.CPUs))
	}
	if detail == "" {
		return name
	}
	return name + " (" + detail + ")"
}
