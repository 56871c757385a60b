package discovery

import (
	"strconv"
	"strings"
)

// gpioMarkers identify /proc/interrupts rows raised by a GPIO controller.
var gpioMarkers = []string{"intel-gpio", "pinctrl", "amd_gpio"}

const controllerMarker = "i2c_designware"

// ParseIRQOwners scans interrupt table text for GPIO rows owned by an
// ACPI device and for I2C controller rows. A single IRQ may be shared
// by several controllers ("idma64.1, i2c_designware.1").
func ParseIRQOwners(content string) (gpio, controllers map[string]string) {
	gpio = make(map[string]string)
	controllers = make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		irq, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		irq = strings.TrimSpace(irq)

		if isGPIOLine(line) {
			if name, ok := ExtractACPIName(line); ok {
				gpio[name] = irq
			}
		}
		if strings.Contains(line, controllerMarker) {
			for _, tok := range strings.FieldsFunc(line, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' }) {
				if strings.Contains(tok, controllerMarker) {
					controllers[tok] = irq
				}
			}
		}
	}
	return gpio, controllers
}

func isGPIOLine(line string) bool {
	for _, m := range gpioMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// ExtractACPIName returns the last token of an interrupt row that looks
// like an ACPI device name ("PIXA3854:00"): it holds a colon and starts
// with an uppercase letter. Chip annotations such as "IR-IO-APIC" or
// "PCI-MSI" are skipped.
func ExtractACPIName(line string) (string, bool) {
	fields := strings.Fields(line)
	for i := len(fields) - 1; i >= 0; i-- {
		tok := fields[i]
		if !strings.Contains(tok, ":") {
			continue
		}
		if tok[0] < 'A' || tok[0] > 'Z' {
			continue
		}
		if strings.Contains(tok, "IR-") || strings.Contains(tok, "PCI-") {
			continue
		}
		return tok, true
	}
	return "", false
}

// ControllerFromPath returns the i2c_designware.N segment of a sysfs
// device path, or "unknown".
func ControllerFromPath(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, controllerMarker+".") {
			return seg
		}
	}
	return "unknown"
}

// BusFromPath returns N from the first i2c-N segment of a sysfs device
// path, or 0.
func BusFromPath(path string) int {
	for _, seg := range strings.Split(path, "/") {
		num, ok := strings.CutPrefix(seg, "i2c-")
		if !ok {
			continue
		}
		if n, err := strconv.ParseUint(num, 10, 8); err == nil {
			return int(n)
		}
	}
	return 0
}

// ParseHIDID extracts vendor and product from a HID bus device name of
// the form "BBBB:VVVV:PPPP.NNNN". Unparseable parts are zero.
func ParseHIDID(name string) (vendor, product uint16) {
	parts := strings.Split(name, ":")
	if len(parts) < 3 {
		return 0, 0
	}
	vendor = parseHex16(parts[1])
	pid, _, _ := strings.Cut(parts[2], ".")
	product = parseHex16(pid)
	return vendor, product
}

func parseHex16(s string) uint16 {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0
	}
	return uint16(v)
}

// ParseUeventDriver returns the DRIVER= value of a uevent file.
func ParseUeventDriver(uevent string) string {
	var driver string
	for _, line := range strings.Split(uevent, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "DRIVER="); ok {
			driver = v
		}
	}
	return driver
}
