package discovery

import (
	"strings"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

// vendorPixArt makes touchpads; other hid-multitouch vendors are
// assumed to be touchscreens. This is a coarse guess with no second
// signal (axis ranges, physical size) behind it.
const vendorPixArt = 0x093A

// Classify labels a device. Input names win over driver heuristics.
func Classify(d model.HidDevice) string {
	for _, name := range d.InputNames {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "touchpad"):
			return "Touchpad"
		case strings.Contains(lower, "touchscreen"):
			return "Touchscreen"
		case strings.Contains(lower, "stylus"), strings.Contains(lower, "pen"):
			return "Stylus"
		case strings.Contains(lower, "keyboard"):
			return "Keyboard"
		}
	}

	switch d.Driver {
	case "hid-multitouch":
		if d.VendorID == vendorPixArt {
			return "Touchpad"
		}
		return "Touchscreen"
	case "hid-sensor-hub":
		return "Sensor Hub"
	case "hid-generic":
		for _, name := range d.InputNames {
			if strings.Contains(name, "Radio") || strings.Contains(name, "Consumer") {
				return "Keyboard/Controls"
			}
		}
		return "Input Device"
	}
	return "HID Device"
}
