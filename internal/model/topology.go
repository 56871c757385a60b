package model

import "strings"

// HidDevice is one I2C HID peripheral found in sysfs.
type HidDevice struct {
	ACPIName   string   `json:"acpi_name"` // "PIXA3854:00"
	VendorID   uint16   `json:"vendor_id"`
	ProductID  uint16   `json:"product_id"`
	DeviceType string   `json:"device_type"` // "Touchpad", "Touchscreen", ...
	Driver     string   `json:"driver,omitempty"`
	Bus        int      `json:"bus"`
	Controller string   `json:"controller"`
	GPIOIRQ    string   `json:"gpio_irq,omitempty"` // empty when not found in /proc/interrupts
	InputNames []string `json:"input_names,omitempty"`
}

// I2cController is one I2C bus controller and the HID devices on it.
type I2cController struct {
	Name    string      `json:"name"` // "i2c_designware.5"
	Bus     int         `json:"bus"`
	IRQ     string      `json:"irq,omitempty"`
	Devices []HidDevice `json:"devices"`
}

// Topology is the discovered controller/device hierarchy. Controllers
// are ordered by bus number.
type Topology struct {
	Controllers    []I2cController   `json:"controllers"`
	GPIOIRQs       map[string]string `json:"gpio_irqs"`       // ACPI name -> IRQ
	ControllerIRQs map[string]string `json:"controller_irqs"` // controller name -> IRQ
}

// ControllerType is the device type label of controller sources.
const ControllerType = "I2C Controller"

// InterruptSourceInfo is a flattened, displayable interrupt source.
type InterruptSourceInfo struct {
	IRQ              string
	Name             string
	DeviceType       string
	IsController     bool
	ParentController string // empty for controllers
	Indent           int
}

// Sources flattens the topology into the rows that can be sampled.
// Controllers and devices without an IRQ are skipped.
func (t Topology) Sources() []InterruptSourceInfo {
	var sources []InterruptSourceInfo
	for _, c := range t.Controllers {
		if c.IRQ != "" {
			name := c.Name
			if len(c.Devices) > 0 {
				types := make([]string, 0, len(c.Devices))
				for _, d := range c.Devices {
					types = append(types, d.DeviceType)
				}
				name += " (" + strings.Join(types, ", ") + ")"
			}
			sources = append(sources, InterruptSourceInfo{
				IRQ:          c.IRQ,
				Name:         name,
				DeviceType:   ControllerType,
				IsController: true,
			})
		}
		for _, d := range c.Devices {
			if d.GPIOIRQ == "" {
				continue
			}
			sources = append(sources, InterruptSourceInfo{
				IRQ:              d.GPIOIRQ,
				Name:             d.ACPIName,
				DeviceType:       d.DeviceType,
				ParentController: c.Name,
				Indent:           1,
			})
		}
	}
	return sources
}
