package discovery

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// writeSyntheticFile creates a file under root, creating parents.
func writeSyntheticFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", full, err)
	}
}

// linkHIDDevice adds a bound i2c_hid_acpi entry whose symlink target
// encodes the controller and bus.
func linkHIDDevice(t *testing.T, sysRoot, acpi, target string) {
	t.Helper()
	dir := filepath.Join(sysRoot, hidDriverDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.Symlink(target, filepath.Join(dir, "i2c-"+acpi)); err != nil {
		t.Fatalf("symlink: %v", err)
	}
}

const syntheticInterrupts = `            CPU0       CPU1
  27:       1200          0  IR-IO-APIC   27-fasteoi   idma64.1, i2c_designware.1
  42:        100          0  PCI-MSI 12345-edge   i2c_designware.0
 203:          0      21323  intel-gpio   18  PIXA3854:00
 LOC:     123456     234567   Local timer interrupts
`

func TestDiscoverSyntheticTree(t *testing.T) {
	root := t.TempDir()
	sysRoot := filepath.Join(root, "sys")
	writeSyntheticFile(t, root, "proc/interrupts", syntheticInterrupts)

	linkHIDDevice(t, sysRoot, "PIXA3854:00",
		"../../../../devices/pci0000:00/0000:00:15.1/i2c_designware.1/i2c-1/i2c-PIXA3854:00")
	linkHIDDevice(t, sysRoot, "ELAN2513:00",
		"../../../../devices/pci0000:00/0000:00:15.0/i2c_designware.0/i2c-0/i2c-ELAN2513:00")
	// Driver control files are not devices.
	writeSyntheticFile(t, sysRoot, filepath.Join(hidDriverDir, "bind"), "")

	writeSyntheticFile(t, sysRoot, "bus/hid/devices/0018:093A:0274.0001/uevent",
		"DRIVER=hid-multitouch\nHID_PHYS=i2c-PIXA3854:00\n")
	writeSyntheticFile(t, sysRoot, "bus/hid/devices/0018:093A:0274.0001/input/input12/name",
		"PIXA3854:00 093A:0274 Mouse\n")
	writeSyntheticFile(t, sysRoot, "bus/hid/devices/0018:093A:0274.0001/input/input13/name",
		"PIXA3854:00 093A:0274 Touchpad\n")
	writeSyntheticFile(t, sysRoot, "bus/hid/devices/0018:04F3:2F4B.0002/uevent",
		"DRIVER=hid-multitouch\nHID_PHYS=i2c-ELAN2513:00\n")
	// USB HID devices are ignored even if they mention the name.
	writeSyntheticFile(t, sysRoot, "bus/hid/devices/0003:046D:C52B.0003/uevent",
		"DRIVER=hid-generic\nHID_PHYS=i2c-PIXA3854:00\n")

	topo, err := DiscoverFrom(filepath.Join(root, "proc/interrupts"), sysRoot, quietLogger())
	if err != nil {
		t.Fatalf("DiscoverFrom: %v", err)
	}

	if len(topo.Controllers) != 2 {
		t.Fatalf("got %d controllers, want 2", len(topo.Controllers))
	}
	c0, c1 := topo.Controllers[0], topo.Controllers[1]
	if c0.Name != "i2c_designware.0" || c0.Bus != 0 || c0.IRQ != "42" {
		t.Errorf("controller 0 = %+v", c0)
	}
	if c1.Name != "i2c_designware.1" || c1.Bus != 1 || c1.IRQ != "27" {
		t.Errorf("controller 1 = %+v", c1)
	}

	screen := c0.Devices[0]
	if screen.DeviceType != "Touchscreen" || screen.VendorID != 0x04F3 || screen.GPIOIRQ != "" {
		t.Errorf("touchscreen = %+v", screen)
	}

	if len(c1.Devices) != 1 {
		t.Fatalf("controller 1 has %d devices, want 1", len(c1.Devices))
	}
	pad := c1.Devices[0]
	if pad.ACPIName != "PIXA3854:00" {
		t.Errorf("ACPIName = %q", pad.ACPIName)
	}
	if pad.VendorID != 0x093A || pad.ProductID != 0x0274 {
		t.Errorf("id = %04X:%04X, want 093A:0274", pad.VendorID, pad.ProductID)
	}
	if pad.Driver != "hid-multitouch" {
		t.Errorf("Driver = %q", pad.Driver)
	}
	if pad.GPIOIRQ != "203" {
		t.Errorf("GPIOIRQ = %q, want 203", pad.GPIOIRQ)
	}
	if pad.DeviceType != "Touchpad" {
		t.Errorf("DeviceType = %q, want Touchpad", pad.DeviceType)
	}
	if len(pad.InputNames) != 2 {
		t.Errorf("InputNames = %v", pad.InputNames)
	}
	if pad.Controller != "i2c_designware.1" || pad.Bus != 1 {
		t.Errorf("owner = %s bus %d", pad.Controller, pad.Bus)
	}
}

func TestDiscoverSingleControllerRoundTrip(t *testing.T) {
	root := t.TempDir()
	sysRoot := filepath.Join(root, "sys")
	writeSyntheticFile(t, root, "proc/interrupts",
		"      CPU0\n  42:   100  PCI-MSI 1-edge  i2c_designware.0\n 200:   5  intel-gpio  33  FRMW0005:00\n")
	linkHIDDevice(t, sysRoot, "FRMW0005:00", "../../../../devices/platform/i2c_designware.0/i2c-0/i2c-FRMW0005:00")

	topo, err := DiscoverFrom(filepath.Join(root, "proc/interrupts"), sysRoot, quietLogger())
	if err != nil {
		t.Fatalf("DiscoverFrom: %v", err)
	}
	if len(topo.Controllers) != 1 || len(topo.Controllers[0].Devices) != 1 {
		t.Fatalf("topology = %+v", topo)
	}
	if topo.Controllers[0].IRQ != "42" || topo.Controllers[0].Devices[0].GPIOIRQ != "200" {
		t.Errorf("IRQs not attached: %+v", topo.Controllers[0])
	}
	// No HID bus directory: device falls back to the generic label.
	if got := topo.Controllers[0].Devices[0].DeviceType; got != "HID Device" {
		t.Errorf("DeviceType = %q, want HID Device", got)
	}
	if err := Validate(topo); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestDiscoverMissingSysfs(t *testing.T) {
	root := t.TempDir()
	writeSyntheticFile(t, root, "interrupts", syntheticInterrupts)

	topo, err := DiscoverFrom(filepath.Join(root, "interrupts"), filepath.Join(root, "nosys"), quietLogger())
	if err != nil {
		t.Fatalf("DiscoverFrom: %v", err)
	}
	if len(topo.Controllers) != 0 {
		t.Errorf("got %d controllers, want 0", len(topo.Controllers))
	}
	if topo.ControllerIRQs["i2c_designware.1"] != "27" {
		t.Errorf("controller IRQs = %v", topo.ControllerIRQs)
	}
	if !errors.Is(Validate(topo), ErrNoControllers) {
		t.Errorf("Validate: got %v, want ErrNoControllers", Validate(topo))
	}
}

func TestDiscoverMissingInterrupts(t *testing.T) {
	_, err := DiscoverFrom(filepath.Join(t.TempDir(), "missing"), t.TempDir(), quietLogger())
	if !errors.Is(err, ErrInputUnavailable) {
		t.Errorf("got %v, want ErrInputUnavailable", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want wrapped os.ErrNotExist", err)
	}
}

func TestValidateNoSources(t *testing.T) {
	topo := model.Topology{Controllers: []model.I2cController{{
		Name:    "i2c_designware.2",
		Devices: []model.HidDevice{{ACPIName: "X"}},
	}}}
	if !errors.Is(Validate(topo), ErrNoSources) {
		t.Errorf("got %v, want ErrNoSources", Validate(topo))
	}
}
