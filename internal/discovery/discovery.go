// Package discovery reconstructs the I2C HID topology of the host: which
// I2C controller each HID device hangs off, and which /proc/interrupts
// lines belong to the controllers and to the devices' GPIO pins.
//
// Parsing lives in pure functions over already-read text and paths
// (ParseIRQOwners, ExtractACPIName, ControllerFromPath, ...); the walk in
// DiscoverFrom only gathers that text from a /proc and /sys root.
package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Dicklesworthstone/i2c-int-monitor/internal/counters"
	"github.com/Dicklesworthstone/i2c-int-monitor/internal/model"
)

var (
	// ErrInputUnavailable means the interrupt table could not be read.
	ErrInputUnavailable = errors.New("interrupt table unavailable")
	// ErrNoControllers means no I2C controller with HID devices exists.
	ErrNoControllers = errors.New("no I2C controllers with HID devices found")
	// ErrNoSources means devices exist but none has a trackable IRQ.
	ErrNoSources = errors.New("no interrupt sources found for the discovered I2C devices")
)

// Hint explains an empty topology to the user.
const Hint = `This may mean:
  - No I2C HID device is present
  - The touchpad uses a different driver (PS/2, USB)
  - The I2C controller uses a different driver`

const (
	hidDriverDir = "bus/i2c/drivers/i2c_hid_acpi"
	hidBusDir    = "bus/hid/devices"
	hidBusI2C    = "0018:"
)

// Discover builds the topology from /proc/interrupts and /sys.
func Discover(logger *slog.Logger) (model.Topology, error) {
	return DiscoverFrom(counters.ProcPath, "/sys", logger)
}

// DiscoverFrom is Discover against an arbitrary interrupt table and sysfs
// root, so tests can point it at a synthetic tree. Missing sysfs
// directories produce an empty topology, not an error.
func DiscoverFrom(interruptsPath, sysRoot string, logger *slog.Logger) (model.Topology, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}

	b, err := os.ReadFile(interruptsPath)
	if err != nil {
		return model.Topology{}, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	topo := model.Topology{}
	topo.GPIOIRQs, topo.ControllerIRQs = ParseIRQOwners(string(b))
	logger.Debug("parsed interrupt owners",
		"gpio", len(topo.GPIOIRQs), "controllers", len(topo.ControllerIRQs))

	byName := make(map[string]*model.I2cController)
	driverDir := filepath.Join(sysRoot, hidDriverDir)
	entries, err := os.ReadDir(driverDir)
	if err != nil {
		logger.Debug("no i2c_hid_acpi driver directory", "path", driverDir, "err", err)
	}
	for _, entry := range entries {
		acpi, ok := strings.CutPrefix(entry.Name(), "i2c-")
		if !ok {
			continue
		}
		target, err := os.Readlink(filepath.Join(driverDir, entry.Name()))
		if err != nil {
			logger.Debug("unreadable device link", "device", entry.Name(), "err", err)
		}
		ctrlName := ControllerFromPath(target)
		bus := BusFromPath(target)

		dev := model.HidDevice{
			ACPIName:   acpi,
			Bus:        bus,
			Controller: ctrlName,
			GPIOIRQ:    topo.GPIOIRQs[acpi],
		}
		if dev.GPIOIRQ == "" {
			logger.Debug("device has no GPIO interrupt", "device", acpi)
		}
		describeHID(&dev, filepath.Join(sysRoot, hidBusDir), logger)
		dev.DeviceType = Classify(dev)

		ctrl, ok := byName[ctrlName]
		if !ok {
			ctrl = &model.I2cController{
				Name: ctrlName,
				Bus:  bus,
				IRQ:  topo.ControllerIRQs[ctrlName],
			}
			byName[ctrlName] = ctrl
		}
		ctrl.Devices = append(ctrl.Devices, dev)
	}

	for _, c := range byName {
		topo.Controllers = append(topo.Controllers, *c)
	}
	sort.SliceStable(topo.Controllers, func(i, j int) bool {
		a, b := topo.Controllers[i], topo.Controllers[j]
		if a.Bus != b.Bus {
			return a.Bus < b.Bus
		}
		return a.Name < b.Name
	})
	return topo, nil
}

// describeHID fills identity, driver and input names from the first HID
// bus device whose uevent mentions the device's ACPI name.
func describeHID(dev *model.HidDevice, hidDir string, logger *slog.Logger) {
	entries, err := os.ReadDir(hidDir)
	if err != nil {
		logger.Debug("no HID bus directory", "path", hidDir, "err", err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, hidBusI2C) {
			continue
		}
		uevent, err := os.ReadFile(filepath.Join(hidDir, name, "uevent"))
		if err != nil || !strings.Contains(string(uevent), dev.ACPIName) {
			continue
		}

		dev.VendorID, dev.ProductID = ParseHIDID(name)
		if dev.VendorID == 0 {
			logger.Debug("unparsed HID id", "name", name)
		}
		dev.Driver = ParseUeventDriver(string(uevent))
		dev.InputNames = readInputNames(filepath.Join(hidDir, name, "input"))
		return
	}
}

func readInputNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		b, err := os.ReadFile(filepath.Join(dir, entry.Name(), "name"))
		if err != nil {
			continue
		}
		names = append(names, strings.TrimSpace(string(b)))
	}
	return names
}

// Validate reports why a topology cannot be monitored, or nil.
func Validate(topo model.Topology) error {
	if len(topo.Controllers) == 0 {
		return ErrNoControllers
	}
	if len(topo.Sources()) == 0 {
		return ErrNoSources
	}
	return nil
}
