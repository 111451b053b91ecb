package recording

import (
	"fmt"
	"sort"
	"sync"
)

// DeviceFactory creates a device whose default framebuffer is width x
// height pixels. Factories are registered via Register and called by
// NewDevice.
type DeviceFactory func(width, height int) (Device, error)

var (
	registryMu sync.RWMutex
	devices    = make(map[string]DeviceFactory)
)

// Register registers a device factory with the given name. It is typically
// called from init() in device packages, following the database/sql driver
// pattern:
//
//	func init() {
//	    recording.Register("raster", func(w, h int) (recording.Device, error) {
//	        return New(w, h), nil
//	    })
//	}
//
// Register panics if factory is nil or if a device with the same name is
// already registered.
func Register(name string, factory DeviceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("recording: Register factory is nil")
	}
	if _, dup := devices[name]; dup {
		panic("recording: Register called twice for " + name)
	}
	devices[name] = factory
}

// Unregister removes a device from the registry. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(devices, name)
}

// NewDevice creates a device by name. The error message hints at a
// forgotten import when the name is unknown.
func NewDevice(name string, width, height int) (Device, error) {
	registryMu.RLock()
	factory, ok := devices[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("recording: unknown device %q (forgotten import?)", name)
	}
	d, err := factory(width, height)
	if err != nil {
		return nil, fmt.Errorf("recording: create device %q: %w", name, err)
	}
	return d, nil
}

// MustDevice is like NewDevice but panics on error.
func MustDevice(name string, width, height int) Device {
	d, err := NewDevice(name, width, height)
	if err != nil {
		panic(err)
	}
	return d
}

// Devices returns the registered device names in alphabetical order.
func Devices() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a device with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := devices[name]
	return ok
}

// Count returns the number of registered devices.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(devices)
}
