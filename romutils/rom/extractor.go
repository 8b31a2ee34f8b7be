// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package rom captures PCI expansion ROM images through the Linux sysfs
// device tree.
package rom

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-logr/logr"

	"github.com/opensovereigncloud/vbios-utils/pciutils/pci"
)

const (
	EventTypeNormal  = "Normal"
	EventTypeWarning = "Warning"

	ReasonWindowEnabled  = "RomWindowEnabled"
	ReasonImageCaptured  = "RomImageCaptured"
	ReasonRestoreFailed  = "RomRestoreFailed"
	ReasonCaptureAborted = "RomCaptureAborted"
)

// EventRecorder receives capture lifecycle events. A nil recorder disables
// event recording.
type EventRecorder interface {
	Eventf(addr pci.Address, eventType string, reason string, messageFormat string, args ...any)
}

// Image is one captured expansion ROM. RestoreErr carries a failed disable
// write as a diagnostic; the image bytes are complete regardless.
type Image struct {
	Device pci.Device
	Data   []byte

	RestoreErr error
}

type Extractor struct {
	log        logr.Logger
	mountPoint string
	recorder   EventRecorder

	newWindow func(addr pci.Address) window
}

func NewExtractor(log logr.Logger, mountPoint string, recorder EventRecorder) *Extractor {
	e := &Extractor{
		log:        log,
		mountPoint: mountPoint,
		recorder:   recorder,
	}
	e.newWindow = func(addr pci.Address) window {
		return newSysfsWindow(e.mountPoint, addr)
	}

	return e
}

// Extract captures the expansion ROM of one device. The device's ROM window
// is enabled for the duration of the read and disabled again on every path
// that managed to enable it; only a failed enable write skips the restore,
// since there is nothing to undo. The caller must be the sole owner of the
// device's window for the duration of the call.
func (e *Extractor) Extract(device pci.Device) (*Image, error) {
	w := e.newWindow(device.Address)

	if err := w.Enable(); err != nil {
		err = classify(err)
		e.eventf(device.Address, EventTypeWarning, ReasonCaptureAborted, "enable write failed: %v", err)
		return nil, fmt.Errorf("device %s: %w", device.Address, err)
	}
	e.log.V(2).Info("Enabled rom window", "device", device.Address)
	e.eventf(device.Address, EventTypeNormal, ReasonWindowEnabled, "rom window enabled")

	data, readErr := w.Read()

	// The window was enabled, so the disable write runs no matter how the
	// read went. Its failure never overrides a successful read.
	restoreErr := w.Disable()
	if restoreErr != nil {
		restoreErr = fmt.Errorf("%w: %w", ErrRomRestoreFailed, restoreErr)
		e.log.Error(restoreErr, "Failed to restore rom window to disabled", "device", device.Address)
		e.eventf(device.Address, EventTypeWarning, ReasonRestoreFailed, "disable write failed: %v", restoreErr)
	} else {
		e.log.V(2).Info("Disabled rom window", "device", device.Address)
	}

	if readErr != nil {
		readErr = classify(readErr)
		e.eventf(device.Address, EventTypeWarning, ReasonCaptureAborted, "image read failed: %v", readErr)
		return nil, fmt.Errorf("device %s: %w: %w", device.Address, ErrRomReadFailed, readErr)
	}

	e.log.V(1).Info("Captured rom image", "device", device.Address, "bytes", len(data))
	e.eventf(device.Address, EventTypeNormal, ReasonImageCaptured, "captured %d bytes", len(data))

	return &Image{
		Device:     device,
		Data:       data,
		RestoreErr: restoreErr,
	}, nil
}

func (e *Extractor) eventf(addr pci.Address, eventType, reason, messageFormat string, args ...any) {
	if e.recorder == nil {
		return
	}
	e.recorder.Eventf(addr, eventType, reason, messageFormat, args...)
}

// classify folds OS level failures into the package error taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrRomAttributeMissing, err)
	default:
		return err
	}
}
