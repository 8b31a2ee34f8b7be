// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package claim tracks which enumerated devices are free for extraction.
// This is in-process bookkeeping for a single capture run, not cross-process
// locking of the hardware.
package claim

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/opensovereigncloud/vbios-utils/pciutils/pci"
)

var (
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrUnknownDevice         = errors.New("device not managed by this tracker")
	ErrAlreadyClaimed        = errors.New("device already claimed")
	ErrNoReader              = errors.New("no reader provided")
)

type Status bool

const (
	StatusFree    Status = true
	StatusClaimed Status = false
)

type Tracker struct {
	log     logr.Logger
	reader  pci.Reader
	devices map[pci.Address]Status
}

func NewTracker(log logr.Logger, reader pci.Reader) *Tracker {
	return &Tracker{
		log:     log,
		reader:  reader,
		devices: map[pci.Address]Status{},
	}
}

// Init populates the tracker from one enumeration pass. All discovered
// devices start out free.
func (t *Tracker) Init() error {
	if t.reader == nil {
		return ErrNoReader
	}

	devices, err := t.reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read pci devices: %w", err)
	}

	for _, device := range devices {
		t.log.V(2).Info("Tracking device", "pciAddress", device.Address)
		t.devices[device.Address] = StatusFree
	}

	return nil
}

func (t *Tracker) free() int64 {
	var free int64
	for _, status := range t.devices {
		if status == StatusFree {
			free++
		}
	}

	return free
}

func (t *Tracker) CanClaim(quantity resource.Quantity) bool {
	requested := quantity.Value()
	free := t.free()
	t.log.V(2).Info("Checking claimable devices", "free", free, "requested", requested)

	return free >= requested
}

// ClaimAddress marks one specific device as claimed. The caller owns its ROM
// window until Release.
func (t *Tracker) ClaimAddress(addr pci.Address) error {
	status, ok := t.devices[addr]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, addr)
	}
	if status == StatusClaimed {
		return fmt.Errorf("%w: %s", ErrAlreadyClaimed, addr)
	}

	t.log.V(2).Info("Claimed device", "pciAddress", addr)
	t.devices[addr] = StatusClaimed

	return nil
}

func (t *Tracker) Release(addr pci.Address) error {
	if _, ok := t.devices[addr]; !ok {
		t.log.V(2).Info("Device not managed by this tracker", "pciAddress", addr)
		return nil
	}

	t.log.V(3).Info("Released device", "pciAddress", addr)
	t.devices[addr] = StatusFree

	return nil
}
