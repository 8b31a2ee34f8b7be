// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package pci

import (
	"fmt"
)

type Class uint32
type Vendor uint32
type DeviceID uint32

var (
	ClassVGAController Class = 0x030000
	Class3DController  Class = 0x030200

	VendorNvidia Vendor = 0x10de
)

type Address struct {
	Domain   uint
	Bus      uint
	Slot     uint
	Function uint
}

func (p Address) String() string {
	return fmt.Sprintf("%04x:%02x:%02x.%1x", p.Domain, p.Bus, p.Slot, p.Function)
}

// Device is one enumerated PCI function. Immutable once returned; callers
// that rely on index positions must re-enumerate for a fresh mapping.
type Device struct {
	Address  Address
	Vendor   Vendor
	DeviceID DeviceID
	Class    Class
}

func (d Device) String() string {
	return fmt.Sprintf("%s [%04x:%04x]", d.Address, uint32(d.Vendor), uint32(d.DeviceID))
}

type Reader interface {
	Read() ([]Device, error)
}
