// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package nvgpu maps NVIDIA PCI device IDs to product names.
package nvgpu

import (
	"fmt"

	"github.com/opensovereigncloud/vbios-utils/pciutils/pci"
)

// db is the in-memory device database, populated at init and never mutated
// afterwards.
var db = make(map[pci.DeviceID]string)

func register(id pci.DeviceID, name string) {
	db[id] = name
}

func init() {
	// Ada Lovelace desktop parts
	register(0x2684, "RTX 4090")
	register(0x2685, "RTX 4090 D")
	register(0x2702, "RTX 4080 Super")
	register(0x2704, "RTX 4080")
	register(0x2705, "RTX 4070 Ti Super")
	register(0x2782, "RTX 4070 Ti")
	register(0x2786, "RTX 4070")
	register(0x2860, "RTX 4070 Super")
}

// Lookup returns the product name for a device ID. Unknown devices get a
// placeholder name rather than an error, so the result is always printable.
func Lookup(id pci.DeviceID) string {
	if name, ok := db[id]; ok {
		return name
	}

	return fmt.Sprintf("Unknown (0x%04x)", uint32(id))
}
