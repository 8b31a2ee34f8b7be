// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opensovereigncloud/vbios-utils/pciutils/nvgpu"
)

func NewListCommand() *cobra.Command {
	var sysfsMount string
	var verbose bool

	list := &cobra.Command{
		Use:   "list",
		Short: "List NVIDIA GPUs visible on the PCI bus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(verbose)

			devices := discoverDevices(logger, sysfsMount)
			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No NVIDIA GPUs found.")
				return nil
			}

			for i, device := range devices {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s - %s (Device ID: 0x%04x)\n",
					i, device.Address, nvgpu.Lookup(device.DeviceID), uint32(device.DeviceID))
			}

			return nil
		},
	}
	list.Flags().StringVar(&sysfsMount, "sysfs", defaultSysfsMount, "sysfs mount point to enumerate")
	list.Flags().BoolVar(&verbose, "verbose", false, "enable verbose logging")

	return list
}
