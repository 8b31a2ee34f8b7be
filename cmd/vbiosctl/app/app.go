// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/opensovereigncloud/vbios-utils/pciutils/pci"
)

const Name string = "vbiosctl"

// defaultSysfsMount is the sysfs mount point of the running host. Overridable
// for tests and containerized runs.
const defaultSysfsMount = "/sys"

func NewCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   Name,
		Short: "Extract VBIOS images from NVIDIA GPUs through PCI sysfs",
		Args:  cobra.NoArgs,
	}
	root.AddCommand(NewListCommand())
	root.AddCommand(NewExtractCommand())
	return root
}

func newLogger(verbose bool) logr.Logger {
	opts := []zap.Opts{zap.UseDevMode(true)}
	if verbose {
		opts = append(opts, zap.Level(zapcore.Level(-3)))
	}

	logger := zap.New(opts...)
	logf.SetLogger(logger)

	return logger
}

// discoverDevices enumerates NVIDIA devices. An unavailable or unreadable
// sysfs tree degrades to an empty list with a diagnostic; the caller decides
// whether an empty result is fatal.
func discoverDevices(log logr.Logger, sysfsMount string) []pci.Device {
	reader, err := pci.NewReaderWithMount(log, sysfsMount, pci.VendorNvidia)
	if err != nil {
		log.Info("PCI sysfs tree not available", "mountPoint", sysfsMount, "error", err.Error())
		return nil
	}

	devices, err := reader.Read()
	if err != nil {
		log.Info("Failed to enumerate PCI devices", "mountPoint", sysfsMount, "error", err.Error())
		return nil
	}

	return devices
}
