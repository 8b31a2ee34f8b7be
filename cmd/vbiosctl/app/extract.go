// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/opensovereigncloud/vbios-utils/claimutils/claim"
	"github.com/opensovereigncloud/vbios-utils/eventutils/recorder"
	"github.com/opensovereigncloud/vbios-utils/hostutils/host"
	"github.com/opensovereigncloud/vbios-utils/pciutils/nvgpu"
	"github.com/opensovereigncloud/vbios-utils/pciutils/pci"
	"github.com/opensovereigncloud/vbios-utils/romutils/rom"
	"github.com/opensovereigncloud/vbios-utils/romutils/vbios"
	"github.com/opensovereigncloud/vbios-utils/storeutils/artifact"
)

func NewExtractCommand() *cobra.Command {
	var (
		output     string
		index      int
		sysfsMount string
		force      bool
		verbose    bool
	)

	extract := &cobra.Command{
		Use:   "extract",
		Short: "Capture the VBIOS of one GPU and write it to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd, output, index, sysfsMount, force, verbose)
		},
	}
	extract.Flags().StringVarP(&output, "output", "o", "vbios.rom", "output file for the captured image")
	extract.Flags().IntVarP(&index, "index", "i", 0, "zero-based index of the GPU to extract from")
	extract.Flags().StringVar(&sysfsMount, "sysfs", defaultSysfsMount, "sysfs mount point to enumerate")
	extract.Flags().BoolVar(&force, "force", false, "write the image without confirmation even if validation fails")
	extract.Flags().BoolVar(&verbose, "verbose", false, "enable verbose logging and event output")

	return extract
}

func runExtract(cmd *cobra.Command, output string, index int, sysfsMount string, force, verbose bool) error {
	logger := newLogger(verbose)

	platform, err := host.Platform()
	if err != nil {
		return err
	}
	logger.V(1).Info("Running on supported host", "os", platform.OS, "architecture", platform.Architecture)

	devices := discoverDevices(logger, sysfsMount)
	if len(devices) == 0 {
		return fmt.Errorf("no NVIDIA GPUs found under %s", sysfsMount)
	}

	for i, device := range devices {
		fmt.Fprintf(cmd.OutOrStdout(), "%d. %s - %s (Device ID: 0x%04x)\n",
			i, device.Address, nvgpu.Lookup(device.DeviceID), uint32(device.DeviceID))
	}

	if index < 0 || index >= len(devices) {
		return fmt.Errorf("invalid device index %d, %d devices found", index, len(devices))
	}
	device := devices[index]

	reader, err := pci.NewReaderWithMount(logger, sysfsMount, pci.VendorNvidia)
	if err != nil {
		return fmt.Errorf("failed to open sysfs at %s: %w", sysfsMount, err)
	}

	tracker := claim.NewTracker(logger, reader)
	if err := tracker.Init(); err != nil {
		return err
	}
	if err := tracker.ClaimAddress(device.Address); err != nil {
		return err
	}
	defer func() {
		_ = tracker.Release(device.Address)
	}()

	events := recorder.NewEventStore(logger, recorder.EventStoreOptions{
		DeviceEventTTL: time.Hour,
	})

	logger.Info("Extracting VBIOS", "device", device.Address, "name", nvgpu.Lookup(device.DeviceID))
	extractor := rom.NewExtractor(logger, sysfsMount, events)
	image, err := extractor.Extract(device)
	if err != nil {
		return fmt.Errorf("failed to extract VBIOS: %w", err)
	}

	result := vbios.Validate(image.Data)
	if verbose {
		for _, img := range vbios.Images(image.Data) {
			logger.Info("ROM image",
				"offset", fmt.Sprintf("0x%x", img.Offset),
				"codeType", fmt.Sprintf("0x%02x", img.PCIR.CodeType),
				"sizeKiB", img.PCIR.ImageBytes()/1024,
				"last", img.PCIR.Last())
		}
	}

	confirm := confirmPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
	if force {
		confirm = artifact.ConfirmAlways
	}
	if err := artifact.Save(logger, image.Data, result, output, confirm); err != nil {
		return err
	}

	if verbose {
		for _, event := range events.ListEvents() {
			logger.Info("Capture event", "device", event.Device, "type", event.Type, "reason", event.Reason, "message", event.Message)
		}
	}

	return nil
}

// confirmPrompt asks the operator whether an image that failed validation
// should be written anyway.
func confirmPrompt(in io.Reader, out io.Writer) artifact.ConfirmFunc {
	return func(reason string) bool {
		fmt.Fprintf(out, "Image validation failed (%s). Save anyway? (y/n): ", reason)

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil {
			return false
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}
