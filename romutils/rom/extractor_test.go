// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package rom

import (
	"errors"
	"fmt"
	"io/fs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/opensovereigncloud/vbios-utils/pciutils/pci"
)

// fakeWindow records the order of protocol operations.
type fakeWindow struct {
	data []byte

	enableErr  error
	readErr    error
	disableErr error

	calls []string
}

func (f *fakeWindow) Enable() error {
	f.calls = append(f.calls, "enable")
	return f.enableErr
}

func (f *fakeWindow) Read() ([]byte, error) {
	f.calls = append(f.calls, "read")
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.data, nil
}

func (f *fakeWindow) Disable() error {
	f.calls = append(f.calls, "disable")
	return f.disableErr
}

type recordedEvent struct {
	addr      pci.Address
	eventType string
	reason    string
	message   string
}

type fakeRecorder struct {
	events []recordedEvent
}

func (r *fakeRecorder) Eventf(addr pci.Address, eventType, reason, messageFormat string, args ...any) {
	r.events = append(r.events, recordedEvent{
		addr:      addr,
		eventType: eventType,
		reason:    reason,
		message:   fmt.Sprintf(messageFormat, args...),
	})
}

var _ = Describe("Extractor", func() {
	var (
		device   pci.Device
		win      *fakeWindow
		recorder *fakeRecorder
	)

	newExtractor := func(ctx SpecContext) *Extractor {
		e := NewExtractor(log.FromContext(ctx), "/sys", recorder)
		e.newWindow = func(pci.Address) window { return win }
		return e
	}

	BeforeEach(func() {
		device = pci.Device{
			Address:  pci.Address{Bus: 0x17},
			Vendor:   pci.VendorNvidia,
			DeviceID: 0x2684,
		}
		win = &fakeWindow{data: []byte{0x55, 0xAA, 0x01, 0x02}}
		recorder = &fakeRecorder{}
	})

	It("should capture and restore in order", func(ctx SpecContext) {
		image, err := newExtractor(ctx).Extract(device)
		Expect(err).NotTo(HaveOccurred())
		Expect(image.Data).To(Equal([]byte{0x55, 0xAA, 0x01, 0x02}))
		Expect(image.RestoreErr).To(BeNil())
		Expect(win.calls).To(Equal([]string{"enable", "read", "disable"}))
	})

	It("should abort on a failed enable without reading or restoring", func(ctx SpecContext) {
		win.enableErr = fmt.Errorf("open rom: %w", fs.ErrPermission)

		image, err := newExtractor(ctx).Extract(device)
		Expect(err).To(MatchError(ErrPermissionDenied))
		Expect(image).To(BeNil())
		Expect(win.calls).To(Equal([]string{"enable"}))
	})

	It("should classify a missing rom attribute", func(ctx SpecContext) {
		win.enableErr = fmt.Errorf("open rom: %w", fs.ErrNotExist)

		_, err := newExtractor(ctx).Extract(device)
		Expect(err).To(MatchError(ErrRomAttributeMissing))
	})

	It("should restore even when the read fails", func(ctx SpecContext) {
		win.readErr = errors.New("device did not expose an image")

		image, err := newExtractor(ctx).Extract(device)
		Expect(err).To(MatchError(ErrRomReadFailed))
		Expect(image).To(BeNil())
		Expect(win.calls).To(Equal([]string{"enable", "read", "disable"}))
	})

	It("should return the image when only the restore fails", func(ctx SpecContext) {
		win.disableErr = errors.New("write error")

		image, err := newExtractor(ctx).Extract(device)
		Expect(err).NotTo(HaveOccurred())
		Expect(image.Data).To(Equal([]byte{0x55, 0xAA, 0x01, 0x02}))
		Expect(image.RestoreErr).To(MatchError(ErrRomRestoreFailed))
		Expect(win.calls).To(Equal([]string{"enable", "read", "disable"}))
	})

	It("should record lifecycle events", func(ctx SpecContext) {
		_, err := newExtractor(ctx).Extract(device)
		Expect(err).NotTo(HaveOccurred())

		var reasons []string
		for _, event := range recorder.events {
			Expect(event.addr).To(Equal(device.Address))
			reasons = append(reasons, event.reason)
		}
		Expect(reasons).To(Equal([]string{ReasonWindowEnabled, ReasonImageCaptured}))
	})

	It("should record a warning when the restore fails", func(ctx SpecContext) {
		win.disableErr = errors.New("write error")

		_, err := newExtractor(ctx).Extract(device)
		Expect(err).NotTo(HaveOccurred())

		var warnings []string
		for _, event := range recorder.events {
			if event.eventType == EventTypeWarning {
				warnings = append(warnings, event.reason)
			}
		}
		Expect(warnings).To(Equal([]string{ReasonRestoreFailed}))
	})

	It("should work without a recorder", func(ctx SpecContext) {
		e := NewExtractor(log.FromContext(ctx), "/sys", nil)
		e.newWindow = func(pci.Address) window { return win }

		image, err := e.Extract(device)
		Expect(err).NotTo(HaveOccurred())
		Expect(image.Data).NotTo(BeEmpty())
	})
})
