// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package claim_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/api/resource"
	log "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/opensovereigncloud/vbios-utils/claimutils/claim"
	"github.com/opensovereigncloud/vbios-utils/pciutils/pci"
)

type MockReader struct {
	devices []pci.Device
	err     error
}

func (m *MockReader) Read() ([]pci.Device, error) {
	return m.devices, m.err
}

var _ = Describe("Device Tracker", func() {

	It("should init correct", func(ctx SpecContext) {

		By("init tracker without reader")
		tracker := claim.NewTracker(log.FromContext(ctx), nil)
		Expect(tracker.Init()).Should(MatchError(claim.ErrNoReader))

		By("init tracker with reader")
		tracker = claim.NewTracker(log.FromContext(ctx), &MockReader{})
		Expect(tracker.Init()).ShouldNot(HaveOccurred())

		By("init tracker with failing reader")
		testErr := errors.New("test error")
		tracker = claim.NewTracker(log.FromContext(ctx), &MockReader{
			err: testErr,
		})
		Expect(tracker.Init()).Should(MatchError(testErr))
	})

	It("should report claimable quantities", func(ctx SpecContext) {
		tracker := claim.NewTracker(log.FromContext(ctx), &MockReader{
			devices: []pci.Device{
				{Address: pci.Address{}},
				{Address: pci.Address{Function: 1}},
			},
		})
		Expect(tracker.Init()).ShouldNot(HaveOccurred())

		Expect(tracker.CanClaim(resource.MustParse("1"))).To(BeTrue())
		Expect(tracker.CanClaim(resource.MustParse("2"))).To(BeTrue())
		Expect(tracker.CanClaim(resource.MustParse("3"))).To(BeFalse())
	})

	It("should claim a specific device", func(ctx SpecContext) {
		addr := pci.Address{Bus: 0x17}
		tracker := claim.NewTracker(log.FromContext(ctx), &MockReader{
			devices: []pci.Device{{Address: addr}},
		})
		Expect(tracker.Init()).ShouldNot(HaveOccurred())

		By("claiming the device")
		Expect(tracker.ClaimAddress(addr)).ShouldNot(HaveOccurred())

		By("claiming the device again and failing")
		Expect(tracker.ClaimAddress(addr)).Should(MatchError(claim.ErrAlreadyClaimed))

		By("releasing and claiming again")
		Expect(tracker.Release(addr)).ShouldNot(HaveOccurred())
		Expect(tracker.ClaimAddress(addr)).ShouldNot(HaveOccurred())
	})

	It("should reject unknown devices", func(ctx SpecContext) {
		tracker := claim.NewTracker(log.FromContext(ctx), &MockReader{})
		Expect(tracker.Init()).ShouldNot(HaveOccurred())

		Expect(tracker.ClaimAddress(pci.Address{Bus: 0x42})).Should(MatchError(claim.ErrUnknownDevice))

		By("releasing an unmanaged device is not an error")
		Expect(tracker.Release(pci.Address{Bus: 0x42})).ShouldNot(HaveOccurred())
	})
})
