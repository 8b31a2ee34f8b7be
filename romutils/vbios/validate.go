// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package vbios inspects captured PCI expansion ROM images for structural
// soundness. All functions are pure; they never modify the image and never
// fail for degenerate input.
package vbios

import (
	"bytes"
	"encoding/binary"
)

const (
	// minImageSize is the smallest byte count that can hold the legacy ROM
	// header up to and including the PCI Data Structure pointer.
	minImageSize = 64

	// pcirPointerOffset is where the little-endian 16-bit pointer to the
	// PCI Data Structure lives in the ROM header.
	pcirPointerOffset = 0x18
)

var romSignature = []byte{0x55, 0xAA}

type Confidence int

const (
	// ConfidenceInvalid marks images that cannot be a PC-compatible ROM.
	ConfidenceInvalid Confidence = iota
	// ConfidenceSignatureOnly marks images with a legacy ROM signature but
	// no locatable PCI Data Structure. Many legitimate dumps land here.
	ConfidenceSignatureOnly
	// ConfidencePCIR marks images with a confirmed PCI Data Structure.
	ConfidencePCIR
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceSignatureOnly:
		return "signature-only"
	case ConfidencePCIR:
		return "pcir"
	default:
		return "invalid"
	}
}

type Result struct {
	Valid      bool
	Confidence Confidence
	Reason     string
}

// Validate classifies an image. A signature-only image still counts as valid;
// the Confidence field carries the stricter signal for callers that want it.
func Validate(image []byte) Result {
	if len(image) < minImageSize {
		return Result{
			Valid:      false,
			Confidence: ConfidenceInvalid,
			Reason:     "too small to be a ROM",
		}
	}

	if !bytes.Equal(image[0:2], romSignature) {
		return Result{
			Valid:      false,
			Confidence: ConfidenceInvalid,
			Reason:     "bad ROM signature (expected 55 AA)",
		}
	}

	pcirOffset := int(binary.LittleEndian.Uint16(image[pcirPointerOffset : pcirPointerOffset+2]))
	if pcirOffset+4 <= len(image) && bytes.Equal(image[pcirOffset:pcirOffset+4], pcirSignature) {
		return Result{
			Valid:      true,
			Confidence: ConfidencePCIR,
			Reason:     "PCI Data Structure located",
		}
	}

	return Result{
		Valid:      true,
		Confidence: ConfidenceSignatureOnly,
		Reason:     "signature present, structure unconfirmed",
	}
}
