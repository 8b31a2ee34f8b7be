// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package vbios

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// pcirHeaderSize is the fixed size of the PCI Data Structure.
const pcirHeaderSize = 0x18

// lastImageFlag in the indicator byte marks the final image of a ROM chain.
const lastImageFlag = 0x80

var pcirSignature = []byte("PCIR")

var (
	ErrNoPCIR        = errors.New("no PCI Data Structure")
	ErrTruncatedPCIR = errors.New("truncated PCI Data Structure")
)

// PCIR is the decoded PCI Data Structure of one ROM image.
type PCIR struct {
	VendorID uint16
	DeviceID uint16
	// ImageLength is the image size in 512-byte units.
	ImageLength uint16
	CodeType    byte
	Indicator   byte
}

// ImageBytes returns the image size in bytes.
func (p PCIR) ImageBytes() int {
	return int(p.ImageLength) * 512
}

// Last reports whether this is the final image of the ROM.
func (p PCIR) Last() bool {
	return p.Indicator&lastImageFlag != 0
}

// ParsePCIR decodes the PCI Data Structure at the given offset into the
// image. The offset is absolute, not relative to an image base.
func ParsePCIR(image []byte, offset uint32) (PCIR, error) {
	if int64(offset)+pcirHeaderSize > int64(len(image)) {
		return PCIR{}, fmt.Errorf("%w: header at 0x%x exceeds image size %d", ErrTruncatedPCIR, offset, len(image))
	}

	header := image[offset : offset+pcirHeaderSize]
	if !bytes.Equal(header[0:4], pcirSignature) {
		return PCIR{}, fmt.Errorf("%w at 0x%x", ErrNoPCIR, offset)
	}

	return PCIR{
		VendorID:    binary.LittleEndian.Uint16(header[0x04:0x06]),
		DeviceID:    binary.LittleEndian.Uint16(header[0x06:0x08]),
		ImageLength: binary.LittleEndian.Uint16(header[0x10:0x12]),
		CodeType:    header[0x14],
		Indicator:   header[0x15],
	}, nil
}

// Image is one entry of a ROM image chain.
type Image struct {
	Offset uint32
	PCIR   PCIR
}

// Images walks the image chain of a captured ROM. NVIDIA ROMs usually carry
// several images (x86 VBIOS, UEFI GOP, FWSEC) back to back; each starts with
// the legacy signature and advances by the length recorded in its PCIR. The
// walk stops at the first malformed entry or at the last-image indicator, so
// a degenerate input yields a short (possibly empty) chain, never an error.
func Images(image []byte) []Image {
	var images []Image

	var offset uint32
	for int64(offset)+minImageSize <= int64(len(image)) {
		if !bytes.Equal(image[offset:offset+2], romSignature) {
			break
		}

		pcirOffset := binary.LittleEndian.Uint16(image[offset+pcirPointerOffset : offset+pcirPointerOffset+2])
		pcir, err := ParsePCIR(image, offset+uint32(pcirOffset))
		if err != nil {
			break
		}

		images = append(images, Image{Offset: offset, PCIR: pcir})

		if pcir.Last() || pcir.ImageBytes() == 0 {
			break
		}
		offset += uint32(pcir.ImageBytes())
	}

	return images
}
