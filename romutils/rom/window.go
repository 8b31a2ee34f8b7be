// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package rom

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/opensovereigncloud/vbios-utils/pciutils/pci"
)

var (
	enableToken  = []byte("1")
	disableToken = []byte("0")
)

// window is the expansion ROM memory window of one device. The kernel keeps
// it disabled by default; the rom sysfs attribute only yields the image while
// the window is enabled.
type window interface {
	Enable() error
	Read() ([]byte, error)
	Disable() error
}

type sysfsWindow struct {
	path string
}

func newSysfsWindow(mountPoint string, addr pci.Address) *sysfsWindow {
	return &sysfsWindow{
		path: filepath.Join(mountPoint, "bus", "pci", "devices", addr.String(), "rom"),
	}
}

// writeToken writes a control token to the rom attribute. The attribute is
// opened without O_CREATE so a device without an expansion ROM surfaces as
// fs.ErrNotExist instead of leaving a stray file behind.
func (w *sysfsWindow) writeToken(token []byte) error {
	f, err := os.OpenFile(w.path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}

	_, writeErr := f.Write(token)
	closeErr := f.Close()
	if writeErr != nil {
		return writeErr
	}

	return closeErr
}

func (w *sysfsWindow) Enable() error {
	if err := w.writeToken(enableToken); err != nil {
		return fmt.Errorf("failed to enable rom window: %w", err)
	}

	return nil
}

func (w *sysfsWindow) Disable() error {
	if err := w.writeToken(disableToken); err != nil {
		return fmt.Errorf("failed to disable rom window: %w", err)
	}

	return nil
}

// Read bulk-reads the exposed image. The kernel decides the length; no size
// negotiation or chunking happens here.
func (w *sysfsWindow) Read() ([]byte, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rom window: %w", err)
	}

	return data, nil
}
