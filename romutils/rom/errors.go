// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package rom

import "errors"

var (
	// ErrRomAttributeMissing means the device exposes no rom attribute.
	ErrRomAttributeMissing = errors.New("rom attribute missing")

	// ErrPermissionDenied means the rom attribute exists but the process may
	// not toggle it. Extraction needs root.
	ErrPermissionDenied = errors.New("permission denied, extraction requires root")

	// ErrRomReadFailed means the enable write succeeded but the image read
	// did not. The window is restored to disabled before this surfaces.
	ErrRomReadFailed = errors.New("rom read failed")

	// ErrRomRestoreFailed means the disable write after a capture attempt
	// failed. It is a diagnostic; a successfully read image is still
	// returned alongside it.
	ErrRomRestoreFailed = errors.New("rom restore failed")
)
