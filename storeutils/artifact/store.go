// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package artifact persists captured ROM images as raw binary files.
package artifact

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/opensovereigncloud/vbios-utils/romutils/vbios"
)

var ErrSaveDeclined = errors.New("save declined")

// ConfirmFunc decides whether an image that failed validation gets written
// anyway. Injected so callers control interactivity.
type ConfirmFunc func(reason string) bool

// ConfirmAlways accepts every image regardless of its validation result.
func ConfirmAlways(string) bool { return true }

// Save writes an image to path as a single bulk write. The destination holds
// exactly the captured bytes, no container format. An image whose validation
// failed is only written after an affirmative confirmation.
func Save(log logr.Logger, data []byte, result vbios.Result, path string, confirm ConfirmFunc) error {
	log.V(1).Info("Validation result", "valid", result.Valid, "confidence", result.Confidence, "reason", result.Reason)

	if !result.Valid {
		if confirm == nil || !confirm(result.Reason) {
			return fmt.Errorf("%w: image failed validation: %s", ErrSaveDeclined, result.Reason)
		}
		log.Info("Writing image despite failed validation", "reason", result.Reason)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image to %s: %w", path, err)
	}

	size := resource.NewQuantity(int64(len(data)), resource.BinarySI)
	log.Info("Saved rom image", "path", path, "size", size.String(), "sizeKiB", fmt.Sprintf("%.1f", float64(len(data))/1024))

	return nil
}
