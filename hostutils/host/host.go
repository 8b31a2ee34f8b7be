// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package host describes the platform extraction runs on. Only Linux hosts
// expose the PCI sysfs tree this tool depends on.
package host

import (
	"fmt"
	"runtime"

	ocispecv1 "github.com/opencontainers/image-spec/specs-go/v1"
)

// Platform returns the host platform descriptor, or an error when the
// architecture cannot host a supported GPU.
func Platform() (*ocispecv1.Platform, error) {
	platform := ocispecv1.Platform{
		OS: "linux",
	}
	switch architecture := runtime.GOARCH; architecture {
	case "amd64":
		platform.Architecture = architecture
	case "arm64":
		platform.Architecture = architecture
	default:
		return nil, fmt.Errorf("unsupported architecture: %s", architecture)
	}

	return &platform, nil
}
