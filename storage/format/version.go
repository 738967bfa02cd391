// Copyright 2024 Vego Authors
// Licensed under the Apache License, Version 2.0

package format

import (
	"fmt"
	"strings"

	lerrors "github.com/wzqhbustb/colfile/storage/errors"
)

// Feature flags for format capabilities
// These indicate what features a specific format version supports
const (
	FeatureBasicColumnar uint32 = 1 << iota
	FeatureZstdCompression
	FeatureContentID // UUIDv5 of header, schema and data in the footer
	FeatureChecksum  // CRC32C over header, schema and data
)

// FeatureFlagName returns the string representation of a feature flag
func FeatureFlagName(f uint32) string {
	switch f {
	case FeatureBasicColumnar:
		return "BasicColumnar"
	case FeatureZstdCompression:
		return "ZstdCompression"
	case FeatureContentID:
		return "ContentID"
	case FeatureChecksum:
		return "Checksum"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// FeaturesToStrings converts feature flags to string slice
func FeaturesToStrings(features uint32) []string {
	var result []string
	for i := 0; i < 32; i++ {
		flag := uint32(1) << i
		if features&flag != 0 {
			result = append(result, FeatureFlagName(flag))
		}
	}
	return result
}

// VersionPolicy defines the capabilities of a specific format version
type VersionPolicy struct {
	Version      uint32
	FeatureFlags uint32 // Features supported by this version
	HeaderFlags  Flags  // Header flag bits a file of this version may set
}

// Predefined version policies
var (
	V1 = VersionPolicy{
		Version:      1,
		FeatureFlags: FeatureBasicColumnar | FeatureZstdCompression | FeatureContentID | FeatureChecksum,
		HeaderFlags:  FlagCompressed,
	}

	// CurrentVersion is written by this implementation
	CurrentVersion = V1

	// MinReadableVersion is the oldest version that can be read
	MinReadableVersion = V1
)

var knownVersions = []VersionPolicy{V1}

// String returns the version as "v1"
func (vp VersionPolicy) String() string {
	return fmt.Sprintf("v%d", vp.Version)
}

// HasFeature returns true if this version supports the given feature
func (vp VersionPolicy) HasFeature(feature uint32) bool {
	return (vp.FeatureFlags & feature) != 0
}

// Describe lists the features as a comma-separated string.
func (vp VersionPolicy) Describe() string {
	return strings.Join(FeaturesToStrings(vp.FeatureFlags), ",")
}

// PolicyFor looks up a version. Unknown versions are rejected rather than
// guessed at.
func PolicyFor(version uint32) (VersionPolicy, error) {
	for _, vp := range knownVersions {
		if vp.Version == version {
			return vp, nil
		}
	}
	return VersionPolicy{}, lerrors.UnsupportedVersion(version, MinReadableVersion.Version, CurrentVersion.Version)
}

// CheckFlags rejects header flag bits the version does not define.
func (vp VersionPolicy) CheckFlags(flags Flags) error {
	if unknown := flags &^ vp.HeaderFlags; unknown != 0 {
		return lerrors.Corrupted("decode_header", 8,
			fmt.Sprintf("flags 0x%x not defined by format %s", uint32(unknown), vp))
	}
	return nil
}
