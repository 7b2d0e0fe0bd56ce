// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package version

import (
	"bytes"
	"fmt"
	"time"

	version "github.com/hashicorp/go-version"
)

var (
	// BuildDate is the RFC3339 time of the git commit the binary was
	// built from, stamped in by the makefile.
	BuildDate string

	// The git commit the binary was built from, also stamped in at link
	// time.
	GitCommit   string
	GitDescribe string

	// The main version number currently running.
	Version = "0.3.1"

	// VersionPrerelease marks the version as pre-release. An empty string
	// means a final release; anything else is a pre-release marker such
	// as "dev", "beta", or "rc1".
	VersionPrerelease = "dev"

	// VersionMetadata further describes the build type.
	VersionMetadata = ""

	// SemVer is an instance of version.Version representing the main
	// version without any pre-release or metadata markers. Parsing it at
	// init time keeps a malformed release string from ever shipping.
	SemVer *version.Version
)

func init() {
	SemVer = version.Must(version.NewVersion(Version))
}

// VersionInfo describes one build of the engine, combining the hardcoded
// release values with the revision details stamped in at link time.
type VersionInfo struct {
	BuildDate         time.Time
	Revision          string
	Version           string
	VersionPrerelease string
	VersionMetadata   string
}

func (v *VersionInfo) Copy() *VersionInfo {
	if v == nil {
		return nil
	}

	nv := *v
	return &nv
}

func GetVersion() *VersionInfo {
	ver := Version
	if GitDescribe != "" {
		ver = GitDescribe
	}

	// on parse error, will be zero value time.Time{}
	built, _ := time.Parse(time.RFC3339, BuildDate)

	return &VersionInfo{
		BuildDate:         built,
		Revision:          GitCommit,
		Version:           ver,
		VersionPrerelease: VersionPrerelease,
		VersionMetadata:   VersionMetadata,
	}
}

// VersionNumber renders the bare version string, with the pre-release and
// metadata markers appended when set.
func (v *VersionInfo) VersionNumber() string {
	num := v.Version

	if v.VersionPrerelease != "" {
		num = fmt.Sprintf("%s-%s", num, v.VersionPrerelease)
	}

	if v.VersionMetadata != "" {
		num = fmt.Sprintf("%s+%s", num, v.VersionMetadata)
	}

	return num
}

// FullVersionNumber renders the human readable form used by the version
// command, optionally including the git revision.
func (v *VersionInfo) FullVersionNumber(rev bool) string {
	var out bytes.Buffer

	fmt.Fprintf(&out, "Pinpon Engine v%s", v.Version)
	if v.VersionPrerelease != "" {
		fmt.Fprintf(&out, "-%s", v.VersionPrerelease)
	}

	if v.VersionMetadata != "" {
		fmt.Fprintf(&out, "+%s", v.VersionMetadata)
	}

	if !v.BuildDate.IsZero() {
		fmt.Fprintf(&out, "\nBuildDate %s", v.BuildDate.Format(time.RFC3339))
	}

	if rev && v.Revision != "" {
		fmt.Fprintf(&out, "\nRevision %s", v.Revision)
	}

	return out.String()
}
