// Package version contains dhcpudp version information.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/AdguardTeam/golibs/stringutil"
)

// These are set by the linker.  Unfortunately we cannot set constants during
// linking, and Go doesn't have a concept of immutable variables, so to be
// thorough we have to only export them through getters.
var (
	version    string = "v0.0.0-dev"
	committime string
)

// Version returns the dhcpudp build version.
func Version() (v string) {
	return version
}

// Constants defining the headers of build information message.
const (
	vFmtHdr          = "dhcpudp"
	vFmtVerHdr       = "Version: "
	vFmtSchemaVerHdr = "Schema version: "
	vFmtGoHdr        = "Go version: "
	vFmtTimeHdr      = "Commit time: "
	vFmtGOOSHdr      = "GOOS: " + runtime.GOOS
	vFmtGOARCHHdr    = "GOARCH: " + runtime.GOARCH
	vFmtDepsHdr      = "Dependencies:"
)

// Verbose returns formatted build information.  Output example:
//
//	dhcpudp
//	Version: v0.1.0
//	Schema version: 1
//	Go version: go1.24.5
//	Commit time: 2025-06-30 16:26:08 +0300 MSK
//	GOOS: linux
//	GOARCH: amd64
//	Dependencies:
//	        ...
func Verbose(schemaVersion uint) (v string) {
	b := &strings.Builder{}

	const nl = "\n"
	stringutil.WriteToBuilder(b, vFmtHdr, nl)
	stringutil.WriteToBuilder(b, vFmtVerHdr, version, nl)

	schemaVerStr := strconv.FormatUint(uint64(schemaVersion), 10)
	stringutil.WriteToBuilder(b, vFmtSchemaVerHdr, schemaVerStr, nl)
	stringutil.WriteToBuilder(b, vFmtGoHdr, runtime.Version(), nl)

	writeCommitTime(b)

	stringutil.WriteToBuilder(b, vFmtGOOSHdr, nl)
	stringutil.WriteToBuilder(b, vFmtGOARCHHdr, nl)

	info, ok := debug.ReadBuildInfo()
	if !ok || len(info.Deps) == 0 {
		return b.String()
	}

	stringutil.WriteToBuilder(b, vFmtDepsHdr, nl)
	for _, dep := range info.Deps {
		if depStr := fmtModule(dep); depStr != "" {
			stringutil.WriteToBuilder(b, "\t", depStr, nl)
		}
	}

	return b.String()
}

// fmtModule returns formatted information about module.  The result looks like:
//
//	github.com/Username/module@v1.2.3 (sum: someHASHSUM=)
func fmtModule(m *debug.Module) (formatted string) {
	if m == nil {
		return ""
	}

	if repl := m.Replace; repl != nil {
		return fmtModule(repl)
	}

	b := &strings.Builder{}

	stringutil.WriteToBuilder(b, m.Path)
	if ver := m.Version; ver != "" {
		sep := "@"
		if ver == "(devel)" {
			sep = " "
		}

		stringutil.WriteToBuilder(b, sep, ver)
	}

	if sum := m.Sum; sum != "" {
		stringutil.WriteToBuilder(b, " (sum: ", sum, ")")
	}

	return b.String()
}

// writeCommitTime writes the commit time header into b, if the commit time is
// known.
func writeCommitTime(b *strings.Builder) {
	if committime == "" {
		return
	}

	sec, err := strconv.ParseInt(committime, 10, 64)
	if err != nil {
		stringutil.WriteToBuilder(b, vFmtTimeHdr, fmt.Sprintf("parse error: %s", err), "\n")
	} else {
		stringutil.WriteToBuilder(b, vFmtTimeHdr, time.Unix(sec, 0).String(), "\n")
	}
}
