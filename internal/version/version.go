// Package version holds build-time metadata injected via -ldflags.
package version

import "runtime"

// These are overwritten at build time with -ldflags
// "-X github.com/jackzampolin/fingerprint/internal/version.GitRelease=...".
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain version used to build the binary.
var GoInfo = runtime.Version()

// OutputSchema is the version tag this tool writes into every output record's
// "version" field and the refusal envelope's "version" field (spec §6).
const OutputSchema = "fingerprint.v1"
