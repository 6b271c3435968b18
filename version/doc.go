// Package version reports the build identity of the nexus binary.
//
// Values are injected at link time and fall back to the VCS stamp the Go
// toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/codenexus/version.Version=1.2.0" ./cmd/nexus
package version
