package weave

import "fmt"

// Semantic version of the marketplace. Suffix is empty for tagged releases.
const (
	Maj    = 0
	Min    = 1
	Fix    = 0
	Suffix = "-dev"
)

// GitCommit is injected at build time:
//
//	go build -ldflags "-X github.com/iov-one/weave-market.GitCommit=$(git rev-parse --short HEAD)"
var GitCommit = ""

// Version returns the release followed by the commit it was built from,
// when known. It is what `marketd --version` prints.
func Version() string {
	release := fmt.Sprintf("v%d.%d.%d%s", Maj, Min, Fix, Suffix)
	if GitCommit == "" {
		return release
	}
	return release + " " + GitCommit
}
