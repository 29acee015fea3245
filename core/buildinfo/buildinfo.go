// Package buildinfo exposes the build stamp injected at link time:
//
//	go build -ldflags "\
//	  -X github.com/m3rciful/fishbot/core/buildinfo.version=v1.2.3 \
//	  -X github.com/m3rciful/fishbot/core/buildinfo.commit=abcdef0 \
//	  -X github.com/m3rciful/fishbot/core/buildinfo.date=2026-08-31T12:00:00Z"
//
// The defaults identify a local development build.
package buildinfo

var (
	version = "dev"
	commit  = "local"
	date    = ""
)

// Info describes the running build.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Current returns the build stamp for startup logging.
func Current() Info {
	return Info{Version: version, Commit: commit, Date: date}
}
