package global

import (
	"runtime"
)

var (
	Version        = "0.0.1"
	BuildTime      = "none"
	Verbose        = false
	NoColor        = false
	ConfigFilename = "stevedore.yaml"

	// MetadataDirNames are control directories the remote builder reads.
	// Their contents always reach the build context.
	MetadataDirNames = []string{".balena", ".resin"}

	// DefaultServiceName names the single service of a project without a
	// compose file.
	DefaultServiceName = "main"
)

// ConvertEOLByDefault reports whether CRLF conversion is on when neither
// --convert-eol nor --noconvert-eol is given.
func ConvertEOLByDefault(goos string) bool {
	return goos == "windows"
}

func HostConvertsEOL() bool {
	return ConvertEOLByDefault(runtime.GOOS)
}
