package config

// version is blkd's own build version, set at release time the way the
// teacher's version package pins its own appMajor/appMinor/appPatch.
const version = "0.1.0"

// Version returns blkd's version string, for the -V flag.
func Version() string {
	return version
}
