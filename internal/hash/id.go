package hash

import "github.com/cespare/xxhash/v2"

// DeviceID computes the xxHash64 of the given device name.
func DeviceID(name string) uint64 {
	return xxhash.Sum64String(name)
}
