package entrystate

import "strings"

// Suffix is the reserved extension appended to an entry path to derive its
// sidecar path. Agents and resolvers on both sides of the driver boundary
// hardcode this string; changing it is a protocol break.
const Suffix = ".__entry_info__"

// SidecarPath returns the sidecar path for an entry. The mapping is a pure
// string append, no table and no cache, so the same entry always maps to the
// same sidecar and distinct entries never collide.
func SidecarPath(entry string) string {
	return entry + Suffix
}

// IsSidecarPath reports whether path names a sidecar record rather than a
// user-visible entry.
func IsSidecarPath(path string) bool {
	return strings.HasSuffix(path, Suffix)
}

// EntryPath inverts SidecarPath. It returns the owning entry path and true,
// or ("", false) when the path is not a sidecar path.
func EntryPath(sidecar string) (string, bool) {
	if !IsSidecarPath(sidecar) {
		return "", false
	}
	return strings.TrimSuffix(sidecar, Suffix), true
}
