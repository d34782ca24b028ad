package fsutil

// File and directory permission constants.
const (
	FileModeDefault = 0o644 // -rw-r--r--
	FileModeSecure  = 0o600 // -rw-------

	DirModeDefault = 0o755 // drwxr-xr-x
	DirModePrivate = 0o700 // drwx------
)
