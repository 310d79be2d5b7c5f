package domain

import (
	"os"
	"path/filepath"
)

const (
	// VigilDirName is the name of the per-user state directory.
	VigilDirName = ".vigil"

	// ConfigFileName is the name of the console configuration file.
	ConfigFileName = "vigil.yaml"

	// StatusSocketName is the file name of the status Unix socket.
	StatusSocketName = "status.sock"

	// DefaultAPIURL is the backend base URL used when none is configured.
	DefaultAPIURL = "http://127.0.0.1:8088/api/v1"

	// DefaultIdentity is the caller identity used when none is configured.
	DefaultIdentity = "operator"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// SocketPerm is the permission applied to the status socket (rw-------).
	SocketPerm = 0o600
)

// DefaultStatusSocketPath returns ~/.vigil/status.sock, or a relative path if
// the home directory cannot be determined.
func DefaultStatusSocketPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(VigilDirName, StatusSocketName)
	}
	return filepath.Join(home, VigilDirName, StatusSocketName)
}
