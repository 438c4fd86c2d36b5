// +build windows

package bridge

import (
	"net"

	"github.com/Microsoft/go-winio"
)

// bridgePipeName is the named pipe the bridge daemon listens on, the
// Windows analogue of the Unix-socket control plane used elsewhere.
const bridgePipeName = `\\.\pipe\urbridged`

// Listen opens the bridge daemon's control-plane listener on Windows,
// where there is no equivalent of a filesystem Unix socket under
// ~/.passport-ur.
func Listen() (net.Listener, error) {
	return winio.ListenPipe(bridgePipeName, nil)
}
