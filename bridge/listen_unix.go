// +build !windows

package bridge

import (
	"net"

	"github.com/foundationdevices/passport-ur/common/socket"
)

// Listen opens the bridge daemon's control-plane listener: a Unix domain
// socket everywhere but Windows.
func Listen() (net.Listener, error) {
	return socket.DaemonListen()
}
