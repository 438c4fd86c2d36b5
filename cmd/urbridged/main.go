// Command urbridged is the bridge daemon: a long-running process a host
// application talks to over a local control socket instead of linking the
// codec directly (spec.md §3, host-application bridge).
package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/op/go-logging"

	"github.com/foundationdevices/passport-ur/bridge"
	"github.com/foundationdevices/passport-ur/common/log"
	"github.com/foundationdevices/passport-ur/common/persistance"
	"github.com/foundationdevices/passport-ur/common/socket"
)

var logger = log.SetupLogging("urbridged", logging.INFO)

func main() {
	defer func() {
		if x := recover(); x != nil {
			logger.Error(fmt.Sprintf("run time panic: %v", x))
			logger.Error(string(debug.Stack()))
			panic(x)
		}
	}()

	var cache persistance.MessageCache
	if dir, err := socket.DataDir(); err == nil {
		cache = persistance.FileMessageCache{Dir: dir + "/messages"}
	} else {
		logger.Error("could not resolve data directory, running without a message cache:", err.Error())
	}

	var relay *bridge.Relay
	if arn := os.Getenv("PASSPORT_UR_SNS_TOPIC_ARN"); arn != "" {
		r, err := bridge.NewRelay(arn)
		if err != nil {
			logger.Error("failed to set up sns relay:", err.Error())
		} else {
			relay = r
		}
	}

	server, err := bridge.NewServer(logger, cache, relay)
	if err != nil {
		logger.Fatal(err)
	}

	listener, err := bridge.Listen()
	if err != nil {
		logger.Fatal(err)
	}
	defer listener.Close()

	go func() {
		if err := server.HandleBridgeHTTP(listener); err != nil {
			logger.Error("bridge server returned:", err)
		}
	}()

	logger.Notice("urbridged launched and listening")

	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, os.Interrupt, os.Kill, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM)
	sig, ok := <-stopSignal
	if ok {
		logger.Notice("stopping with signal", sig)
	}
}
