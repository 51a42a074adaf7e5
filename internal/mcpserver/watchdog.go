package mcpserver

import (
	"context"
	"os"
	"time"

	"sift/internal/logging"
)

// WatchParent cancels the server when the parent process dies, so an
// orphaned stdio server does not linger after the client disconnects.
//
// It must never read from stdin: the SDK's StdioTransport owns stdin and
// stray reads would corrupt the JSON-RPC stream.
func WatchParent(ctx context.Context, cancel context.CancelFunc) {
	ppid := os.Getppid()
	logger := logging.New("mcpserver")
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
				if os.Getppid() != ppid {
					logger.Warn("parent process died, shutting down", "was_pid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
