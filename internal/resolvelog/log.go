// Package resolvelog is the shared logger for the sharedmime packages,
// following the same "named sugared logger" pattern as the rest of the
// corpus's go-log/v2 usage.
package resolvelog

import logging "github.com/ipfs/go-log/v2"

// Log is the package-wide logger for sharedmime. Debug output is silent
// unless the caller raises the "sharedmime" subsystem level, e.g. via
// logging.SetLogLevel("sharedmime", "debug").
var Log = logging.Logger("sharedmime")
