// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import (
	"log"
	"os"
)

// Logger receives diagnostic messages for corruption events, resource
// exhaustion, and other conditions that spec.md requires be logged rather
// than raised to the caller. It defaults to stderr; callers that want
// silence can assign dam.Logger = log.New(io.Discard, "", 0).
var Logger = log.New(os.Stderr, "dam: ", log.LstdFlags)

func logf(format string, args ...any) {
	Logger.Printf(format, args...)
}
