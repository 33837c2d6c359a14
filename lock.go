// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

import "sync"

// globalLock serializes every public entry point. Internal helpers whose
// names end in Unlocked assume the caller already holds it and must never
// acquire it themselves — there is exactly one lock, taken exactly once per
// public call, for the lifetime of the call.
var globalLock sync.Mutex
