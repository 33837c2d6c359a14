// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam

// PageSize is the operating system page size, verified against the running
// kernel by Init. Pool sizes are always rounded up to a multiple of it.
var PageSize uintptr = 4096

// noCopy is a sentinel used to prevent copying of synchronization primitives.
// go vet's copylocks check flags any struct embedding it that is passed by
// value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
