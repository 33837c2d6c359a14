// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dam_test

import (
	"bytes"
	"strings"
	"testing"

	"code.hybscloud.com/dam"
)

func TestDumpStateListsLivePools(t *testing.T) {
	reset(t)
	p := dam.Allocate(4096)
	defer dam.Free(p)

	var buf bytes.Buffer
	dam.DumpState(&buf)

	out := buf.String()
	if !strings.Contains(out, "general") {
		t.Fatalf("dump missing general-tier pool: %q", out)
	}
}
