// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package hashmode_test

import (
	"testing"

	"github.com/hashlist-tools/saltscan/lib/hashmode"
)

func TestDescription(t *testing.T) {
	t.Parallel()

	label, ok := hashmode.Description(10)
	if !ok || label != "md5($pass.$salt)" {
		t.Errorf("Description(10) = %q, %v", label, ok)
	}
	label, ok = hashmode.Description(2711)
	if !ok || label != "vBulletin >= v3.8.5 (md5(md5($pass).$salt))" {
		t.Errorf("Description(2711) = %q, %v", label, ok)
	}
	if _, ok := hashmode.Description(0); ok {
		t.Error("Description(0) reported supported")
	}
	if _, ok := hashmode.Description(1000); ok {
		t.Error("Description(1000) reported supported")
	}
}

func TestAllSortedAndComplete(t *testing.T) {
	t.Parallel()

	modes := hashmode.All()
	if len(modes) != 25 {
		t.Fatalf("All returned %d modes, want 25", len(modes))
	}
	for i := 1; i < len(modes); i++ {
		if modes[i-1].Number >= modes[i].Number {
			t.Fatalf("All not sorted: %d before %d", modes[i-1].Number, modes[i].Number)
		}
	}
	if modes[0].Number != 10 {
		t.Errorf("lowest mode = %d, want 10", modes[0].Number)
	}
	if modes[len(modes)-1].Number != 10840 {
		t.Errorf("highest mode = %d, want 10840", modes[len(modes)-1].Number)
	}
	for _, m := range modes {
		label, ok := hashmode.Description(m.Number)
		if !ok || label != m.Label {
			t.Errorf("Description(%d) = %q, %v; All has %q", m.Number, label, ok, m.Label)
		}
	}
}
