//go:build debug

package grid

import (
	"fmt"
	"strings"
	"testing"
)

func expectRangePanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("%s: expected a panic", name)
			return
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "out of range") {
			t.Errorf("%s: expected a range assertion, got %q", name, msg)
		}
	}()
	f()
}

func TestBinAccessIsChecked(t *testing.T) {
	table := newTestTable(8)
	if _, err := table.AddSequence("ACGTTGCATGACCATG", 1, nil); err != nil {
		t.Fatal(err)
	}

	expectRangePanic(t, "negative bin", func() { table.NumberOfElementsInBin(-1) })
	expectRangePanic(t, "bin past the end", func() { table.NumberOfElementsInBin(8) })
	expectRangePanic(t, "element of a missing bin", func() { table.ElementInBin(8, 0) })

	for bin := 0; bin < 8; bin++ {
		n := table.NumberOfElementsInBin(bin)
		if n > 0 {
			// valid positions pass the assertions
			_ = table.ElementInBin(bin, n-1)
		}
		expectRangePanic(t, fmt.Sprintf("element past the end of bin %d", bin), func() { table.ElementInBin(bin, n) })
	}
}
