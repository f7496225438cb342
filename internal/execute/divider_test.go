package execute

import (
	"testing"

	"github.com/TheUnknownThing/R10K-CPU/internal/aluqueue"
	"github.com/TheUnknownThing/R10K-CPU/internal/decode"
)

func runToCompletion(t *testing.T, d *Divider) uint32 {
	t.Helper()
	for cycles := 0; cycles < 64; cycles++ {
		if res, done := d.Step(); done {
			return res
		}
	}
	t.Fatalf("divider did not complete within 64 cycles")
	return 0
}

func TestDivider_SimpleDivision(t *testing.T) {
	d := NewDivider()
	_, immediate := d.Dispatch(decode.OpDIV, aluqueue.Entry{}, 10, 3)
	if immediate {
		t.Fatalf("10/3 should not be a special case")
	}
	if !d.Busy() {
		t.Fatalf("divider should be busy after dispatch")
	}
	got := runToCompletion(t, d)
	if got != 3 {
		t.Fatalf("10/3 = %d, want 3", got)
	}
	if d.Busy() {
		t.Fatalf("divider should be idle after completion")
	}
}

func TestDivider_Remainder(t *testing.T) {
	d := NewDivider()
	d.Dispatch(decode.OpREM, aluqueue.Entry{}, 10, 3)
	if got := runToCompletion(t, d); got != 1 {
		t.Fatalf("10%%3 = %d, want 1", got)
	}
}

func TestDivider_SignedDivision(t *testing.T) {
	d := NewDivider()
	d.Dispatch(decode.OpDIV, aluqueue.Entry{}, 0xFFFFFFF6, 3) // -10
	got := int32(runToCompletion(t, d))
	if got != -3 {
		t.Fatalf("-10/3 = %d, want -3", got)
	}
}

func TestDivider_DivideByZero(t *testing.T) {
	d := NewDivider()
	res, immediate := d.Dispatch(decode.OpDIV, aluqueue.Entry{}, 42, 0)
	if !immediate || res != 0xFFFFFFFF {
		t.Fatalf("DIV x/0: res=0x%x immediate=%v, want quotient all-ones", res, immediate)
	}
	if d.Busy() {
		t.Fatalf("special-cased divide should never touch the iterative core")
	}

	d2 := NewDivider()
	res2, immediate2 := d2.Dispatch(decode.OpREM, aluqueue.Entry{}, 42, 0)
	if !immediate2 || res2 != 42 {
		t.Fatalf("REM x/0: res=%d immediate=%v, want remainder=x", res2, immediate2)
	}
}

func TestDivider_SignedOverflow(t *testing.T) {
	d := NewDivider()
	res, immediate := d.Dispatch(decode.OpDIV, aluqueue.Entry{}, 0x80000000, 0xFFFFFFFF)
	if !immediate || res != 0x80000000 {
		t.Fatalf("INT_MIN/-1: res=0x%x immediate=%v, want quotient=INT_MIN", res, immediate)
	}

	d2 := NewDivider()
	res2, immediate2 := d2.Dispatch(decode.OpREM, aluqueue.Entry{}, 0x80000000, 0xFFFFFFFF)
	if !immediate2 || res2 != 0 {
		t.Fatalf("INT_MIN%%-1: res=%d immediate=%v, want remainder=0", res2, immediate2)
	}
}

func TestDivider_UnsignedDivision(t *testing.T) {
	d := NewDivider()
	d.Dispatch(decode.OpDIVU, aluqueue.Entry{}, 0xFFFFFFFE, 2)
	if got := runToCompletion(t, d); got != 0x7FFFFFFF {
		t.Fatalf("0xFFFFFFFE/2 (unsigned) = 0x%x, want 0x7FFFFFFF", got)
	}
}
