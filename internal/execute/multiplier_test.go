package execute

import (
	"testing"

	"github.com/TheUnknownThing/R10K-CPU/internal/decode"
)

func TestMultiply_MULLowWord(t *testing.T) {
	got := Multiply(decode.OpMUL, 6, 7)
	if got != 42 {
		t.Fatalf("6*7 = %d, want 42", got)
	}
}

func TestMultiply_MULWrapsOnOverflow(t *testing.T) {
	got := Multiply(decode.OpMUL, 0x80000000, 2)
	if got != 0 {
		t.Fatalf("0x80000000*2 low word should wrap to 0, got 0x%x", got)
	}
}

func TestMultiply_MULHSignedBothNegative(t *testing.T) {
	a := uint32(0xFFFFFFFE) // -2
	b := uint32(0xFFFFFFFD) // -3
	got := int32(Multiply(decode.OpMULH, a, b))
	if got != 0 {
		t.Fatalf("MULH(-2,-3) high word should be 0 (product is 6), got %d", got)
	}
}

func TestMultiply_MULHUUnsignedLargeOperands(t *testing.T) {
	got := Multiply(decode.OpMULHU, 0xFFFFFFFF, 0xFFFFFFFF)
	if got != 0xFFFFFFFE {
		t.Fatalf("MULHU(0xFFFFFFFF,0xFFFFFFFF) high word = 0x%x, want 0xFFFFFFFE", got)
	}
}

func TestMultiply_MULHSUMixedSigns(t *testing.T) {
	a := uint32(0xFFFFFFFF) // -1
	got := int32(Multiply(decode.OpMULHSU, a, 1))
	if got != -1 {
		t.Fatalf("MULHSU(-1,1) high word should sign-extend to -1, got %d", got)
	}
}

func TestMultiply_MULHUnsignedHighWordZeroForSmallProduct(t *testing.T) {
	got := Multiply(decode.OpMULHU, 2, 3)
	if got != 0 {
		t.Fatalf("MULHU(2,3) high word should be 0, got %d", got)
	}
}
