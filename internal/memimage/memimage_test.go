package memimage

import (
	"strings"
	"testing"
)

func TestParse_SequentialWordsAndSegmentMarker(t *testing.T) {
	src := "00000013\n" + "@00000010\n" + "deadbeef\n" + "# comment\n" + "\n" + "cafebabe\n"
	img, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if img.Words[0] != 0x00000013 {
		t.Fatalf("word 0 = 0x%x, want 0x13", img.Words[0])
	}
	if img.Words[4] != 0xdeadbeef {
		t.Fatalf("word at @0x10 (word idx 4) = 0x%x, want 0xdeadbeef", img.Words[4])
	}
	if img.Words[5] != 0xcafebabe {
		t.Fatalf("word following the segment should continue sequentially, got 0x%x", img.Words[5])
	}
}

func TestParse_BadWordErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("not-hex\n")); err == nil {
		t.Fatalf("expected an error for a non-hex line")
	}
}

func TestWordMemory_ReadWriteRoundTrip(t *testing.T) {
	img := Image{Words: map[uint32]uint32{0: 0x11223344, 1: 0x55667788}}
	mem := NewWordMemory(img, 4)

	if got := mem.ReadWord(0); got != 0x11223344 {
		t.Fatalf("ReadWord(0) = 0x%x, want 0x11223344", got)
	}
	mem.WriteWord(4, 0xAABBCCDD)
	if got := mem.ReadWord(4); got != 0xAABBCCDD {
		t.Fatalf("ReadWord(4) after write = 0x%x, want 0xAABBCCDD", got)
	}
}

func TestWordMemory_OutOfRangeAccessIsANoOp(t *testing.T) {
	mem := NewWordMemory(Image{Words: map[uint32]uint32{}}, 1)
	mem.WriteWord(400, 0xFFFFFFFF)
	if got := mem.ReadWord(400); got != 0 {
		t.Fatalf("out-of-range read should return 0, got 0x%x", got)
	}
}

func TestDefaultSplitter_SplitsBytesInOrder(t *testing.T) {
	img := Image{Words: map[uint32]uint32{0: 0xAABBCCDD}}
	lanes := DefaultSplitter{}.Split(img, 1)
	if lanes.B0[0] != 0xDD || lanes.B1[0] != 0xCC || lanes.B2[0] != 0xBB || lanes.B3[0] != 0xAA {
		t.Fatalf("lane split mismatch: %+v", lanes)
	}
	if lanes.Full[0] != 0xAABBCCDD {
		t.Fatalf("Full lane should carry the untouched word")
	}
}
