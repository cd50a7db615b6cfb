package bitvec

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	a := New(W32, 123)
	b := New(W32, 77)
	if got := a.Add(b).Sub(b); got.Int() != a.Int() {
		t.Fatalf("(a+b)-b = %d, want %d", got.Int(), a.Int())
	}
}

func TestNotInvolution(t *testing.T) {
	a := New(W16, 0x5AA5)
	if got := a.Not().Not(); got.Bits() != a.Bits() {
		t.Fatalf("~~a = %x, want %x", got.Bits(), a.Bits())
	}
}

func TestXorSelfIsZero(t *testing.T) {
	a := New(W8, -13)
	if r := a.Xor(a); !r.IsZero() {
		t.Fatalf("a^a = %x, want zero", r.Bits())
	}
}

func TestAddFlagsCarryZero(t *testing.T) {
	a := New(W32, -1) // 0xFFFFFFFF
	b := New(W32, 1)
	r := a.Add(b)
	if !r.IsZero() || !r.Flags.C || r.Flags.V || r.Flags.N {
		t.Fatalf("flags = %+v, want Z=true C=true V=false N=false", r.Flags)
	}
}

func TestAddOverflow(t *testing.T) {
	a := New(W8, 127)
	b := New(W8, 1)
	r := a.Add(b)
	if !r.Flags.V || !r.Flags.N || r.Flags.C {
		t.Fatalf("flags = %+v, want V=true N=true C=false", r.Flags)
	}
}

func TestShlCarry(t *testing.T) {
	a := FromBits(W8, 0x81)
	r := a.Shl(1)
	if r.Bits() != 0x02 || !r.Flags.C {
		t.Fatalf("shl = %x carry=%v, want 0x02 true", r.Bits(), r.Flags.C)
	}
}

func TestShlZeroAmountNoCarry(t *testing.T) {
	a := FromBits(W8, 0x81)
	r := a.Shl(0)
	if r.Flags.C {
		t.Fatalf("shl by 0 should not set carry")
	}
}

func TestAshrSignExtends(t *testing.T) {
	a := New(W8, -2) // 0xFE
	r := a.Ashr(1)
	if r.Int() != -1 {
		t.Fatalf("ashr(-2,1) = %d, want -1", r.Int())
	}
}

func TestRotlRotrInverse(t *testing.T) {
	a := FromBits(W32, 0xA1B2C3D4)
	r := a.Rotl(7).Rotr(7)
	if r.Bits() != a.Bits() {
		t.Fatalf("rotl/rotr roundtrip = %x, want %x", r.Bits(), a.Bits())
	}
}

func TestAdcSeedsCarry(t *testing.T) {
	a := New(W8, 1)
	b := New(W8, 1)
	withoutCarry := a.Adc(b, false)
	withCarry := a.Adc(b, true)
	if withoutCarry.Int() != 2 || withCarry.Int() != 3 {
		t.Fatalf("adc = %d/%d, want 2/3", withoutCarry.Int(), withCarry.Int())
	}
}

func TestSbcBorrowsWithCarryIn(t *testing.T) {
	a := New(W8, 5)
	b := New(W8, 3)
	r := a.Sbc(b, true) // cin=1 means no extra borrow, same as Sub
	if r.Int() != 2 {
		t.Fatalf("sbc(5,3,cin=1) = %d, want 2", r.Int())
	}
	r2 := a.Sbc(b, false) // cin=0 means an extra borrow
	if r2.Int() != 1 {
		t.Fatalf("sbc(5,3,cin=0) = %d, want 1", r2.Int())
	}
}

func TestFitsSigned20(t *testing.T) {
	if !FitsSigned20(524287) || !FitsSigned20(-524288) {
		t.Fatalf("boundary values should fit in 20 bits")
	}
	if FitsSigned20(524288) || FitsSigned20(-524289) {
		t.Fatalf("out-of-range values should not fit in 20 bits")
	}
}

func TestSignExtend20RoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 524287, -524288, 12345, -54321} {
		field := Imm20(n)
		if got := SignExtend20(field); int64(got) != n {
			t.Fatalf("SignExtend20(Imm20(%d)) = %d", n, got)
		}
	}
}
