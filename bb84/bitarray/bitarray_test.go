package bitarray

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestBitwiseOps(t *testing.T) {
	tcs := []struct {
		name string
		a, b Dense
		op   func(Dense, Dense) Dense
		want Dense
	}{{
		name: "and",
		a:    NewDense([]byte{0b1100}, 4),
		b:    NewDense([]byte{0b1010}, 4),
		op:   Dense.And,
		want: NewDense([]byte{0b1000}, 4),
	}, {
		name: "xor",
		a:    NewDense([]byte{0b1100}, 4),
		b:    NewDense([]byte{0b1010}, 4),
		op:   Dense.XOr,
		want: NewDense([]byte{0b0110}, 4),
	}, {
		name: "xnor",
		a:    NewDense([]byte{0b1100}, 4),
		b:    NewDense([]byte{0b1010}, 4),
		op:   Dense.XNor,
		want: NewDense([]byte{0b1001}, 4),
	}, {
		name: "xor implies trailing zeros",
		a:    NewDense([]byte{0b11}, 2),
		b:    NewDense([]byte{0b111111}, 6),
		op:   Dense.XOr,
		want: NewDense([]byte{0b111100}, 6),
	}, {
		name: "xnor masks its tail",
		a:    NewDense([]byte{0b101}, 3),
		b:    NewDense([]byte{0b101}, 3),
		op:   Dense.XNor,
		want: NewDense([]byte{0b111}, 3),
	}}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.op(tc.a, tc.b)
			if got.Size() != tc.want.Size() {
				t.Fatalf("got size %d, want %d", got.Size(), tc.want.Size())
			}
			if !bytes.Equal(got.Data(), tc.want.Data()) {
				t.Errorf("got %08b, want %08b", got.Data(), tc.want.Data())
			}
		})
	}
}

func TestNewDenseMasksTail(t *testing.T) {
	d := NewDense([]byte{0xFF}, 3)
	if got := d.Data()[0]; got != 0b111 {
		t.Errorf("Data()[0] == %08b, want %08b", got, 0b111)
	}
	if d.CountOnes() != 3 {
		t.Errorf("CountOnes() == %d, want 3", d.CountOnes())
	}
	if !d.Parity() {
		t.Errorf("Parity() == false, want true")
	}
}

func TestGetSetFlip(t *testing.T) {
	d := NewDense(nil, 10)
	d.Set(3, true)
	d.Set(9, true)
	d.Flip(9)
	d.Flip(4)
	for i := 0; i < 10; i++ {
		want := i == 3 || i == 4
		if d.Get(i) != want {
			t.Errorf("Get(%d) == %v, want %v", i, d.Get(i), want)
		}
	}
	if d.Get(100) {
		t.Errorf("Get out of range == true, want false")
	}
}

func TestAppend(t *testing.T) {
	var d Dense
	for _, b := range []bool{true, false, true} {
		d.AppendBit(b)
	}
	d.Append(NewDense([]byte{0b0110, 0}, 12))
	if d.Size() != 15 {
		t.Fatalf("Size() == %d, want 15", d.Size())
	}
	want := []bool{true, false, true, false, true, true}
	for i, w := range want {
		if d.Get(i) != w {
			t.Errorf("Get(%d) == %v, want %v", i, d.Get(i), w)
		}
	}
}

func TestSelect(t *testing.T) {
	d := NewDense([]byte{0b10110100}, 8)
	mask := NewDense([]byte{0b11000110}, 8)
	got := d.Select(mask)
	want := NewDense([]byte{0b1010}, 4)
	if !Equal(got, want) {
		t.Errorf("Select == %08b (len %d), want %08b", got.Data(), got.Size(), want.Data())
	}
}

func TestSlice(t *testing.T) {
	d := NewDense([]byte{0b10110100, 0b1}, 9)
	got, err := d.Slice(2, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := NewDense([]byte{0b1101101}, 7)
	if !Equal(got, want) {
		t.Errorf("Slice(2, 9) == %08b, want %08b", got.Data(), want.Data())
	}
	if _, err := d.Slice(4, 12); err == nil {
		t.Errorf("Slice beyond end: got nil error")
	}
	if _, err := d.Slice(-1, 3); err == nil {
		t.Errorf("Slice with negative start: got nil error")
	}
}

func TestShufflePreservesWeight(t *testing.T) {
	d := NewDense([]byte{0b00111001, 0b101}, 12)
	ones := d.CountOnes()
	d.Shuffle(rand.New(rand.NewSource(7)))
	if d.CountOnes() != ones {
		t.Errorf("CountOnes() == %d after shuffle, want %d", d.CountOnes(), ones)
	}
	if d.Size() != 12 {
		t.Errorf("Size() == %d after shuffle, want 12", d.Size())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := NewDense([]byte{0b1111}, 4)
	c := d.Clone()
	c.Flip(0)
	if !d.Get(0) {
		t.Errorf("mutating a clone modified the original")
	}
	if c.Get(0) {
		t.Errorf("Flip on clone had no effect")
	}
}
