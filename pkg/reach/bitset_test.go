package reach

import "testing"

func TestBitSet_GetSet(t *testing.T) {
	b := newBitSet(130) // spans three words

	for _, i := range []int{0, 1, 63, 64, 65, 127, 128, 129} {
		if b.Get(i) {
			t.Errorf("Get(%d) = true on a fresh set, want false", i)
		}
	}

	set := []int{0, 63, 64, 129}
	for _, i := range set {
		b.Set(i)
	}
	for _, i := range set {
		if !b.Get(i) {
			t.Errorf("Get(%d) = false after Set, want true", i)
		}
	}
	for _, i := range []int{1, 62, 65, 128} {
		if b.Get(i) {
			t.Errorf("Get(%d) = true, want false", i)
		}
	}
}

func TestBitSet_OrWith(t *testing.T) {
	a := newBitSet(100)
	b := newBitSet(100)
	a.Set(3)
	a.Set(70)
	b.Set(70)
	b.Set(99)

	a.OrWith(b)

	for _, i := range []int{3, 70, 99} {
		if !a.Get(i) {
			t.Errorf("Get(%d) = false after OrWith, want true", i)
		}
	}
	// OrWith must not mutate its argument.
	if b.Get(3) {
		t.Error("OrWith modified the other set")
	}
}

func TestBitSet_OrWithSizeMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("OrWith with mismatched sizes did not panic")
		}
	}()
	newBitSet(64).OrWith(newBitSet(65))
}

func TestBitSet_Clear(t *testing.T) {
	b := newBitSet(70)
	b.Set(0)
	b.Set(69)

	b.Clear()

	if b.Get(0) || b.Get(69) {
		t.Error("Clear left bits set")
	}
	if !b.Equal(newBitSet(70)) {
		t.Error("cleared set is not equal to a fresh set")
	}
}

func TestBitSet_Equal(t *testing.T) {
	a := newBitSet(64)
	b := newBitSet(64)

	if !a.Equal(b) {
		t.Error("fresh sets of equal size are not Equal")
	}

	a.Set(10)
	if a.Equal(b) {
		t.Error("sets with different bits reported Equal")
	}

	b.Set(10)
	if !a.Equal(b) {
		t.Error("sets with identical bits reported not Equal")
	}

	if a.Equal(newBitSet(65)) {
		t.Error("sets of different sizes reported Equal")
	}
}

func TestBitSet_OutOfRange(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*BitSet)
	}{
		{"Get negative", func(b *BitSet) { b.Get(-1) }},
		{"Get past end", func(b *BitSet) { b.Get(64) }},
		{"Set past end", func(b *BitSet) { b.Set(64) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s did not panic", tt.name)
				}
			}()
			tt.fn(newBitSet(64))
		})
	}
}
