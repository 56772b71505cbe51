package linecraft

import (
	"testing"
	"time"
)

func TestRuneDecoderASCII(t *testing.T) {
	var d runeDecoder
	r, size := d.add('a')
	if size != 1 || r != 'a' {
		t.Fatalf("got (%q, %d), want ('a', 1)", r, size)
	}
}

func TestRuneDecoderMultiByte(t *testing.T) {
	// '한' (U+D55C) encodes as the 3 bytes 0xED 0x95 0x9C.
	var d runeDecoder
	bs := []byte{0xED, 0x95, 0x9C}
	var r rune
	var size int
	for _, b := range bs {
		r, size = d.add(b)
	}
	if size != 3 || r != '한' {
		t.Fatalf("got (%q, %d), want ('한', 3)", r, size)
	}
}

func TestRuneDecoderMalformedResyncs(t *testing.T) {
	var d runeDecoder
	// a lead byte announcing 2 more continuation bytes, followed by a
	// non-continuation byte: the decoder should resync and report U+FFFD.
	d.add(0xe0)
	r, size := d.add('x')
	if size != 1 {
		t.Fatalf("size = %d, want 1", size)
	}
	if r != 0xFFFD {
		t.Fatalf("r = %U, want U+FFFD", r)
	}
	// the decoder must be usable again afterwards.
	r2, size2 := d.add('y')
	if r2 != 'y' || size2 != 1 {
		t.Fatalf("decoder did not resync: got (%q, %d)", r2, size2)
	}
}

func TestReadBackQueueOrdering(t *testing.T) {
	var q readBackQueue
	q.pushFrontRaw('a')
	q.pushFrontRaw('b') // pushed after 'a', so 'b' is now at the front
	item, ok := q.popFront()
	if !ok || item.raw != 'b' {
		t.Fatalf("popFront = %v, want 'b'", item)
	}
	item, ok = q.popFront()
	if !ok || item.raw != 'a' {
		t.Fatalf("popFront = %v, want 'a'", item)
	}
	if !q.empty() {
		t.Error("queue should be empty")
	}
}

func TestDecodeCSIArrowKeys(t *testing.T) {
	tests := []struct {
		bytes []byte
		want  KeyKind
	}{
		{[]byte{27, '[', 'A'}, KeyUp},
		{[]byte{27, '[', 'B'}, KeyDown},
		{[]byte{27, '[', 'C'}, KeyRight},
		{[]byte{27, '[', 'D'}, KeyLeft},
		{[]byte{27, '[', 'H'}, KeyHome},
		{[]byte{27, '[', 'F'}, KeyEnd},
		{[]byte{27, '[', '3', '~'}, KeyDelete},
		{[]byte{27, '[', '1', '~'}, KeyHome},
		{[]byte{27, '[', '4', '~'}, KeyEnd},
	}

	run := func(bs []byte, want KeyKind) {
		t.Helper()
		r, w, err := pipePair(t)
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		defer w.Close()
		go w.Write(bs)
		d := newDecoder(int(r.Fd()), nil)
		k := d.readKey()
		if k.Kind != want {
			t.Errorf("decode(% x) kind = %v, want %v", bs, k.Kind, want)
		}
	}

	for _, tt := range tests {
		run(tt.bytes, tt.want)
	}
}

func TestDecodeBareEscTimesOut(t *testing.T) {
	r, w, err := pipePair(t)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()
	go w.Write([]byte{27})
	d := newDecoder(int(r.Fd()), nil)
	d.escTimeout = 10 * time.Millisecond
	k := d.readKey()
	if k.Kind != KeyEsc {
		t.Errorf("kind = %v, want KeyEsc", k.Kind)
	}
}

func TestDecodeControlKeys(t *testing.T) {
	tests := map[byte]KeyKind{
		1:   KeyCtrlA,
		5:   KeyCtrlE,
		13:  KeyEnter,
		127: KeyBackspace,
	}
	for b, want := range tests {
		r, w, err := pipePair(t)
		if err != nil {
			t.Fatal(err)
		}
		go w.Write([]byte{b})
		d := newDecoder(int(r.Fd()), nil)
		k := d.readKey()
		r.Close()
		w.Close()
		if k.Kind != want {
			t.Errorf("decode(%d) = %v, want %v", b, k.Kind, want)
		}
	}
}
