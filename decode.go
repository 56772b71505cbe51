package linecraft

import (
	"syscall"
	"time"
	"unicode"

	"golang.org/x/sys/unix"
)

// KeyKind enumerates the logical keys the decoder produces: a printable
// rune, a named control, an ANSI-sequence key, or one of the synthetic
// end-of-stream keys.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyRune
	KeyEnter
	KeyTab
	KeyBackspace
	KeyCtrlA
	KeyCtrlB
	KeyCtrlC
	KeyCtrlD
	KeyCtrlE
	KeyCtrlF
	KeyCtrlH
	KeyCtrlK
	KeyCtrlL
	KeyCtrlN
	KeyCtrlP
	KeyCtrlR
	KeyCtrlT
	KeyCtrlU
	KeyCtrlW
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyDelete
	KeyClosed
	KeyError
	KeyCancelled
)

// Key is one decoded unit of input.
type Key struct {
	Kind KeyKind
	Rune rune // valid when Kind == KeyRune
}

const runeNone = rune(-1)

// Raw byte values for named controls.
const (
	keycodeNull  = 0
	keycodeCtrlA = 1
	keycodeCtrlB = 2
	keycodeCtrlC = 3
	keycodeCtrlD = 4
	keycodeCtrlE = 5
	keycodeCtrlF = 6
	keycodeCtrlH = 8
	keycodeTAB   = 9
	keycodeLF    = 10
	keycodeCtrlK = 11
	keycodeCtrlL = 12
	keycodeCR    = 13
	keycodeCtrlN = 14
	keycodeCtrlP = 16
	keycodeCtrlR = 18
	keycodeCtrlT = 20
	keycodeCtrlU = 21
	keycodeCtrlW = 23
	keycodeESC   = 27
	keycodeBS    = 127
)

// controlKeys maps a single byte control code to its logical key.
var controlKeys = map[byte]KeyKind{
	keycodeCtrlA: KeyCtrlA,
	keycodeCtrlB: KeyCtrlB,
	keycodeCtrlC: KeyCtrlC,
	keycodeCtrlD: KeyCtrlD,
	keycodeCtrlE: KeyCtrlE,
	keycodeCtrlF: KeyCtrlF,
	keycodeCtrlH: KeyCtrlH,
	keycodeTAB:   KeyTab,
	keycodeCtrlK: KeyCtrlK,
	keycodeCtrlL: KeyCtrlL,
	keycodeCR:    KeyEnter,
	keycodeCtrlN: KeyCtrlN,
	keycodeCtrlP: KeyCtrlP,
	keycodeCtrlR: KeyCtrlR,
	keycodeCtrlT: KeyCtrlT,
	keycodeCtrlU: KeyCtrlU,
	keycodeCtrlW: KeyCtrlW,
	keycodeBS:    KeyBackspace,
}

//-----------------------------------------------------------------------------
// UTF-8 byte-at-a-time decoder, grounded on line.go's utf8 type.

const (
	decodeByte0 = iota
	decodeGet3More
	decodeGet2More
	decodeGet1More
)

type runeDecoder struct {
	state byte
	count int
	val   int32
}

// add feeds one byte into the decoder. size==0 means the rune is not yet
// complete; size>0 returns the decoded rune and its byte length.
func (u *runeDecoder) add(c byte) (r rune, size int) {
	switch u.state {
	case decodeByte0:
		switch {
		case c&0x80 == 0:
			return rune(c), 1
		case c&0xe0 == 0xc0:
			u.val = int32(c&0x1f) << 6
			u.count = 2
			u.state = decodeGet1More
			return runeNone, 0
		case c&0xf0 == 0xe0:
			u.val = int32(c&0x0f) << 6
			u.count = 3
			u.state = decodeGet2More
			return runeNone, 0
		case c&0xf8 == 0xf0:
			u.val = int32(c&0x07) << 6
			u.count = 4
			u.state = decodeGet3More
			return runeNone, 0
		}
	case decodeGet3More:
		if c&0xc0 == 0x80 {
			u.state = decodeGet2More
			u.val = (u.val | int32(c&0x3f)) << 6
			return runeNone, 0
		}
	case decodeGet2More:
		if c&0xc0 == 0x80 {
			u.state = decodeGet1More
			u.val = (u.val | int32(c&0x3f)) << 6
			return runeNone, 0
		}
	case decodeGet1More:
		if c&0xc0 == 0x80 {
			u.state = decodeByte0
			u.val |= int32(c & 0x3f)
			return rune(u.val), u.count
		}
	}
	// malformed sequence: resync and report a replacement char
	u.state = decodeByte0
	return unicode.ReplacementChar, 1
}

//-----------------------------------------------------------------------------
// Read-back queue: up to 32 entries of either a fully decoded Key or a
// single raw byte a sub-state chose not to consume.

const readBackCapacity = 32

type backlogItem struct {
	isRaw bool
	raw   byte
	key   Key
}

type readBackQueue struct {
	items []backlogItem
}

func (q *readBackQueue) pushFrontKey(k Key) {
	q.pushFront(backlogItem{key: k})
}

func (q *readBackQueue) pushFrontRaw(b byte) {
	q.pushFront(backlogItem{isRaw: true, raw: b})
}

func (q *readBackQueue) pushFrontRawBytes(bs []byte) {
	for i := len(bs) - 1; i >= 0; i-- {
		q.pushFront(backlogItem{isRaw: true, raw: bs[i]})
	}
}

func (q *readBackQueue) pushFront(item backlogItem) {
	q.items = append([]backlogItem{item}, q.items...)
	if len(q.items) > readBackCapacity {
		q.items = q.items[:readBackCapacity]
	}
}

func (q *readBackQueue) popFront() (backlogItem, bool) {
	if len(q.items) == 0 {
		return backlogItem{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

func (q *readBackQueue) empty() bool { return len(q.items) == 0 }

//-----------------------------------------------------------------------------
// Decoder: the stateful byte source shared by an Editor.

type decoder struct {
	ifd        int
	dec        runeDecoder
	backlog    readBackQueue
	sig        *sigPipe
	escTimeout time.Duration
	cancelled  cancelFlag
	needsWinch cancelFlag
}

const defaultEscTimeout = 50 * time.Millisecond

func newDecoder(ifd int, sig *sigPipe) *decoder {
	return &decoder{ifd: ifd, sig: sig, escTimeout: defaultEscTimeout}
}

func durationToTimeval(d time.Duration) syscall.Timeval {
	return syscall.Timeval{
		Sec:  int64(d / time.Second),
		Usec: int64((d % time.Second) / time.Microsecond),
	}
}

// readRawByte blocks (bounded by timeout, or indefinitely if timeout is
// nil) until a byte is available on ifd, returning ok=false on timeout.
// SIGWINCH observed while waiting is recorded and waiting continues;
// SIGINT observed while waiting sets cancelled and also returns ok=false,
// distinguishable via d.cancelled.get().
func (d *decoder) readRawByte(timeout *syscall.Timeval) (byte, bool) {
	for {
		var extra []int
		if d.sig != nil {
			extra = []int{d.sig.readFd}
		}
		fdReady, extraReady := selectReadable(d.ifd, extra, timeout)
		if d.sig != nil && len(extraReady) > 0 && extraReady[0] {
			gotInt, gotWinch := d.sig.drain()
			if gotWinch {
				d.needsWinch.set(true)
			}
			if gotInt {
				d.cancelled.set(true)
				return 0, false
			}
			if !fdReady {
				// spurious/winch-only wakeup: keep waiting for the same
				// overall timeout budget by looping (timeout is typically
				// small and nil->unbounded anyway for the common case).
				continue
			}
		}
		if !fdReady {
			return 0, false
		}
		buf := make([]byte, 1)
		n, err := syscall.Read(d.ifd, buf)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return 0, false
		}
		if n == 0 {
			return 0, false
		}
		return buf[0], true
	}
}

// readKey pulls one logical Key, preferring anything queued in the
// read-back queue, then falling back to a fresh byte read that may block
// indefinitely.
func (d *decoder) readKey() Key {
	if item, ok := d.backlog.popFront(); ok {
		if item.isRaw {
			return d.decodeByte(item.raw)
		}
		return item.key
	}
	b, ok := d.readRawByte(nil)
	if !ok {
		if d.cancelled.get() {
			return Key{Kind: KeyCancelled}
		}
		return Key{Kind: KeyClosed}
	}
	return d.decodeByte(b)
}

// decodeByte classifies one byte, consuming continuation bytes for
// multi-byte UTF-8 and escape sequences as needed.
func (d *decoder) decodeByte(b byte) Key {
	if b == keycodeESC {
		return d.decodeEsc()
	}
	if b < 0x80 {
		if kind, ok := controlKeys[b]; ok {
			return Key{Kind: kind}
		}
		if b >= 0x20 {
			return Key{Kind: KeyRune, Rune: rune(b)}
		}
		// unnamed C0 control: ignore by reading the next key.
		return d.readKey()
	}
	// multi-byte UTF-8 lead byte.
	d.dec = runeDecoder{}
	r, size := d.dec.add(b)
	for size == 0 {
		nb, ok := d.readRawByte(nil)
		if !ok {
			return Key{Kind: KeyClosed}
		}
		r, size = d.dec.add(nb)
	}
	return Key{Kind: KeyRune, Rune: r}
}

// decodeEsc disambiguates a bare ESC from the start of a CSI/SS2/SS3
// sequence: arm the one-shot escTimeout; if it fires first, ESC is a key
// on its own, otherwise the following bytes are parsed as an ANSI escape
// sequence.
func (d *decoder) decodeEsc() Key {
	tv := durationToTimeval(d.escTimeout)
	b0, ok := d.readRawByte(&tv)
	if !ok {
		if d.cancelled.get() {
			return Key{Kind: KeyCancelled}
		}
		return Key{Kind: KeyEsc}
	}
	switch b0 {
	case '[':
		return d.decodeCSI()
	case 'N':
		return d.decodeSS(2)
	case 'O':
		return d.decodeSS(3)
	default:
		// other C1 escapes are not modeled; demote to raw bytes.
		d.backlog.pushFrontRawBytes([]byte{b0})
		return Key{Kind: KeyEsc}
	}
}

// decodeSS reads the single byte that follows SS2 (ESC N) or SS3 (ESC O)
// and maps it to a key; width is 2 or 3 for diagnostics only.
func (d *decoder) decodeSS(width int) Key {
	b, ok := d.readRawByte(nil)
	if !ok {
		return Key{Kind: KeyClosed}
	}
	switch b {
	case 'H':
		return Key{Kind: KeyHome}
	case 'F':
		return Key{Kind: KeyEnd}
	default:
		d.backlog.pushFrontRawBytes([]byte{b})
		return Key{Kind: KeyEsc}
	}
}

// decodeCSI implements the ECMA-048 CSI sub-parser: parameter bytes
// 0x30-0x3F, intermediate bytes 0x20-0x2F, a final byte 0x40-0x7E.
// Recognized sequences are mapped to logical keys; anything else is
// pushed back as raw bytes.
func (d *decoder) decodeCSI() Key {
	var params []byte
	var intermediate []byte
	raw := []byte{'['}
	for {
		b, ok := d.readRawByte(nil)
		if !ok {
			d.backlog.pushFrontRawBytes(raw)
			return Key{Kind: KeyEsc}
		}
		raw = append(raw, b)
		switch {
		case b >= 0x30 && b <= 0x3f:
			params = append(params, b)
		case b >= 0x20 && b <= 0x2f:
			intermediate = append(intermediate, b)
		case b >= 0x40 && b <= 0x7e:
			return d.lookupCSI(string(params), string(intermediate), b, raw)
		default:
			// not a valid CSI byte: abandon and demote.
			d.backlog.pushFrontRawBytes(raw)
			return Key{Kind: KeyEsc}
		}
	}
}

func (d *decoder) lookupCSI(params, intermediate string, final byte, raw []byte) Key {
	if intermediate == "" {
		switch {
		case params == "" && final == 'A':
			return Key{Kind: KeyUp}
		case params == "" && final == 'B':
			return Key{Kind: KeyDown}
		case params == "" && final == 'C':
			return Key{Kind: KeyRight}
		case params == "" && final == 'D':
			return Key{Kind: KeyLeft}
		case params == "" && final == 'H':
			return Key{Kind: KeyHome}
		case params == "" && final == 'F':
			return Key{Kind: KeyEnd}
		case params == "1" && final == '~':
			return Key{Kind: KeyHome}
		case params == "4" && final == '~':
			return Key{Kind: KeyEnd}
		case params == "3" && final == '~':
			return Key{Kind: KeyDelete}
		}
	}
	// unrecognized CSI sequence: push the raw bytes (minus the already
	// consumed ESC) back so the caller sees them verbatim.
	d.backlog.pushFrontRawBytes(raw)
	return Key{Kind: KeyEsc}
}

//-----------------------------------------------------------------------------
// async support

// setNonblocking toggles O_NONBLOCK on fd. Nothing in the package calls
// it: ReadLineAsync polls with a zero-timeout select (see tryReadKey).
func setNonblocking(fd int, nonblocking bool) error {
	return unix.SetNonblock(fd, nonblocking)
}

// tryReadKey is the non-blocking counterpart of readKey used by the async
// edit loop: it does not wait for a first byte, returning ok=false (not
// EAGAIN-specific) when nothing is available yet so the caller can return
// Continue. Once a byte has been read, the rest of that key (a multi-byte
// rune, an escape sequence, or the key after an unnamed control byte) is
// decoded with the same blocking reads readKey uses.
func (d *decoder) tryReadKey() (Key, bool) {
	if item, ok := d.backlog.popFront(); ok {
		if item.isRaw {
			return d.decodeByte(item.raw), true
		}
		return item.key, true
	}
	zero := syscall.Timeval{}
	b, ok := d.readRawByte(&zero)
	if !ok {
		if d.cancelled.get() {
			return Key{Kind: KeyCancelled}, true
		}
		return Key{}, false
	}
	return d.decodeByte(b), true
}
