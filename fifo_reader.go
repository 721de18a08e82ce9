// fifo_reader.go - Ring-buffer protocol reader over the SVGA command FIFO

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

// FifoReader loads MIN/MAX once (acquire) at construction and caches them
// along with the derived length. MIN and MAX never change for the life of
// a FifoState, so re-reading them per view would be pure overhead.
type FifoReader struct {
	mem          *SharedMem
	min, max     uint32
	fifoLenBytes uint32
}

// NewFifoReader constructs a reader over mem, which must already be offset
// past the two-word magic skip (fifoHeaderOffsetWords). Fatal (protocol
// violation, category 1) if MIN >= MAX or either bound is not word-aligned.
func NewFifoReader(mem *SharedMem) *FifoReader {
	min := mem.LoadAcquire(fifoHdrMin)
	max := mem.LoadAcquire(fifoHdrMax)
	if min >= max {
		panic("fifo_reader: MIN >= MAX")
	}
	if min%WordSize != 0 || max%WordSize != 0 {
		panic("fifo_reader: MIN/MAX not word-aligned")
	}
	return &FifoReader{mem: mem, min: min, max: max, fifoLenBytes: max - min}
}

// byteToWordIdx converts a byte offset into mem (already past the magic
// two-word skip) to a word index. MIN/MAX/NEXT_CMD/STOP are themselves
// byte offsets measured from this same base, so no further adjustment
// is needed.
func (r *FifoReader) byteToWordIdx(b uint32) int {
	return int(b / WordSize)
}

func (r *FifoReader) checkCursor(c uint32) {
	if c < r.min || c >= r.max || c%WordSize != 0 {
		panic("fifo_reader: cursor out of range or misaligned")
	}
}

// advance returns c advanced by nBytes, wrapping at MAX back to MIN.
func (r *FifoReader) advance(c, nBytes uint32) uint32 {
	off := (c - r.min + nBytes) % r.fifoLenBytes
	return r.min + off
}

// FifoView is a single peek/commit transaction. Dropping it without calling
// Commit discards the peeks: the guest-visible STOP cursor is untouched and
// the same words are re-read on the next view.
type FifoView struct {
	r            *FifoReader
	stop         uint32 // STOP at view creation, byte offset
	available    int    // words available at view creation
	cmdPos       uint32 // current peek cursor, byte offset
	peekedAmount int    // words peeked so far
}

// View opens a new transaction: loads STOP then NEXT_CMD, both acquire, and
// computes the number of whole words available.
func (r *FifoReader) View() *FifoView {
	stop := r.mem.LoadAcquire(fifoHdrStop)
	next := r.mem.LoadAcquire(fifoHdrNextCmd)
	r.checkCursor(stop)
	r.checkCursor(next)
	available := int(((next - stop + r.fifoLenBytes) % r.fifoLenBytes) / WordSize)
	return &FifoView{r: r, stop: stop, available: available, cmdPos: stop, peekedAmount: 0}
}

// Available returns the number of words frozen at view creation, minus
// however many have already been peeked out of this view.
func (v *FifoView) Available() int {
	return v.available - v.peekedAmount
}

// Next reads one word via volatile load at the current peek cursor and
// advances it, wrapping at MAX back to MIN. Returns ok=false once every
// word available at view creation has been consumed.
func (v *FifoView) Next() (word uint32, ok bool) {
	if v.peekedAmount >= v.available {
		return 0, false
	}
	idx := v.r.byteToWordIdx(v.cmdPos)
	word = v.r.mem.ReadVolatile(idx)
	v.cmdPos = v.r.advance(v.cmdPos, WordSize)
	v.peekedAmount++
	return word, true
}

// Borrow exposes n contiguous words starting at the current peek cursor.
// The fast path (the span does not cross MAX) reads one contiguous run of
// words; the slow path (wrap) reads the pre-wrap span and then the
// post-wrap span from MIN. Both return a freshly allocated copy, never an
// alias of shared memory. Returns ok=false if fewer than n words remain in
// this view.
// Either way the peek cursor and peekedAmount advance by n words, exactly
// as repeated Next calls would.
func (v *FifoView) Borrow(n int) (words []uint32, ok bool) {
	if n < 0 || v.peekedAmount+n > v.available {
		return nil, false
	}
	startIdx := v.r.byteToWordIdx(v.cmdPos)
	maxIdx := v.r.byteToWordIdx(v.r.max)
	if startIdx+n <= maxIdx {
		// Fast path: no wrap. Alias the shared bytes as a uint32 slice by
		// reading each word through the atomic accessor - SharedMem does
		// not expose a raw []uint32 alias (shared bytes must never be read
		// non-atomically), so "direct borrow" here means a cheap strided
		// copy rather than a zero-copy slice-of-the-backing-array; the
		// wrap/no-wrap distinction is preserved in which spans get walked.
		out := make([]uint32, n)
		for i := 0; i < n; i++ {
			out[i] = v.r.mem.ReadVolatile(startIdx + i)
		}
		v.cmdPos = v.r.advance(v.cmdPos, uint32(n)*WordSize)
		v.peekedAmount += n
		return out, true
	}

	// Slow path: the span crosses MAX. Copy the pre-wrap span then the
	// post-wrap span starting back at MIN.
	minIdx := v.r.byteToWordIdx(v.r.min)
	firstLen := maxIdx - startIdx
	out := make([]uint32, n)
	for i := 0; i < firstLen; i++ {
		out[i] = v.r.mem.ReadVolatile(startIdx + i)
	}
	for i := 0; i < n-firstLen; i++ {
		out[firstLen+i] = v.r.mem.ReadVolatile(minIdx + i)
	}
	v.cmdPos = v.r.advance(v.cmdPos, uint32(n)*WordSize)
	v.peekedAmount += n
	return out, true
}

// Commit atomically advances STOP by peekedAmount words, modulo
// fifoLenBytes, with release. Uses a CAS loop: the spec forbids more than
// one concurrent reader, but the CAS is a defense against that invariant
// being violated rather than a documented multi-reader protocol.
func (v *FifoView) Commit() {
	if v.peekedAmount == 0 {
		return
	}
	advanceBytes := uint32(v.peekedAmount) * WordSize
	for {
		cur := v.r.mem.LoadAcquire(fifoHdrStop)
		next := v.r.advance(cur, advanceBytes)
		if v.r.mem.CompareAndSwap(fifoHdrStop, cur, next) {
			return
		}
	}
}
