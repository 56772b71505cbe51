package linecraft

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// sigPipe is the self-pipe that lets the decoder's blocking
// syscall.Select wake up immediately on SIGINT/SIGWINCH, which spec
// section 5 calls for ("the read itself uses a signal-unblocked wait ...
// so those ... signals interrupt it"). Go's runtime does not let a
// goroutine block a specific signal around one syscall the way C can, so
// a signal-handling goroutine plus a pipe the select() also watches is
// the idiomatic substitute.
type sigPipe struct {
	readFd, writeFd int
	sigCh           chan os.Signal
	once            sync.Once
	stopCh          chan struct{}
}

func newSigPipe() (*sigPipe, error) {
	fds := make([]int, 2)
	if err := syscallPipe2(fds); err != nil {
		return nil, newError(KindIOError, "pipe2", err)
	}
	sp := &sigPipe{
		readFd:  fds[0],
		writeFd: fds[1],
		sigCh:   make(chan os.Signal, 4),
		stopCh:  make(chan struct{}),
	}
	signal.Notify(sp.sigCh, syscall.SIGINT, syscall.SIGWINCH)
	go sp.run()
	return sp, nil
}

func syscallPipe2(fds []int) error {
	var raw [2]int
	if err := unix.Pipe2(raw[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return err
	}
	fds[0], fds[1] = raw[0], raw[1]
	return nil
}

func (sp *sigPipe) run() {
	for {
		select {
		case sig, ok := <-sp.sigCh:
			if !ok {
				return
			}
			var tag byte
			switch sig {
			case syscall.SIGINT:
				tag = 'C'
			case syscall.SIGWINCH:
				tag = 'W'
			default:
				continue
			}
			unix.Write(sp.writeFd, []byte{tag})
		case <-sp.stopCh:
			return
		}
	}
}

// drain consumes any queued wake-up bytes, returning whether a SIGINT
// and/or a SIGWINCH were observed since the last drain.
func (sp *sigPipe) drain() (gotInt, gotWinch bool) {
	buf := make([]byte, 64)
	for {
		n, err := unix.Read(sp.readFd, buf)
		if n <= 0 || err != nil {
			return
		}
		for _, b := range buf[:n] {
			switch b {
			case 'C':
				gotInt = true
			case 'W':
				gotWinch = true
			}
		}
		if n < len(buf) {
			return
		}
	}
}

func (sp *sigPipe) close() {
	sp.once.Do(func() {
		signal.Stop(sp.sigCh)
		close(sp.stopCh)
		unix.Close(sp.readFd)
		unix.Close(sp.writeFd)
	})
}

// installExitRestore arms the best-effort atexit substitute described at
// terminal.go's guardRegistry: on SIGTERM/SIGHUP (the common ways a
// process is asked to die without a defer ever running) restore every
// still-enabled raw mode guard before re-raising the signal with the
// default disposition, so the terminal is never left raw behind a dead
// process. Runs once per process via guardOnce.
func installExitRestore() {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-ch
		restoreAllGuards()
		signal.Stop(ch)
		unixSig, ok := sig.(syscall.Signal)
		if !ok {
			os.Exit(1)
		}
		signal.Reset(unixSig)
		p, err := os.FindProcess(os.Getpid())
		if err == nil {
			p.Signal(unixSig)
		}
	}()
}

// cancelFlag is a tiny atomic bool helper used by decoder.cancelled /
// decoder.needsWinch.
type cancelFlag struct{ v int32 }

func (c *cancelFlag) set(b bool) {
	if b {
		atomic.StoreInt32(&c.v, 1)
	} else {
		atomic.StoreInt32(&c.v, 0)
	}
}

func (c *cancelFlag) get() bool { return atomic.LoadInt32(&c.v) != 0 }
