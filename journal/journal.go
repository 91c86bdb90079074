// Package journal implements the append-only durability log behind a
// cache engine: a binary, length-prefixed record format, two flush
// disciplines (synchronous and periodic), and replay through an
// engine-supplied Applier so policy state always ends up consistent
// with store state.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Path returns the on-disk path for a journal given its folder and
// cache name, the same path Open and Replay both operate on.
func Path(folder, cacheName string) string {
	return filepath.Join(folder, cacheName)
}

// Options configures Open.
type Options[K comparable, V any] struct {
	Folder    string
	CacheName string

	// FlushTime nil means every Append* call writes and fsyncs before
	// returning. A non-nil, positive duration starts a background
	// goroutine that batches pending records and flushes them on that
	// cadence instead.
	FlushTime *time.Duration

	// Codec must not be nil.
	Codec Codec[K, V]

	// OnFlushError, if set, is called from the periodic flusher
	// goroutine whenever a batch write or fsync fails. Never called in
	// synchronous mode, where the error is returned directly instead.
	OnFlushError func(error)

	// OnFlush, if set, is called after every periodic flush attempt
	// (success or failure) with the outcome and the number of records
	// in that batch. Not called in synchronous mode; the caller of
	// Append* already knows the outcome of its own call.
	OnFlush func(ok bool, records int)

	Logger zerolog.Logger
}

// Journal is an append-only, binary-encoded operation log.
type Journal[K comparable, V any] struct {
	file  *os.File
	codec Codec[K, V]
	log   zerolog.Logger

	synchronous bool

	mu      sync.Mutex
	pending []rawRecord

	onFlushError func(error)
	onFlush      func(ok bool, records int)

	stop chan struct{}
	done chan struct{}
}

// Open creates the journal file if absent and appends to it if
// present. It never reads or replays existing content — callers
// replay before calling Open so replay doesn't observe its own writes.
func Open[K comparable, V any](opt Options[K, V]) (*Journal[K, V], error) {
	if opt.Codec == nil {
		return nil, fmt.Errorf("%w: nil codec", ErrIO)
	}
	if err := os.MkdirAll(opt.Folder, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating journal folder: %v", ErrIO, err)
	}
	f, err := os.OpenFile(Path(opt.Folder, opt.CacheName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening journal file: %v", ErrIO, err)
	}

	j := &Journal[K, V]{
		file:         f,
		codec:        opt.Codec,
		log:          opt.Logger,
		synchronous:  opt.FlushTime == nil,
		onFlushError: opt.OnFlushError,
		onFlush:      opt.OnFlush,
	}
	if !j.synchronous {
		j.stop = make(chan struct{})
		j.done = make(chan struct{})
		go j.runPeriodicFlush(*opt.FlushTime)
	}
	return j, nil
}

// AppendPut encodes and appends a PUT record.
func (j *Journal[K, V]) AppendPut(k K, v V) error {
	kb, err := j.codec.EncodeKey(k)
	if err != nil {
		return fmt.Errorf("%w: encoding key: %v", ErrIO, err)
	}
	vb, err := j.codec.EncodeValue(v)
	if err != nil {
		return fmt.Errorf("%w: encoding value: %v", ErrIO, err)
	}
	return j.append(rawRecord{Kind: KindPut, Key: kb, Value: vb})
}

// AppendRemove encodes and appends a REMOVE record.
func (j *Journal[K, V]) AppendRemove(k K) error {
	kb, err := j.codec.EncodeKey(k)
	if err != nil {
		return fmt.Errorf("%w: encoding key: %v", ErrIO, err)
	}
	return j.append(rawRecord{Kind: KindRemove, Key: kb})
}

// AppendGet encodes and appends a GET record.
func (j *Journal[K, V]) AppendGet(k K) error {
	kb, err := j.codec.EncodeKey(k)
	if err != nil {
		return fmt.Errorf("%w: encoding key: %v", ErrIO, err)
	}
	return j.append(rawRecord{Kind: KindGet, Key: kb})
}

func (j *Journal[K, V]) append(r rawRecord) error {
	if j.synchronous {
		j.mu.Lock()
		defer j.mu.Unlock()
		if err := writeRecord(j.file, r); err != nil {
			return fmt.Errorf("%w: writing record: %v", ErrIO, err)
		}
		if err := j.file.Sync(); err != nil {
			return fmt.Errorf("%w: fsyncing: %v", ErrIO, err)
		}
		return nil
	}

	j.mu.Lock()
	j.pending = append(j.pending, r)
	j.mu.Unlock()
	return nil
}

// runPeriodicFlush drains the pending buffer on a fixed cadence until
// stop is closed, flushing one last time before exiting.
func (j *Journal[K, V]) runPeriodicFlush(interval time.Duration) {
	defer close(j.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			j.flushPending()
		case <-j.stop:
			j.flushPending()
			return
		}
	}
}

// flushPending writes every buffered record to the file and fsyncs.
// On a write failure, the unwritten records (including the one that
// failed) are put back at the front of the buffer for the next tick.
func (j *Journal[K, V]) flushPending() {
	j.mu.Lock()
	batch := j.pending
	j.pending = nil
	j.mu.Unlock()
	if len(batch) == 0 {
		return
	}

	for i, r := range batch {
		if err := writeRecord(j.file, r); err != nil {
			j.requeue(batch[i:])
			j.reportFlush(false, len(batch), fmt.Errorf("%w: writing record: %v", ErrIO, err))
			return
		}
	}
	if err := j.file.Sync(); err != nil {
		j.reportFlush(false, len(batch), fmt.Errorf("%w: fsyncing: %v", ErrIO, err))
		return
	}
	j.reportFlush(true, len(batch), nil)
}

func (j *Journal[K, V]) requeue(unwritten []rawRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending = append(append([]rawRecord{}, unwritten...), j.pending...)
}

func (j *Journal[K, V]) reportFlush(ok bool, records int, err error) {
	if !ok {
		j.log.Warn().Err(err).Int("records", records).Msg("journal: periodic flush failed")
		if j.onFlushError != nil {
			j.onFlushError(err)
		}
	}
	if j.onFlush != nil {
		j.onFlush(ok, records)
	}
}

// Close stops the periodic flusher (if any), flushing whatever is
// still pending, and closes the underlying file. Close must be called
// exactly once.
func (j *Journal[K, V]) Close() error {
	if !j.synchronous {
		close(j.stop)
		<-j.done
	}
	return j.file.Close()
}
