package journal

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Applier is implemented by the engine so Replay can drive PUT and
// REMOVE records through the exact same code paths used at runtime,
// keeping policy state consistent with store state.
type Applier[K comparable, V any] interface {
	ApplyPut(k K, v V) error
	ApplyRemove(k K) error
	// ApplyGetIfResident applies a GET record's only runtime effect —
	// notifying the policy — and is a no-op if k isn't resident.
	ApplyGetIfResident(k K)
}

// Replay reads every record from the journal file at path, in order,
// and applies it through a. A missing file is not an error: it means
// there is nothing to replay yet. Replay stops cleanly at end of file
// or at a truncated trailing record; it aborts with an error wrapping
// ErrCorrupt or ErrIO on a mid-file malformation or I/O failure.
func Replay[K comparable, V any](path string, codec Codec[K, V], a Applier[K, V], logger zerolog.Logger) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: opening journal for replay: %v", ErrIO, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	records := 0
	for {
		rec, ok, err := readRecord(r)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		switch rec.Kind {
		case KindPut:
			k, err := codec.DecodeKey(rec.Key)
			if err != nil {
				return fmt.Errorf("%w: decoding key of PUT record %d: %v", ErrCorrupt, records, err)
			}
			v, err := codec.DecodeValue(rec.Value)
			if err != nil {
				return fmt.Errorf("%w: decoding value of PUT record %d: %v", ErrCorrupt, records, err)
			}
			if err := a.ApplyPut(k, v); err != nil {
				return fmt.Errorf("%w: replaying PUT record %d: %v", ErrIO, records, err)
			}
		case KindRemove:
			k, err := codec.DecodeKey(rec.Key)
			if err != nil {
				return fmt.Errorf("%w: decoding key of REMOVE record %d: %v", ErrCorrupt, records, err)
			}
			if err := a.ApplyRemove(k); err != nil {
				return fmt.Errorf("%w: replaying REMOVE record %d: %v", ErrIO, records, err)
			}
		case KindGet:
			k, err := codec.DecodeKey(rec.Key)
			if err != nil {
				return fmt.Errorf("%w: decoding key of GET record %d: %v", ErrCorrupt, records, err)
			}
			a.ApplyGetIfResident(k)
		}
		records++
	}

	logger.Debug().Str("path", path).Int("records", records).Msg("journal replay complete")
	return nil
}
