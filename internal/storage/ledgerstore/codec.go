package ledgerstore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry"
	"github.com/LeJamon/goxrpl-lending/internal/core/ledger/entry/entries"
	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"
)

// Compression selects how records are compressed at rest.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
)

// Record layout: [flags:1][entry type:2][payload]. With flagLZ4 the
// payload is the uvarint raw length followed by an lz4 block.
const (
	flagLZ4      byte = 0x01
	headerLength      = 3
)

var (
	errShortRecord = errors.New("record too short")
	errUnknownType = errors.New("unknown entry type")
)

var msgpack = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.Canonical = true
	return h
}()

func newEntry(t entry.Type) (entry.Entry, error) {
	switch t {
	case entry.TypeAccountRoot:
		return &entries.AccountRoot{}, nil
	case entry.TypeVault:
		return &entries.Vault{}, nil
	case entry.TypeLoanBroker:
		return &entries.LoanBroker{}, nil
	case entry.TypeLoan:
		return &entries.Loan{}, nil
	}
	return nil, fmt.Errorf("%w: %s", errUnknownType, t)
}

// encodeRecord serializes e for storage.
func encodeRecord(e entry.Entry, c Compression) ([]byte, error) {
	var body []byte
	if err := codec.NewEncoderBytes(&body, msgpack).Encode(e); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", e.Type(), err)
	}

	header := [headerLength]byte{}
	binary.BigEndian.PutUint16(header[1:], uint16(e.Type()))

	if c == CompressionLZ4 && len(body) > 0 {
		block := make([]byte, binary.MaxVarintLen64+lz4.CompressBlockBound(len(body)))
		n := binary.PutUvarint(block, uint64(len(body)))
		size, err := lz4.CompressBlock(body, block[n:], nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compression failed: %w", err)
		}
		// Zero means the body did not compress.
		if size > 0 && n+size < len(body) {
			header[0] |= flagLZ4
			return append(header[:], block[:n+size]...), nil
		}
	}
	return append(header[:], body...), nil
}

// decodeRecord is the inverse of encodeRecord.
func decodeRecord(data []byte) (entry.Entry, error) {
	if len(data) < headerLength {
		return nil, errShortRecord
	}
	e, err := newEntry(entry.Type(binary.BigEndian.Uint16(data[1:headerLength])))
	if err != nil {
		return nil, err
	}

	body := data[headerLength:]
	if data[0]&flagLZ4 != 0 {
		if body, err = decompress(body); err != nil {
			return nil, err
		}
	}
	if err := codec.NewDecoderBytes(body, msgpack).Decode(e); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", e.Type(), err)
	}
	return e, nil
}

func decompress(block []byte) ([]byte, error) {
	size, n := binary.Uvarint(block)
	if n <= 0 {
		return nil, errShortRecord
	}
	out := make([]byte, size)
	got, err := lz4.UncompressBlock(block[n:], out)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if uint64(got) != size {
		return nil, fmt.Errorf("lz4 decompression: got %d bytes, want %d", got, size)
	}
	return out, nil
}
