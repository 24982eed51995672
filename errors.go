package dagaudit

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	format "github.com/ipfs/go-ipld-format"
	"github.com/multiformats/go-multicodec"
)

var (
	ErrNoShards         = errors.New("no shards found")
	ErrRemoteRead       = errors.New("remote read failed")
	ErrMalformedCar     = errors.New("malformed CAR")
	ErrMissingBlock     = errors.New("missing block")
	ErrDecode           = errors.New("block decode failed")
	ErrUnsupportedCodec = errors.New("unsupported codec")
)

// NotFoundError is returned when neither sharded objects nor a consolidated
// object exist for a root.
type NotFoundError struct {
	Root         cid.Cid
	Prefix       string
	Consolidated string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s for %s: nothing under %q and no %q", ErrNoShards, e.Root, e.Prefix, e.Consolidated)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNoShards }

// RemoteReadError is an I/O failure against the object store.
type RemoteReadError struct {
	Op  string
	Key string
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", ErrRemoteRead, e.Op, e.Key, e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }

func (e *RemoteReadError) Is(target error) bool { return target == ErrRemoteRead }

// IngestError is a CAR shard that could not be decoded. Block is the index of
// the block frame being read when decoding failed, or -1 for the header.
type IngestError struct {
	Path  string
	Block int
	Err   error
}

func (e *IngestError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("%s %q: header: %v", ErrMalformedCar, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %q: block %d: %v", ErrMalformedCar, e.Path, e.Block, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

func (e *IngestError) Is(target error) bool { return target == ErrMalformedCar }

// MissingBlockError names a block that is reachable from the root but not
// present in any shard. Parent is the block that links to it, and is undefined
// for a missing root.
type MissingBlockError struct {
	Cid    cid.Cid
	Parent cid.Cid
}

func (e *MissingBlockError) Error() string {
	if !e.Parent.Defined() {
		return fmt.Sprintf("%s: %s", ErrMissingBlock, e.Cid)
	}
	return fmt.Sprintf("%s: %s (linked from %s)", ErrMissingBlock, e.Cid, e.Parent)
}

// Unwrap allows format.IsNotFound and errors.Is(err, format.ErrNotFound{}) to
// match a missing block.
func (e *MissingBlockError) Unwrap() error { return format.ErrNotFound{Cid: e.Cid} }

func (e *MissingBlockError) Is(target error) bool { return target == ErrMissingBlock }

// DecodeError is a present block that does not parse under its declared codec.
type DecodeError struct {
	Cid cid.Cid
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", ErrDecode, e.Cid, CodecName(e.Cid.Prefix().Codec), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// UnsupportedCodecError is a present block whose codec the walker does not
// understand.
type UnsupportedCodecError struct {
	Cid   cid.Cid
	Codec uint64
}

func (e *UnsupportedCodecError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrUnsupportedCodec, CodecName(e.Codec), e.Cid)
}

func (e *UnsupportedCodecError) Is(target error) bool { return target == ErrUnsupportedCodec }

// CodecName renders a codec code as its multicodec table name.
func CodecName(code uint64) string {
	return multicodec.Code(code).String()
}
