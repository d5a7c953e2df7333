package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

const checkpointRecordVersion1 = 1

// Contact channel the one-time code was dispatched over.
const (
	ContactUnknown uint8 = iota
	ContactEmail
	ContactPhone
)

var (
	ErrCheckpointNotFound = errors.New("pending checkpoint not found")
	ErrCheckpointExpired  = errors.New("pending checkpoint expired")
	ErrCheckpointExceeded = errors.New("pending checkpoint attempts exceeded")
	ErrCheckpointBackend  = errors.New("checkpoint store backend unavailable")
)

// Checkpoint is the pending state between a login that hit a security
// checkpoint and the verification call that resolves it. The credentials
// are held only because resuming the login requires re-authenticating;
// Wipe must be called once the record is no longer needed.
type Checkpoint struct {
	Username         string
	Secret           []byte
	ChallengeID      string
	ChallengeContext string
	ContactChannel   uint8
	ContactMasked    string
	DeviceSeed       string
	Cookies          []byte
	CreatedAt        int64
	ExpiresAt        int64
	Attempts         uint16
}

// Wipe zeroes the credential bytes in place.
func (c *Checkpoint) Wipe() {
	if c == nil {
		return
	}
	for i := range c.Secret {
		c.Secret[i] = 0
	}
	c.Secret = nil
}

// CheckpointStore holds at most one pending checkpoint per owner session
// key. Save overwrites unconditionally; Get lazily evicts records past
// their TTL so correctness never depends on sweep timing.
type CheckpointStore interface {
	Save(ctx context.Context, owner string, record *Checkpoint, ttl time.Duration) error
	Get(ctx context.Context, owner string) (*Checkpoint, error)
	Delete(ctx context.Context, owner string) (bool, error)
	RecordFailure(ctx context.Context, owner string, maxAttempts int) (bool, error)
	Close()
}

func encodeCheckpoint(record *Checkpoint) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(checkpointRecordVersion1)
	buf.WriteByte(record.ContactChannel)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range [][]byte{
		[]byte(record.Username),
		record.Secret,
		[]byte(record.ChallengeID),
		[]byte(record.ChallengeContext),
		[]byte(record.ContactMasked),
		[]byte(record.DeviceSeed),
	} {
		if len(field) > 65535 {
			return nil, errors.New("checkpoint field length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.Write(field)
	}

	if err := binary.Write(&buf, binary.BigEndian, uint32(len(record.Cookies))); err != nil {
		return nil, err
	}
	buf.Write(record.Cookies)

	return buf.Bytes(), nil
}

func decodeCheckpoint(data []byte) (*Checkpoint, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != checkpointRecordVersion1 {
		return nil, errors.New("invalid checkpoint record version")
	}

	record := &Checkpoint{}
	if record.ContactChannel, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	fields := make([][]byte, 6)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		field := make([]byte, length)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		fields[i] = field
	}
	record.Username = string(fields[0])
	record.Secret = fields[1]
	record.ChallengeID = string(fields[2])
	record.ChallengeContext = string(fields[3])
	record.ContactMasked = string(fields[4])
	record.DeviceSeed = string(fields[5])

	var cookieLen uint32
	if err := binary.Read(reader, binary.BigEndian, &cookieLen); err != nil {
		return nil, err
	}
	record.Cookies = make([]byte, cookieLen)
	if _, err := io.ReadFull(reader, record.Cookies); err != nil {
		return nil, err
	}

	return record, nil
}
