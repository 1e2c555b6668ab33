package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/lox/cribbage/internal/deck"
)

const (
	// Terminator ends every record
	Terminator = '\n'
	// Separator sits between list items
	Separator = ','

	// MaxNameLength is the longest display name in bytes
	MaxNameLength = 32
	// MaxSeedLength is the longest seed string in bytes
	MaxSeedLength = 64
	// MaxRecordSize bounds a record including its terminator
	MaxRecordSize = 4096

	absent  byte = 0x00
	present byte = 0x01
)

var (
	// ErrMalformedFrame is returned when a record cannot be decoded
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrInvalidField is returned when a frame cannot be encoded
	ErrInvalidField = errors.New("invalid frame field")
	// ErrRecordTooLong is returned when a record exceeds MaxRecordSize
	ErrRecordTooLong = errors.New("record too long")
)

var bufferPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// Encode serializes a frame into a single terminated record
func Encode(f Frame) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	buf.WriteByte(byte(f.Tag()))

	switch msg := f.(type) {
	case Name:
		if err := ValidateName(msg.Name); err != nil {
			return nil, err
		}
		buf.WriteString(msg.Name)
	case Start:
		for i, name := range msg.Names {
			if err := ValidateName(name); err != nil {
				return nil, err
			}
			if i > 0 {
				buf.WriteByte(Separator)
			}
			buf.WriteString(name)
		}
	case Hand:
		writeOptionalCard(buf, msg.Magic)
		writeCards(buf, msg.Cards)
	case Card:
		buf.WriteString(msg.Card.Code())
	case Play:
		writeOptionalCard(buf, msg.Card)
		buf.WriteByte(flag(msg.Exhausted))
	case RoundDone:
	case Seed:
		if err := ValidateSeed(msg.Seed); err != nil {
			return nil, err
		}
		buf.WriteString(msg.Seed)
	default:
		return nil, fmt.Errorf("%w: unknown frame type %T", ErrInvalidField, f)
	}

	buf.WriteByte(Terminator)
	if buf.Len() > MaxRecordSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrRecordTooLong, buf.Len())
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Decode parses one record, with or without its terminator. An empty
// record means the peer has gone away and is reported as io.EOF.
func Decode(record []byte) (Frame, error) {
	if len(record) == 0 {
		return nil, io.EOF
	}
	if record[len(record)-1] == Terminator {
		record = record[:len(record)-1]
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: missing tag", ErrMalformedFrame)
	}
	if bytes.IndexByte(record, Terminator) >= 0 {
		return nil, fmt.Errorf("%w: embedded terminator", ErrMalformedFrame)
	}

	tag, payload := Tag(record[0]), record[1:]
	switch tag {
	case TagName:
		name := string(payload)
		if err := ValidateName(name); err != nil {
			return nil, malformed(tag, err)
		}
		return Name{Name: name}, nil

	case TagStart:
		var names []string
		if len(payload) > 0 {
			names = strings.Split(string(payload), string(Separator))
		}
		for _, name := range names {
			if err := ValidateName(name); err != nil {
				return nil, malformed(tag, err)
			}
		}
		return Start{Names: names}, nil

	case TagHand:
		magic, rest, err := readOptionalCard(payload)
		if err != nil {
			return nil, malformed(tag, err)
		}
		cards, err := readCards(rest)
		if err != nil {
			return nil, malformed(tag, err)
		}
		return Hand{Cards: cards, Magic: magic}, nil

	case TagCard:
		card, err := readCard(payload)
		if err != nil {
			return nil, malformed(tag, err)
		}
		return Card{Card: card}, nil

	case TagPlay:
		card, rest, err := readOptionalCard(payload)
		if err != nil {
			return nil, malformed(tag, err)
		}
		if len(rest) != 1 {
			return nil, malformed(tag, fmt.Errorf("want 1 exhausted byte, got %d bytes", len(rest)))
		}
		exhausted, err := readFlag(rest[0])
		if err != nil {
			return nil, malformed(tag, err)
		}
		return Play{Card: card, Exhausted: exhausted}, nil

	case TagRoundDone:
		if len(payload) != 0 {
			return nil, malformed(tag, fmt.Errorf("unexpected %d byte payload", len(payload)))
		}
		return RoundDone{}, nil

	case TagSeed:
		seed := string(payload)
		if err := ValidateSeed(seed); err != nil {
			return nil, malformed(tag, err)
		}
		return Seed{Seed: seed}, nil

	default:
		return nil, fmt.Errorf("%w: unknown tag 0x%02x", ErrMalformedFrame, byte(tag))
	}
}

// ValidateName checks that a display name can be carried in Name and Start frames
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidField)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: name longer than %d bytes", ErrInvalidField, MaxNameLength)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidField)
	case strings.ContainsAny(name, string([]byte{Separator, Terminator})):
		return fmt.Errorf("%w: name %q contains a reserved character", ErrInvalidField, name)
	}
	return nil
}

// ValidateSeed checks that a seed can be carried in a Seed frame
func ValidateSeed(seed string) error {
	switch {
	case seed == "":
		return fmt.Errorf("%w: empty seed", ErrInvalidField)
	case len(seed) > MaxSeedLength:
		return fmt.Errorf("%w: seed longer than %d bytes", ErrInvalidField, MaxSeedLength)
	case !utf8.ValidString(seed):
		return fmt.Errorf("%w: seed is not valid UTF-8", ErrInvalidField)
	case strings.IndexByte(seed, Terminator) >= 0:
		return fmt.Errorf("%w: seed contains a newline", ErrInvalidField)
	}
	return nil
}

func malformed(tag Tag, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedFrame, tag, err)
}

func flag(b bool) byte {
	if b {
		return present
	}
	return absent
}

func readFlag(b byte) (bool, error) {
	switch b {
	case absent:
		return false, nil
	case present:
		return true, nil
	default:
		return false, fmt.Errorf("flag byte 0x%02x outside {0,1}", b)
	}
}

func writeOptionalCard(buf *bytes.Buffer, c *deck.Card) {
	if c == nil {
		buf.WriteByte(absent)
		return
	}
	buf.WriteByte(present)
	buf.WriteString(c.Code())
}

func writeCards(buf *bytes.Buffer, cards []deck.Card) {
	for i, c := range cards {
		if i > 0 {
			buf.WriteByte(Separator)
		}
		buf.WriteString(c.Code())
	}
}

func readCard(b []byte) (deck.Card, error) {
	if len(b) != 2 {
		return deck.Card{}, fmt.Errorf("card code must be 2 bytes, got %d", len(b))
	}
	return deck.ParseCode(string(b))
}

func readOptionalCard(b []byte) (*deck.Card, []byte, error) {
	if len(b) == 0 {
		return nil, nil, errors.New("missing presence byte")
	}
	ok, err := readFlag(b[0])
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, b[1:], nil
	}
	if len(b) < 3 {
		return nil, nil, errors.New("truncated card")
	}
	card, err := readCard(b[1:3])
	if err != nil {
		return nil, nil, err
	}
	return &card, b[3:], nil
}

func readCards(b []byte) ([]deck.Card, error) {
	if len(b) == 0 {
		return nil, nil
	}
	items := bytes.Split(b, []byte{Separator})
	cards := make([]deck.Card, 0, len(items))
	for _, item := range items {
		card, err := readCard(item)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}
