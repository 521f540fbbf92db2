package channel

import (
	"errors"
	"fmt"
	"sort"
)

// IDLength is the length of a channel identifier.
const IDLength = 8

const (
	// SubtypeReceiver marks the reflected (receiver) branch of a polarizing beam splitter.
	SubtypeReceiver = 'r'
	// SubtypeTransmitter marks the transmitted branch of a polarizing beam splitter.
	SubtypeTransmitter = 't'
	// TypeCross marks a cross-polarized channel; its cross-talk parameter H is negative.
	TypeCross = 'c'
)

var (
	// ErrInvalidChannel is returned for identifiers that do not follow the layout.
	ErrInvalidChannel = errors.New("invalid channel identifier")
	// ErrUnknownChannel is returned when a requested channel is absent from the data.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrPairLength is returned when receiver and transmitter lists differ in length.
	ErrPairLength = errors.New("receiver and transmitter channel lists differ in length")
)

// Channel is a parsed channel identifier.
type Channel struct {
	ID         string
	Wavelength string
	Telescope  byte
	Type       byte
	Mode       byte
	Subtype    byte
}

// Parse splits an identifier into its fields.
func Parse(id string) (Channel, error) {
	if len(id) != IDLength {
		return Channel{}, fmt.Errorf("%w: %q has %d characters, want %d", ErrInvalidChannel, id, len(id), IDLength)
	}
	return Channel{
		ID:         id,
		Wavelength: id[:4],
		Telescope:  id[4],
		Type:       id[5],
		Mode:       id[6],
		Subtype:    id[7],
	}, nil
}

// ParseAll parses every identifier, failing on the first invalid one.
func ParseAll(ids []string) ([]Channel, error) {
	out := make([]Channel, 0, len(ids))
	for _, id := range ids {
		ch, err := Parse(id)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}

func (c Channel) String() string { return c.ID }

// IsReceiver reports whether the channel is the receiver branch.
func (c Channel) IsReceiver() bool { return c.Subtype == SubtypeReceiver }

// IsTransmitter reports whether the channel is the transmitter branch.
func (c Channel) IsTransmitter() bool { return c.Subtype == SubtypeTransmitter }

// IsCross reports whether the channel is flagged cross-polarized.
func (c Channel) IsCross() bool { return c.Type == TypeCross }

// CrossTalkSign returns the default cross-talk parameter H for the channel:
// -1 for cross-polarized channels, +1 otherwise.
func (c Channel) CrossTalkSign() float64 {
	if c.IsCross() {
		return -1
	}
	return 1
}

// Pair is a receiver/transmitter channel pair of one polarization calibration.
type Pair struct {
	Receiver    Channel
	Transmitter Channel
}

// Name identifies the pair in logs and reports.
func (p Pair) Name() string {
	return p.Receiver.ID + "_to_" + p.Transmitter.ID
}

// matches reports whether r and t are the two branches of the same detection
// path: same wavelength, telescope and acquisition mode.
func matches(r, t Channel) bool {
	return r.Wavelength == t.Wavelength && r.Telescope == t.Telescope && r.Mode == t.Mode
}

// AutoPair pairs every receiver channel with each transmitter channel of the same
// detection path. Receivers without a match are dropped. The result is ordered
// by receiver then transmitter id, so it does not depend on the order of channels.
func AutoPair(channels []Channel) []Pair {
	var receivers, transmitters []Channel
	for _, ch := range channels {
		switch {
		case ch.IsReceiver():
			receivers = append(receivers, ch)
		case ch.IsTransmitter():
			transmitters = append(transmitters, ch)
		}
	}

	var pairs []Pair
	for _, r := range receivers {
		for _, t := range transmitters {
			if matches(r, t) {
				pairs = append(pairs, Pair{Receiver: r, Transmitter: t})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Receiver.ID != pairs[j].Receiver.ID {
			return pairs[i].Receiver.ID < pairs[j].Receiver.ID
		}
		return pairs[i].Transmitter.ID < pairs[j].Transmitter.ID
	})
	return pairs
}

// ResolvePairs returns the channel pairs to calibrate. With both explicit lists
// empty the pairs are found with AutoPair; otherwise the lists are zipped
// verbatim after checking that every listed channel exists.
func ResolvePairs(channels []Channel, receivers, transmitters []string) ([]Pair, error) {
	if len(receivers) == 0 && len(transmitters) == 0 {
		return AutoPair(channels), nil
	}
	if len(receivers) != len(transmitters) {
		return nil, fmt.Errorf("%w: %d receivers, %d transmitters", ErrPairLength, len(receivers), len(transmitters))
	}

	index := byID(channels)
	pairs := make([]Pair, 0, len(receivers))
	for i := range receivers {
		r, ok := index[receivers[i]]
		if !ok {
			return nil, fmt.Errorf("%w: receiver %q", ErrUnknownChannel, receivers[i])
		}
		t, ok := index[transmitters[i]]
		if !ok {
			return nil, fmt.Errorf("%w: transmitter %q", ErrUnknownChannel, transmitters[i])
		}
		pairs = append(pairs, Pair{Receiver: r, Transmitter: t})
	}
	return pairs, nil
}

func byID(channels []Channel) map[string]Channel {
	index := make(map[string]Channel, len(channels))
	for _, ch := range channels {
		index[ch.ID] = ch
	}
	return index
}
