package channel

import "strings"

// Filter selects telecover channels. Channels lists explicit identifiers (all
// channels when empty); the Exclude fields drop channels whose corresponding
// field character appears in the string.
type Filter struct {
	Channels         []string
	ExcludeTelescope string
	ExcludeType      string
	ExcludeMode      string
	ExcludeSubtype   string
}

func (f Filter) excludes(ch Channel) bool {
	return strings.IndexByte(f.ExcludeTelescope, ch.Telescope) >= 0 ||
		strings.IndexByte(f.ExcludeType, ch.Type) >= 0 ||
		strings.IndexByte(f.ExcludeMode, ch.Mode) >= 0 ||
		strings.IndexByte(f.ExcludeSubtype, ch.Subtype) >= 0
}

// Apply returns the selected channels in the order of the explicit list, or in
// data order when no list is given. Explicitly requested ids that do not exist
// are returned separately, in list order, so callers can report them per
// channel.
func (f Filter) Apply(channels []Channel) (selected []Channel, unknown []string) {
	candidates := channels
	if len(f.Channels) > 0 {
		index := byID(channels)
		candidates = make([]Channel, 0, len(f.Channels))
		for _, id := range f.Channels {
			ch, ok := index[id]
			if !ok {
				unknown = append(unknown, id)
				continue
			}
			candidates = append(candidates, ch)
		}
	}

	selected = make([]Channel, 0, len(candidates))
	for _, ch := range candidates {
		if !f.excludes(ch) {
			selected = append(selected, ch)
		}
	}
	return selected, unknown
}
