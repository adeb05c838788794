package signals

import "fmt"

// Mode selects which signal categories an accumulator keeps
type Mode string

const (
	// ModeFull tracks wishes, problems, enthusiasm and values
	ModeFull Mode = "full"
	// ModeWishesOnly tracks direct wish signals and ignores the other categories
	ModeWishesOnly Mode = "wishes_only"
)

// ParseMode converts a configuration string to a Mode. Empty means ModeFull.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFull:
		return ModeFull, nil
	case ModeWishesOnly:
		return ModeWishesOnly, nil
	default:
		return "", fmt.Errorf("unknown signal mode %q (want %q or %q)", s, ModeFull, ModeWishesOnly)
	}
}

func (m Mode) tracksAll() bool {
	return m != ModeWishesOnly
}
