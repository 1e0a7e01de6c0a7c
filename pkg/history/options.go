package history

import "fmt"

// DefaultCapacity is the number of samples retained when no capacity is given.
const DefaultCapacity = 1000

// ReadMode selects which parsed rows a refresh appends.
type ReadMode string

const (
	// ReadAll appends every row of the source on every refresh.
	ReadAll ReadMode = "all"
	// ReadNew appends only the rows added since the previous refresh.
	ReadNew ReadMode = "new"
)

// ParseReadMode converts a flag value into a ReadMode.
func ParseReadMode(s string) (ReadMode, error) {
	switch m := ReadMode(s); m {
	case ReadAll, ReadNew:
		return m, nil
	case "":
		return ReadAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

type Options struct {
	Capacity int
	ReadMode ReadMode
}

type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Capacity: DefaultCapacity,
		ReadMode: ReadAll,
	}
}

// WithCapacity sets the maximum number of retained samples. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(opts *Options) {
		if n > 0 {
			opts.Capacity = n
		}
	}
}

func WithReadMode(m ReadMode) Option {
	return func(opts *Options) {
		opts.ReadMode = m
	}
}
