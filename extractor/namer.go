package extractor

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// Namer hands out short hash names, one per distinct input. Colliding
// prefixes are resolved by rehashing the input with an increasing suffix.
type Namer struct {
	length int
	mu     sync.Mutex
	names  map[string]string
	taken  map[string]struct{}
}

// NewNamer creates a namer producing names of length hex digits, at least 4.
// A length of 0 keeps the full digest.
func NewNamer(length int) *Namer {
	if length != 0 && length < 4 {
		length = 4
	}
	if length > 16 {
		length = 16
	}
	return &Namer{
		length: length,
		names:  make(map[string]string),
		taken:  make(map[string]struct{}),
	}
}

// Name returns the name bound to source, creating it on first use.
func (n *Namer) Name(source string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if name, ok := n.names[source]; ok {
		return name
	}
	var name string
	for i := 0; ; i++ {
		name = fmt.Sprintf("%016x", xxh3.HashString(source+strconv.Itoa(i)))
		if n.length > 0 {
			name = name[:n.length]
		}
		if _, exists := n.taken[name]; !exists {
			break
		}
	}
	n.names[source] = name
	n.taken[name] = struct{}{}
	return name
}

// Reset forgets every name.
func (n *Namer) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names = make(map[string]string)
	n.taken = make(map[string]struct{})
}
