package domain

import "fmt"

// Pair identifies one (canonical provider, secondary provider) pairing
// within a sport. Each pair owns exactly one correspondence table.
type Pair struct {
	Sport     string
	Canonical string
	Secondary string
}

// Key returns a stable identifier for the pair, used for lock keys, cache
// keys, and archive paths, e.g. "soccer:oddswar-stoiximan".
func (p Pair) Key() string {
	return fmt.Sprintf("%s:%s-%s", p.Sport, p.Canonical, p.Secondary)
}

func (p Pair) String() string { return p.Key() }
