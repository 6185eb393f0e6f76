package bridge

import "strings"

// Network identifies one of the two bridged chains by its configured name.
type Network string

func (n Network) String() string {
	return string(n)
}

// NormalizeNetwork lowercases and trims a network name.
func NormalizeNetwork(s string) Network {
	return Network(strings.ToLower(strings.TrimSpace(s)))
}
