package manager

import (
	"fmt"
	"strconv"
	"strings"
)

// binding is one well-formed token of a service's bind keyword,
// port/protocol with an optional frontend address.
type binding struct {
	Port     int
	Protocol string
	Address  string

	// raw is the original token, kept so a rewrite can replace it in place
	raw string
}

// wildcard reports whether the binding still needs a frontend address
// allocated for it.
func (b binding) wildcard() bool {
	return b.Address == ""
}

// parseBindToken splits one bind token of the form port/protocol[-address].
// The second return is false for malformed tokens.
func parseBindToken(token string) (binding, bool) {
	portPart, rest, ok := strings.Cut(token, "/")
	if !ok {
		return binding{}, false
	}

	port, err := strconv.Atoi(portPart)
	if err != nil || port <= 0 {
		return binding{}, false
	}

	protocol, address, _ := strings.Cut(rest, "-")
	if protocol == "" {
		return binding{}, false
	}

	return binding{Port: port, Protocol: protocol, Address: address, raw: token}, true
}

// parseBindings parses every token of a bind keyword value. The second
// return is true when malformed tokens were dropped.
func parseBindings(value string) ([]binding, bool) {
	var (
		bindings []binding
		dropped  bool
	)

	for _, token := range strings.Fields(value) {
		b, ok := parseBindToken(token)
		if !ok {
			dropped = true
			continue
		}

		bindings = append(bindings, b)
	}

	return bindings, dropped
}

// joinBindings renders bindings back into a bind keyword value.
func joinBindings(bindings []binding) string {
	tokens := make([]string, 0, len(bindings))
	for _, b := range bindings {
		tokens = append(tokens, b.raw)
	}

	return strings.Join(tokens, " ")
}

// serverKey identifies one load balancer server entry, one per exposed
// port of a service.
type serverKey struct {
	Port    int
	Service string
}

// String renders the wire form of the key, _<port>_<service>.
func (k serverKey) String() string {
	return fmt.Sprintf("_%d_%s", k.Port, k.Service)
}

// parseServerKey parses the wire form back into a structured key. Service
// names may themselves contain underscores, so only the first two separators
// are structural.
func parseServerKey(name string) (serverKey, bool) {
	rest, ok := strings.CutPrefix(name, "_")
	if !ok {
		return serverKey{}, false
	}

	portPart, service, ok := strings.Cut(rest, "_")
	if !ok || service == "" {
		return serverKey{}, false
	}

	port, err := strconv.Atoi(portPart)
	if err != nil {
		return serverKey{}, false
	}

	return serverKey{Port: port, Service: service}, true
}
