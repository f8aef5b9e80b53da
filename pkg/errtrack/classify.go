// classify.go assigns categories to records whose caller did not supply one.

package errtrack

import "strings"

// classifyRule is one entry in the classification decision list.
type classifyRule struct {
	match    func(msg string) bool
	category Category
}

// containsAny reports whether msg contains at least one of the keywords.
func containsAny(msg string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// classifyRules is evaluated in order; the first match wins. The order is
// fixed so classification is deterministic: a message mentioning both
// "topology" and "firewall" is always TOPOLOGY.
var classifyRules = []classifyRule{
	{func(m string) bool {
		return containsAny(m, "topology", "mapper", "route table", "traceroute")
	}, CategoryTopology},
	{func(m string) bool {
		return strings.Contains(m, "udp") && strings.Contains(m, "flood")
	}, CategoryUDPFlood},
	{func(m string) bool {
		return containsAny(m, "scan", "nmap", "ping sweep", "port probe", "arp")
	}, CategoryNetworkScan},
	{func(m string) bool {
		return containsAny(m, "gui", "widget", "qt", "window", "dialog", "render")
	}, CategoryGUI},
	{func(m string) bool {
		return containsAny(m, "firewall", "block", "iptables", "packet filter")
	}, CategoryFirewall},
	{func(m string) bool {
		return containsAny(m, "plugin", "extension")
	}, CategoryPlugin},
	{func(m string) bool {
		return containsAny(m, "save", "persist", "disk", "database", "sqlite", "write file")
	}, CategoryDataPersistence},
	{func(m string) bool {
		return containsAny(m, "system", "memory", "cpu", "permission", "process")
	}, CategorySystem},
}

// Classify maps a message to a category using case-insensitive substring
// rules. It runs only when the caller omitted an explicit category.
// Messages matching no rule classify as CategoryUnknown.
func Classify(message string) Category {
	msg := strings.ToLower(message)
	for _, rule := range classifyRules {
		if rule.match(msg) {
			return rule.category
		}
	}
	return CategoryUnknown
}
