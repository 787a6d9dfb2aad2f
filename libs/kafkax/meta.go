package kafkax

import "strings"

// SplitBrokers parses a comma-separated broker list from configuration,
// dropping empty entries.
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
