// internal/ingest/mqtt/topics.go
package mqtt

import "strings"

// Topic layout under the configured prefix:
//
//	<prefix>/printers/<printer_id>/jobs     inbound command batches
//	<prefix>/printers/<printer_id>/results  job results
//	<prefix>/printers/<printer_id>/events   job lifecycle events
const (
	printersSegment = "printers"
	jobsSegment     = "jobs"
	resultsSegment  = "results"
	eventsSegment   = "events"
)

// JobsFilter is the subscription filter for every printer's job topic
func JobsFilter(prefix string) string {
	return join(prefix, printersSegment, "+", jobsSegment)
}

// ResultTopic is where results for printerID are published
func ResultTopic(prefix, printerID string) string {
	return join(prefix, printersSegment, printerID, resultsSegment)
}

// EventTopic is where events for printerID are published
func EventTopic(prefix, printerID string) string {
	return join(prefix, printersSegment, printerID, eventsSegment)
}

// PrinterFromJobTopic extracts the printer id from a job topic
func PrinterFromJobTopic(prefix, topic string) (string, bool) {
	rest := topic
	if prefix != "" {
		var ok bool
		rest, ok = strings.CutPrefix(topic, strings.TrimSuffix(prefix, "/")+"/")
		if !ok {
			return "", false
		}
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] != printersSegment || parts[2] != jobsSegment || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func join(prefix string, parts ...string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return strings.Join(parts, "/")
	}
	return prefix + "/" + strings.Join(parts, "/")
}
