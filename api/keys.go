package api

import "fmt"

// Cache key builders. The formats are stable API: the boundary layer builds
// the same strings when it routes requests, so changing them invalidates
// every deployed cache at once. Treat as frozen.

func GraphKey(minEmails, limit int) string {
	return fmt.Sprintf("network:graph:%d:%d", minEmails, limit)
}

func EgoKey(personID int64, depth, minEmails int) string {
	return fmt.Sprintf("network:person:%d:%d:%d", personID, depth, minEmails)
}

func TreeKey(threadID int64, limit int) string {
	return fmt.Sprintf("threads:tree:%d:%d", threadID, limit)
}

func MessagesKey(threadID int64, page, limit int) string {
	return fmt.Sprintf("threads:messages:%d:%d:%d", threadID, page, limit)
}

func StatsKey() string {
	return "stats:corpus"
}
