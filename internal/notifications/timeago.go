package notifications

import (
	"fmt"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// FormatTimeAgo rend un horodatage en durée relative ("5 minutes ago").
// Au-delà d'une semaine on affiche la date. Une valeur illisible est renvoyée telle quelle.
func FormatTimeAgo(createdAt string, now time.Time) string {
	t, ok := parseTime(createdAt)
	if !ok {
		return createdAt
	}

	seconds := int64(now.Sub(t) / time.Second)
	switch {
	case seconds < 60:
		return "Just now"
	case seconds < 3600:
		return fmt.Sprintf("%d minutes ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d hours ago", seconds/3600)
	case seconds < 604800:
		return fmt.Sprintf("%d days ago", seconds/86400)
	}
	return t.Format("1/2/2006")
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
