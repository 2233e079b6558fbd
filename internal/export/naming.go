package export

import (
	"strings"

	"github.com/croplapse/croplapse-export-poc/internal/locations"
)

// VideoName formats the export description and file name prefix:
// bands:B1,B2,B3;loc:ID;s:START;e:END. Quotes and dots are stripped so the
// name survives both the platform's prefix rules and the skip-if-exists
// lookup on the synced folder.
func VideoName(bands []string, locationID string, period locations.Period) string {
	name := "bands:" + strings.Join(bands, ",") +
		";loc:" + locationID +
		";s:" + period.Start.Format("2006-01-02") +
		";e:" + period.End.Format("2006-01-02")
	name = strings.ReplaceAll(name, "'", "")
	name = strings.ReplaceAll(name, ".", "")
	return name
}
