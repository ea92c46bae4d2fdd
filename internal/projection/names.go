package projection

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/draeangela/industry-data-visualizer/internal/contracts"
)

var modelPrefixRe = regexp.MustCompile(`^\d+\.`)

// ModelName extracts the model label from an Industry block path.
// The model is the fourth path segment with its "NN." prefix removed,
// e.g. C:\models\blocks\07.consumer_goods\x.xlsx → "CONSUMER GOODS".
func ModelName(blockName string) string {
	parts := strings.Split(strings.ReplaceAll(blockName, `\`, "/"), "/")
	if len(parts) < 4 || parts[3] == "" {
		return ""
	}
	name := modelPrefixRe.ReplaceAllString(parts[3], "")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToUpper(strings.TrimSpace(name))
}

// HistoricalName labels the actuals line of an Industry series
func HistoricalName(s *contracts.IndustrySeries) string {
	return fmt.Sprintf("%s (MODEL: %s)", s.Name, ModelName(s.BlockName))
}

// ForecastName labels one vintage of an Industry series
func ForecastName(s *contracts.IndustrySeries, vintageDate string) string {
	return fmt.Sprintf("Forecast as of: %s (%s)", vintageDate, s.Name)
}
