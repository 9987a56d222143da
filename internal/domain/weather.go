package domain

import "strings"

// Weather categories. The first seven come from keyword matching; the last
// two are the fallbacks for missing and unmatched text.
const (
	WeatherClear        = "clear"
	WeatherCloudy       = "cloudy"
	WeatherSnow         = "snow"
	WeatherRain         = "rain"
	WeatherFog          = "fog"
	WeatherThunderstorm = "thunderstorm"
	WeatherWindy        = "windy"
	WeatherUnknown      = "unknown"
	WeatherOther        = "other"
)

type weatherRule struct {
	category string
	terms    []string
}

// weatherRules is matched in order and the first hit wins. Winter terms
// precede rain so "Freezing Rain" and "Snow Showers" land in snow.
var weatherRules = []weatherRule{
	{WeatherClear, []string{"clear", "fair", "sunny"}},
	{WeatherCloudy, []string{"cloudy", "overcast", "partly cloudy"}},
	{WeatherSnow, []string{"snow", "sleet", "ice", "freezing"}},
	{WeatherRain, []string{"rain", "drizzle", "shower"}},
	{WeatherFog, []string{"fog", "haze", "smoke"}},
	{WeatherThunderstorm, []string{"thunderstorm", "storm"}},
	{WeatherWindy, []string{"windy", "breezy"}},
}

// WeatherCategories lists every value CategorizeWeather can return.
var WeatherCategories = []string{
	WeatherClear, WeatherCloudy, WeatherSnow, WeatherRain, WeatherFog,
	WeatherThunderstorm, WeatherWindy, WeatherUnknown, WeatherOther,
}

// CategorizeWeather folds a free-text weather condition into a category by
// case-insensitive substring match. Empty text is unknown; text matching no
// rule is other.
func CategorizeWeather(condition string) string {
	if condition == "" {
		return WeatherUnknown
	}
	condition = strings.ToLower(condition)
	for _, rule := range weatherRules {
		for _, term := range rule.terms {
			if strings.Contains(condition, term) {
				return rule.category
			}
		}
	}
	return WeatherOther
}
