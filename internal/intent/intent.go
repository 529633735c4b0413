// Package intent is the client-side local pattern matcher: it spots
// weather, destination, and currency questions the app can answer (or
// augment) without the LLM tool path.
package intent

import (
	"regexp"
	"strings"
)

// Kind classifies a user message.
type Kind int

const (
	None Kind = iota
	Weather
	Destinations
	Currency
)

// Intent is the result of local detection. City is set for weather intents
// when a known city was mentioned.
type Intent struct {
	Kind Kind
	City string
}

var (
	weatherPattern     = regexp.MustCompile(`天气|下雨|晴天|weather`)
	destinationPattern = regexp.MustCompile(`推荐.*地方|旅行.*建议|去.*旅行|旅游.*推荐|热门.*目的地|周末.*游|短途.*游`)
	currencyPattern    = regexp.MustCompile(`汇率|换钱|currency|换算|多少钱`)

	cityPattern = regexp.MustCompile(
		`北京|上海|广州|深圳|杭州|南京|武汉|成都|西安|重庆|天津|青岛|大连|厦门|昆明|贵阳|拉萨|银川|西宁|` +
			`乌鲁木齐|呼和浩特|南宁|海口|福州|合肥|南昌|郑州|太原|长春|沈阳|哈尔滨|石家庄|济南|兰州`)
	englishCityPattern = regexp.MustCompile(`for (\w+)`)
)

// Detect classifies message. Weather wins over destination and currency
// when several patterns match, matching the UI's card priority.
func Detect(message string) Intent {
	lowered := strings.ToLower(message)

	if weatherPattern.MatchString(lowered) {
		return Intent{Kind: Weather, City: extractCity(message)}
	}
	if destinationPattern.MatchString(lowered) {
		return Intent{Kind: Destinations}
	}
	if currencyPattern.MatchString(lowered) {
		return Intent{Kind: Currency}
	}
	return Intent{Kind: None}
}

func extractCity(message string) string {
	if city := cityPattern.FindString(message); city != "" {
		return city
	}
	if m := englishCityPattern.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	return ""
}
