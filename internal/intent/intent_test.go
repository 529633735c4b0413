package intent

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		message  string
		wantKind Kind
		wantCity string
	}{
		{"北京天气怎么样", Weather, "北京"},
		{"明天上海会下雨吗", Weather, "上海"},
		{"what's the weather for Tokyo", Weather, "Tokyo"},
		{"今天天气如何", Weather, ""}, // weather intent, city unknown
		{"推荐一些地方", Destinations, ""},
		{"周末短途游有什么建议", Destinations, ""},
		{"推荐一些旅行地点", None, ""}, // not covered by local patterns: goes to the LLM
		{"100美元的汇率是多少", Currency, ""},
		{"帮我订一张机票", None, ""},
	}
	for _, tt := range tests {
		got := Detect(tt.message)
		if got.Kind != tt.wantKind || got.City != tt.wantCity {
			t.Errorf("Detect(%q) = {%v %q}, want {%v %q}",
				tt.message, got.Kind, got.City, tt.wantKind, tt.wantCity)
		}
	}
}

func TestWeatherWinsOverOtherIntents(t *testing.T) {
	// Mentions both weather and a destination pattern; the weather card has
	// priority.
	got := Detect("去杭州旅行的话天气怎么样")
	if got.Kind != Weather || got.City != "杭州" {
		t.Errorf("Detect = {%v %q}, want weather for 杭州", got.Kind, got.City)
	}
}
