package weather

// WMO weather interpretation codes, mapped to the Chinese condition text and
// emoji icons the UI renders.

var conditions = map[int]string{
	0:  "晴朗",
	1:  "多云",
	2:  "多云",
	3:  "多云",
	45: "雾",
	48: "霜雾",
	51: "小雨",
	53: "中雨",
	55: "大雨",
	56: "冻雨",
	57: "大冻雨",
	61: "小雨",
	63: "中雨",
	65: "大雨",
	66: "冻雨",
	67: "大冻雨",
	71: "小雪",
	73: "中雪",
	75: "大雪",
	77: "雪粒",
	80: "阵雨",
	81: "中阵雨",
	82: "大阵雨",
	85: "阵雪",
	86: "大雪",
	95: "雷暴",
	96: "雷暴伴有冰雹",
	99: "强雷暴伴有冰雹",
}

var icons = map[int]string{
	0:  "☀️",
	1:  "⛅",
	2:  "⛅",
	3:  "☁️",
	45: "🌫️",
	48: "🌫️",
	51: "🌦️",
	53: "🌧️",
	55: "🌧️",
	61: "🌦️",
	63: "🌧️",
	65: "🌧️",
	71: "🌨️",
	73: "❄️",
	75: "❄️",
	80: "🌦️",
	81: "🌧️",
	82: "⛈️",
	85: "🌨️",
	86: "❄️",
	95: "⛈️",
	96: "⛈️",
	99: "⛈️",
}

// Condition returns the human-readable condition for a WMO code.
func Condition(code int) string {
	if c, ok := conditions[code]; ok {
		return c
	}
	return "未知"
}

// Icon returns the emoji icon for a WMO code.
func Icon(code int) string {
	if i, ok := icons[code]; ok {
		return i
	}
	return "☁️"
}
