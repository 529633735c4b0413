// Package destinations serves the curated destination catalog shown as
// recommendation cards in the chat UI.
package destinations

import "strings"

// Destination is one recommended place.
type Destination struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Rating      float64 `json:"rating"`
	Images      []string `json:"images"`
	Location    LatLng  `json:"location"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

var catalog = []Destination{
	{
		ID:          "beijing",
		Name:        "北京",
		Description: "中华人民共和国的首都，历史文化名城，拥有紫禁城、长城等世界文化遗产。",
		Rating:      4.8,
		Images:      []string{"/images/destinations_6.jpg"},
		Location:    LatLng{Lat: 39.9042, Lng: 116.4074},
	},
	{
		ID:          "shanghai",
		Name:        "上海",
		Description: "中国最大的经济中心城市，现代化国际都市，拥有外滩、东方明珠等著名景点。",
		Rating:      4.7,
		Images:      []string{"/images/destinations_5.png"},
		Location:    LatLng{Lat: 31.2304, Lng: 121.4737},
	},
	{
		ID:          "hangzhou",
		Name:        "杭州",
		Description: "浙江省省会，以西湖美景闻名于世，被誉为\"人间天堂\"。",
		Rating:      4.8,
		Images:      []string{"/images/destinations_1.png"},
		Location:    LatLng{Lat: 30.2741, Lng: 120.1551},
	},
	{
		ID:          "guilin",
		Name:        "桂林",
		Description: "中国著名风景游览城市，以奇峰异石和漓江山水著称于世。",
		Rating:      4.7,
		Images:      []string{"/images/destinations_5.png"},
		Location:    LatLng{Lat: 25.2736, Lng: 110.2991},
	},
	{
		ID:          "xian",
		Name:        "西安",
		Description: "中国四大古都之一，拥有兵马俑、大雁塔等历史文化古迹。",
		Rating:      4.6,
		Images:      []string{"/images/destinations_6.jpg"},
		Location:    LatLng{Lat: 34.3416, Lng: 108.9398},
	},
}

// Search returns destinations whose name or description contains query.
// An empty query returns the whole catalog.
func Search(query string) []Destination {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]Destination(nil), catalog...)
	}

	var matched []Destination
	for _, d := range catalog {
		if strings.Contains(d.Name, query) || strings.Contains(d.Description, query) {
			matched = append(matched, d)
		}
	}
	return matched
}

// ByID returns the destination with the given ID, or nil.
func ByID(id string) *Destination {
	for i := range catalog {
		if catalog[i].ID == id {
			d := catalog[i]
			return &d
		}
	}
	return nil
}
