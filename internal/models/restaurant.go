package models

type HeroSection struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type AboutSection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type ContactInfo struct {
	Phone   string            `json:"phone"`
	Address string            `json:"address"`
	Hours   map[string]string `json:"hours"`
}

type RestaurantInfo struct {
	Name        string       `json:"name"`
	Tagline     string       `json:"tagline"`
	Location    string       `json:"location"`
	Description string       `json:"description"`
	Hero        HeroSection  `json:"hero"`
	About       AboutSection `json:"about"`
	Contact     ContactInfo  `json:"contact"`
}
