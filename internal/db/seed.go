package db

import "embruns/internal/models"

// SeedMenu is the opening menu. Its items have no ids: they predate item
// identities and are addressed by position until rewritten.
func SeedMenu() []models.MenuCategory {
	return []models.MenuCategory{
		{
			ID:    "entrees",
			Name:  "Entrées",
			Order: 1,
			Items: []models.MenuItem{
				{Name: "Huîtres de Marennes-Oléron", Description: "Servies nature ou gratinées au beurre d'algues", Price: "18€"},
				{Name: "Tartare de Bar de Ligne", Description: "Avocat, pomme verte et vinaigrette aux agrumes", Price: "22€"},
				{Name: "Velouté de Châtaigne", Description: "Émulsion de truffe et lard paysan", Price: "16€"},
			},
		},
		{
			ID:    "plats",
			Name:  "Plats",
			Order: 2,
			Items: []models.MenuItem{
				{Name: "Sole de Nos Côtes", Description: "Meunière aux pommes de terre de Noirmoutier", Price: "42€"},
				{Name: "Agneau de Pré-Salé", Description: "Jus au thym, légumes de saison", Price: "38€"},
				{Name: "Risotto aux Fruits de Mer", Description: "Langoustines, moules et palourdes", Price: "34€"},
			},
		},
		{
			ID:    "desserts",
			Name:  "Desserts",
			Order: 3,
			Items: []models.MenuItem{
				{Name: "Tarte au Chocolat Valrhona", Description: "Glace vanille de Madagascar", Price: "14€"},
				{Name: "Île Flottante Revisitée", Description: "Caramel au beurre salé de Guérande", Price: "12€"},
			},
		},
	}
}

func RestaurantInfo() models.RestaurantInfo {
	hours := "12h15-13h30, 19h15-21h15"
	return models.RestaurantInfo{
		Name:        "Les Embruns",
		Tagline:     "Restaurant Semi-Gastronomique",
		Location:    "Port de Saint Martin de Ré",
		Description: "Découvrez Les Embruns, une expérience culinaire raffinée au cœur du port de Saint Martin de Ré.",
		Hero: models.HeroSection{
			Title:       "Les Embruns",
			Subtitle:    "L'Art Culinaire proche de la mer",
			Description: "Une expérience semi-gastronomique unique au port de Saint Martin de Ré",
			Image:       "/images/hero.jpg",
		},
		About: models.AboutSection{
			Title:       "Notre Histoire",
			Description: "Niché au cœur du port de Saint Martin de Ré, Les Embruns vous invite à découvrir une cuisine raffinée.",
			Image:       "/images/about.jpg",
		},
		Contact: models.ContactInfo{
			Phone:   "05 46 66 46 31",
			Address: "6 Rue Chay Morin, 17410 Saint-Martin-de-Ré",
			Hours: map[string]string{
				"monday":    "Fermé",
				"tuesday":   hours,
				"wednesday": hours,
				"thursday":  hours,
				"friday":    hours,
				"saturday":  hours,
				"sunday":    hours,
			},
		},
	}
}
