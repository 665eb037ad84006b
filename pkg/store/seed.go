package store

import "phytoguard/pkg/domain"

// seedDiseases is the built-in disease library, inserted on first run.
var seedDiseases = []domain.Disease{
	{
		ID:             "tomato-blight",
		Name:           "Late Blight",
		ScientificName: "Phytophthora infestans",
		Confidence:     96,
		Severity:       domain.SeverityCritical,
		IsContagious:   true,
		Symptoms: []string{
			"Large, irregular grey-green spots on leaves",
			"White fungal growth on undersides in humid weather",
			"Brown rotting fruit",
		},
		Causes: []string{
			"High humidity and cool temperatures",
			"Poor air circulation",
			"Infected soil or transplants",
		},
		OrganicControl: []string{
			"Remove and destroy all infected plant parts immediately",
			"Apply copper-based fungicides",
			"Neem oil spray can help early stages",
		},
		ChemicalControl: []string{
			"Fungicides containing chlorothalonil or mancozeb",
			"Apply preventative sprays before symptoms appear",
		},
		Prevention: []string{
			"Water at the base of the plant, not the leaves",
			"Rotate crops annually",
			"Space plants for good airflow",
		},
		ImageURL: "https://images.unsplash.com/photo-1592841200221-a6898f307baa?auto=format&fit=crop&q=80&w=800",
	},
	{
		ID:             "early-blight",
		Name:           "Tomato Early Blight",
		ScientificName: "Alternaria solani",
		Confidence:     98,
		Severity:       domain.SeverityModerate,
		IsContagious:   true,
		Symptoms: []string{
			"Dark concentric rings on lower leaves",
			"Yellowing around spots",
			"Premature leaf drop",
		},
		Causes: []string{
			"Warm, wet weather",
			"Overhead watering",
			"Infected plant debris",
		},
		OrganicControl: []string{
			"Remove infected lower leaves immediately using sterilized shears to stop spread",
			"Apply neem oil spray weekly",
			"Mulch around base to prevent soil splash",
		},
		ChemicalControl: []string{
			"Apply copper fungicide or neem oil spray every 7-10 days",
			"Chlorothalonil-based fungicides as preventative",
		},
		Prevention: []string{
			"Rotate crops every 2-3 years",
			"Water at base, never overhead",
			"Ensure good air circulation",
		},
	},
	{
		ID:             "powdery-mildew",
		Name:           "Powdery Mildew",
		ScientificName: "Podosphaera xanthii",
		Confidence:     89,
		Severity:       domain.SeverityModerate,
		IsContagious:   true,
		Symptoms: []string{
			"White powdery spots on leaves and stems",
			"Leaves turning yellow and drying out",
			"Distorted growth",
		},
		Causes: []string{
			"High humidity at night, low humidity during day",
			"Crowded planting",
			"Shade",
		},
		OrganicControl: []string{
			"Milk spray (40% milk, 60% water)",
			"Baking soda solution",
			"Potassium bicarbonate",
		},
		ChemicalControl: []string{
			"Sulfur-based fungicides",
			"Myclobutanil",
		},
		Prevention: []string{
			"Plant resistant varieties",
			"Ensure full sun exposure",
			"Avoid excess nitrogen fertilizer",
		},
		ImageURL: "https://upload.wikimedia.org/wikipedia/commons/thumb/e/e0/Powdery_mildew_on_cucumber.jpg/800px-Powdery_mildew_on_cucumber.jpg",
	},
}
