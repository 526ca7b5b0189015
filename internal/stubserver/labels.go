package stubserver

import (
	"strings"

	"github.com/yildizm/LeafScan/internal/diagnosis"
)

// ClassNames is the label set of the leaf classifier, in model output order
var ClassNames = []string{
	"Pepper__bell___Bacterial_spot",
	"Pepper__bell___healthy",
	"Potato___Early_blight",
	"Potato___healthy",
	"Potato___Late_blight",
	"Tomato___Bacterial_spot",
	"Tomato___Early_blight",
	"Tomato___healthy",
	"Tomato___Late_blight",
	"Tomato___Leaf_Mold",
	"Tomato___Septoria_leaf_spot",
	"Tomato___Spider_mites",
	"Tomato___Target_Spot",
	"Tomato___Tomato_mosaic_virus",
	"Tomato___Tomato_Yellow_Leaf_Curl_Virus",
}

const (
	labelSeparator = "___"

	// HealthyAdvice is returned for every healthy class
	HealthyAdvice = "Your crop looks healthy!"

	// DefaultAdvice is used when no advice key matches the disease
	DefaultAdvice = "Remove infected leaves and avoid excess watering."
)

type adviceEntry struct {
	key    string
	advice string
}

// First match wins, so longer keys sharing a prefix come first
var adviceTable = []adviceEntry{
	{"Bacterial_spot", "Use copper-based fungicide and avoid overhead watering."},
	{"Early_blight", "Remove infected leaves and use fungicide."},
	{"Late_blight", "Destroy infected plants and avoid wet conditions."},
	{"Leaf_Mold", "Improve air circulation and reduce humidity."},
	{"Septoria_leaf_spot", "Remove infected leaves and apply fungicide."},
	{"Spider_mites", "Use insecticidal soap or neem oil."},
	{"Target_Spot", "Use fungicide and avoid wet leaves."},
	{"Tomato_mosaic_virus", "Remove infected plants and disinfect tools."},
	{"Tomato_Yellow_Leaf_Curl_Virus", "Remove infected plants and control whiteflies."},
	{"Bacterial", "Use recommended pesticide."},
}

// ParseLabel splits "crop___disease" into its parts. A label without the
// separator is treated as a crop with an empty disease.
func ParseLabel(label string) (crop, disease string) {
	crop, disease, _ = strings.Cut(label, labelSeparator)
	return crop, disease
}

// Severity grades a disease prediction by confidence
func Severity(confidence float64) string {
	switch {
	case confidence > 0.75:
		return "Severe"
	case confidence > 0.4:
		return "Moderate"
	default:
		return "Mild"
	}
}

// Advice returns the treatment advice for a raw disease name
func Advice(diseaseRaw string) string {
	lower := strings.ToLower(diseaseRaw)
	for _, entry := range adviceTable {
		if strings.Contains(lower, strings.ToLower(entry.key)) {
			return entry.advice
		}
	}
	return DefaultAdvice
}

// Diagnose turns a prediction into the result returned to clients
func Diagnose(p Prediction) diagnosis.Result {
	crop, diseaseRaw := ParseLabel(p.Label)

	if strings.EqualFold(diseaseRaw, "healthy") {
		return diagnosis.Result{
			Crop:       crop,
			Status:     diagnosis.StatusHealthy,
			Disease:    "None",
			Severity:   "None",
			Confidence: p.Confidence,
			Advice:     HealthyAdvice,
		}
	}

	return diagnosis.Result{
		Crop:       crop,
		Status:     diagnosis.StatusDiseased,
		Disease:    strings.ReplaceAll(diseaseRaw, "_", " "),
		Severity:   Severity(p.Confidence),
		Confidence: p.Confidence,
		Advice:     Advice(diseaseRaw),
	}
}
