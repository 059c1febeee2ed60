package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ============================================
// Plant Diagnosis
// ============================================

type DiagnoseInput struct {
	Description string `json:"description" binding:"required"`
	CropName    string `json:"cropName"`
	PhotoHints  string `json:"photoHints"`
}

type DiagnoseResult struct {
	IsPlant    bool    `json:"isPlant"`
	CommonName string  `json:"commonName"`
	LatinName  string  `json:"latinName"`
	IsHealthy  bool    `json:"isHealthy"`
	Diagnosis  string  `json:"diagnosis"`
	Confidence float64 `json:"confidence"`
}

var diagnoseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isPlant":    {Type: genai.TypeBoolean},
		"commonName": {Type: genai.TypeString},
		"latinName":  {Type: genai.TypeString},
		"isHealthy":  {Type: genai.TypeBoolean},
		"diagnosis":  {Type: genai.TypeString},
		"confidence": {Type: genai.TypeNumber, Description: "0 to 1"},
	},
	Required: []string{"isPlant", "isHealthy", "diagnosis", "confidence"},
}

// DiagnosePlant asks the model to identify a plant problem from a
// freetext description.
func DiagnosePlant(ctx context.Context, m ModelClient, in DiagnoseInput) (*DiagnoseResult, error) {
	var b strings.Builder
	b.WriteString("You are an experienced agronomist. A farmer describes a plant problem.\n")
	if in.CropName != "" {
		fmt.Fprintf(&b, "Crop: %s\n", in.CropName)
	}
	fmt.Fprintf(&b, "Description: %s\n", in.Description)
	if in.PhotoHints != "" {
		fmt.Fprintf(&b, "Visual observations: %s\n", in.PhotoHints)
	}
	b.WriteString("Identify the plant if possible, say whether it looks healthy, and give a concise diagnosis with a confidence between 0 and 1.")

	var out DiagnoseResult
	if err := m.GenerateJSON(ctx, b.String(), diagnoseSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================
// Treatment Plan
// ============================================

type TreatmentInput struct {
	Diagnosis string `json:"diagnosis" binding:"required"`
	CropName  string `json:"cropName"`
}

type TreatmentResult struct {
	Summary         string   `json:"summary"`
	Steps           []string `json:"steps"`
	OrganicOptions  []string `json:"organicOptions"`
	ChemicalOptions []string `json:"chemicalOptions"`
	PreventionTips  []string `json:"preventionTips"`
}

var treatmentSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":         {Type: genai.TypeString},
		"steps":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"organicOptions":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"chemicalOptions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"preventionTips":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"summary", "steps"},
}

// SuggestTreatment turns a diagnosis into an actionable treatment plan.
func SuggestTreatment(ctx context.Context, m ModelClient, in TreatmentInput) (*TreatmentResult, error) {
	var b strings.Builder
	b.WriteString("You are an experienced agronomist. Propose a treatment plan.\n")
	if in.CropName != "" {
		fmt.Fprintf(&b, "Crop: %s\n", in.CropName)
	}
	fmt.Fprintf(&b, "Diagnosis: %s\n", in.Diagnosis)
	b.WriteString("Give a short summary, ordered treatment steps, organic and chemical options, and prevention tips.")

	var out TreatmentResult
	if err := m.GenerateJSON(ctx, b.String(), treatmentSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================
// Soil Interpretation
// ============================================

// SoilSample is one historical soil test rendered into the prompt.
type SoilSample struct {
	Date          string
	PH            *float64
	OrganicMatter *float64
	Nitrogen      *float64
	Phosphorus    *float64
	Potassium     *float64
}

type SoilResult struct {
	Summary              string   `json:"summary"`
	PHAssessment         string   `json:"phAssessment"`
	NutrientNotes        []string `json:"nutrientNotes"`
	AmendmentSuggestions []string `json:"amendmentSuggestions"`
}

var soilSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary":              {Type: genai.TypeString},
		"phAssessment":         {Type: genai.TypeString},
		"nutrientNotes":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"amendmentSuggestions": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"summary", "phAssessment"},
}

// InterpretSoil summarizes a field's recent soil tests.
func InterpretSoil(ctx context.Context, m ModelClient, fieldName string, samples []SoilSample) (*SoilResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a soil scientist. Interpret recent soil test results for field %q.\n", fieldName)
	for _, s := range samples {
		fmt.Fprintf(&b, "- %s:", s.Date)
		writeMetric(&b, "pH", s.PH)
		writeMetric(&b, "OM%", s.OrganicMatter)
		writeMetric(&b, "N", s.Nitrogen)
		writeMetric(&b, "P", s.Phosphorus)
		writeMetric(&b, "K", s.Potassium)
		b.WriteString("\n")
	}
	b.WriteString("Assess the pH trend, note nutrient deficiencies or excesses, and suggest amendments.")

	var out SoilResult
	if err := m.GenerateJSON(ctx, b.String(), soilSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeMetric(b *strings.Builder, label string, v *float64) {
	if v != nil {
		fmt.Fprintf(b, " %s=%.2f", label, *v)
	}
}

// ============================================
// Optimization Suggestions
// ============================================

// CropRecord is one planting or harvest summarized into the prompt.
type CropRecord struct {
	CropName string
	Detail   string
}

type OptimizeSuggestion struct {
	Title     string `json:"title"`
	Rationale string `json:"rationale"`
	Priority  string `json:"priority"`
}

type OptimizeResult struct {
	Summary     string               `json:"summary"`
	Suggestions []OptimizeSuggestion `json:"suggestions"`
}

var optimizeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"suggestions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":     {Type: genai.TypeString},
					"rationale": {Type: genai.TypeString},
					"priority":  {Type: genai.TypeString, Description: "high, medium or low"},
				},
				Required: []string{"title", "rationale", "priority"},
			},
		},
	},
	Required: []string{"summary", "suggestions"},
}

// SuggestOptimizations proposes farm improvements toward a stated goal,
// grounded in the farm's recent planting and harvest history.
func SuggestOptimizations(ctx context.Context, m ModelClient, goal string, plantings, harvests []CropRecord) (*OptimizeResult, error) {
	var b strings.Builder
	b.WriteString("You are a farm management consultant.\n")
	fmt.Fprintf(&b, "The farmer's goal: %s\n", goal)
	if len(plantings) > 0 {
		b.WriteString("Recent plantings:\n")
		for _, p := range plantings {
			fmt.Fprintf(&b, "- %s: %s\n", p.CropName, p.Detail)
		}
	}
	if len(harvests) > 0 {
		b.WriteString("Recent harvests:\n")
		for _, h := range harvests {
			fmt.Fprintf(&b, "- %s: %s\n", h.CropName, h.Detail)
		}
	}
	b.WriteString("Give a short summary and a prioritized list of concrete suggestions.")

	var out OptimizeResult
	if err := m.GenerateJSON(ctx, b.String(), optimizeSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
