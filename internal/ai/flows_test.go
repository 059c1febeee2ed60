package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeModel returns a canned JSON payload and records the prompt it saw.
type fakeModel struct {
	payload string
	err     error
	prompt  string
	schema  *genai.Schema
}

func (f *fakeModel) GenerateJSON(_ context.Context, prompt string, schema *genai.Schema, out interface{}) error {
	f.prompt = prompt
	f.schema = schema
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}

func TestDiagnosePlant(t *testing.T) {
	m := &fakeModel{payload: `{
		"isPlant": true,
		"commonName": "Tomato",
		"latinName": "Solanum lycopersicum",
		"isHealthy": false,
		"diagnosis": "Early blight, characteristic concentric leaf lesions.",
		"confidence": 0.82
	}`}

	res, err := DiagnosePlant(context.Background(), m, DiagnoseInput{
		Description: "brown rings on lower leaves",
		CropName:    "tomato",
	})
	require.NoError(t, err)
	assert.True(t, res.IsPlant)
	assert.False(t, res.IsHealthy)
	assert.InDelta(t, 0.82, res.Confidence, 0.001)

	// The prompt carries the farmer's inputs.
	assert.True(t, strings.Contains(m.prompt, "tomato"))
	assert.True(t, strings.Contains(m.prompt, "brown rings on lower leaves"))
	require.NotNil(t, m.schema)
	assert.Equal(t, genai.TypeObject, m.schema.Type)
}

func TestSuggestTreatment(t *testing.T) {
	m := &fakeModel{payload: `{
		"summary": "Remove infected foliage and apply fungicide.",
		"steps": ["Prune lower leaves", "Apply copper fungicide weekly"],
		"organicOptions": ["Copper spray"],
		"chemicalOptions": ["Chlorothalonil"],
		"preventionTips": ["Rotate crops"]
	}`}

	res, err := SuggestTreatment(context.Background(), m, TreatmentInput{
		Diagnosis: "early blight",
		CropName:  "tomato",
	})
	require.NoError(t, err)
	assert.Len(t, res.Steps, 2)
	assert.Contains(t, m.prompt, "early blight")
}

func TestInterpretSoil_RendersSamples(t *testing.T) {
	m := &fakeModel{payload: `{
		"summary": "Slightly acidic, phosphorus is low.",
		"phAssessment": "pH trending down, lime recommended.",
		"nutrientNotes": ["Phosphorus below target"],
		"amendmentSuggestions": ["Apply lime", "Add rock phosphate"]
	}`}

	ph := 5.9
	p := 12.0
	res, err := InterpretSoil(context.Background(), m, "North Paddock", []SoilSample{
		{Date: "2026-04-01", PH: &ph, Phosphorus: &p},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Summary)
	assert.Len(t, res.AmendmentSuggestions, 2)

	assert.Contains(t, m.prompt, "North Paddock")
	assert.Contains(t, m.prompt, "2026-04-01")
	assert.Contains(t, m.prompt, "pH=5.90")
	assert.Contains(t, m.prompt, "P=12.00")
}

func TestSuggestOptimizations(t *testing.T) {
	m := &fakeModel{payload: `{
		"summary": "Yields trail the regional average for wheat.",
		"suggestions": [
			{"title": "Split nitrogen application", "rationale": "Two passes reduce leaching losses.", "priority": "high"}
		]
	}`}

	res, err := SuggestOptimizations(context.Background(), m, "maximize yield",
		[]CropRecord{{CropName: "Winter Wheat", Detail: "planted 2025-10-02 in North Paddock"}},
		[]CropRecord{{CropName: "Winter Wheat", Detail: "harvested 4.2 t/ha"}},
	)
	require.NoError(t, err)
	require.Len(t, res.Suggestions, 1)
	assert.Equal(t, "high", res.Suggestions[0].Priority)
	assert.Contains(t, m.prompt, "maximize yield")
	assert.Contains(t, m.prompt, "Winter Wheat")
	assert.Contains(t, m.prompt, "North Paddock")
}

func TestFlows_PropagateModelErrors(t *testing.T) {
	m := &fakeModel{err: errors.New("model unavailable")}

	_, err := DiagnosePlant(context.Background(), m, DiagnoseInput{Description: "wilting"})
	assert.Error(t, err)

	// Malformed model output surfaces as a decode error.
	bad := &fakeModel{payload: `{"isPlant": "yes"}`}
	_, err = DiagnosePlant(context.Background(), bad, DiagnoseInput{Description: "wilting"})
	assert.Error(t, err)
}
