package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/arjunks/datahound/internal/profile"
	"github.com/arjunks/datahound/pkg/models"
)

// modelReply is the JSON shape the prompt asks the model to produce.
type modelReply struct {
	Categories []modelCategory `json:"categories"`
	Analysis   string          `json:"analysis"`
}

type modelCategory struct {
	Kind        models.CategoryKind `json:"kind"`
	Description string              `json:"description"`
	Indicators  map[string]float64  `json:"indicators"`
	ObjectCount int                 `json:"object_count"`
	Confidence  float64             `json:"confidence"`
}

// ExtractJSONBlock pulls the first top-level JSON object out of a raw model
// reply. Models wrap JSON in prose or markdown fences often enough that
// taking the outermost brace pair is more reliable than trusting the reply
// to be bare JSON.
func ExtractJSONBlock(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// Reconcile merges a raw model reply with the deterministic ground truth.
// Object counts and auxiliary field sums are recomputed locally regardless
// of what the model claimed, and absent categories are restored from the
// deterministic result. Indicator values the model does supply are kept,
// with deterministic values back-filling only the keys it omitted; the
// narrative text and per-category descriptions/confidence come from the
// model as well. Returns ErrInvalidReply when the reply contains no
// parseable JSON object.
func Reconcile(raw string, req profile.EnrichRequest) (*models.ProfileResult, error) {
	block, ok := ExtractJSONBlock(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrInvalidReply)
	}
	var reply modelReply
	if err := json.Unmarshal([]byte(block), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReply, err)
	}

	det := req.Deterministic
	byKind := make(map[models.CategoryKind]modelCategory, len(reply.Categories))
	for _, mc := range reply.Categories {
		byKind[mc.Kind] = mc
	}

	counts := profile.CountByCategory(req.Rows, req.Fields, req.Thresholds)
	aux := req.Config.AuxFields()
	auxSums := make(map[string]map[models.CategoryKind]float64, len(aux))
	for _, f := range aux {
		auxSums[f] = profile.SumByCategory(req.Rows, req.Fields, req.Thresholds, f)
	}

	categories := make([]models.Category, 0, len(models.CategoryKinds))
	for i, kind := range models.CategoryKinds {
		cat := det.Categories[i]
		mc, present := byKind[kind]
		if present {
			if mc.Description != "" {
				cat.Description = mc.Description
			}
			cat.Confidence = clamp01(mc.Confidence)
			cat.Indicators = mergeIndicators(mc.Indicators, det.Categories[i].Indicators)
		}
		// Local counts and auxiliary sums are authoritative regardless of
		// what the model claimed.
		cat.ObjectCount = counts[kind]
		for _, f := range aux {
			cat.Indicators[f] = auxSums[f][kind]
		}
		categories = append(categories, cat)
	}

	analysis := strings.TrimSpace(reply.Analysis)
	if analysis == "" {
		analysis = det.Analysis
	}

	group := ""
	if len(det.Indicators) > 0 {
		group = det.Indicators[0].Group
	}

	return &models.ProfileResult{
		Categories: categories,
		Analysis:   analysis,
		Indicators: profile.FlattenIndicators(group, categories, req.Fields, aux),
		Rules:      det.Rules,
		Params:     det.Params,
		Fields:     det.Fields,
		Thresholds: det.Thresholds,
		Source:     models.SourceModel,
		RowCount:   det.RowCount,
	}, nil
}

// mergeIndicators starts from the model's indicator map and back-fills any
// key the deterministic result has that the model omitted.
func mergeIndicators(model, det map[string]float64) map[string]float64 {
	merged := make(map[string]float64, len(det))
	for k, v := range model {
		merged[k] = v
	}
	for k, v := range det {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
