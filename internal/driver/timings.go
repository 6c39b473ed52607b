package driver

import (
	"encoding/json"
	"fmt"

	"jsema/internal/diag"
	"jsema/internal/observ"
	"jsema/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Units   int                  `json:"units"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic files the phase report as an info diagnostic
// whose note carries the JSON payload. It bypasses the bag limit.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "analysis"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms over %d units", payload.Kind, payload.TotalMS, payload.Units)

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Primary:  source.Span{},
		Notes:    []diag.Note{{Span: source.Span{}, Msg: string(data)}},
	}
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(0)
	overflow.Add(entry)
	bag.Merge(overflow)
}
