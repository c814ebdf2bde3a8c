package service

import (
	"fmt"

	"sensorpanel/backend/services/panel-service/internal/display"
	"sensorpanel/backend/services/panel-service/internal/models"
)

// Measurement type names as published by the sensor backend. Matching is exact.
const (
	TypeTemperature = "Temperatura"
	TypeOzone       = "Ozono"
)

// Fixed panel texts.
const (
	TextUnavailable = "Dato no disponible"
	TextLoadError   = "Error al cargar"
)

// SelectLatest returns the record of typeName with the greatest ID.
// On equal IDs the first one in records wins. ok is false when no record
// has that type.
func SelectLatest(records []models.Measurement, typeName string) (latest models.Measurement, ok bool) {
	for _, rec := range records {
		if rec.TypeName != typeName {
			continue
		}
		if !ok || rec.ID > latest.ID {
			latest = rec
			ok = true
		}
	}
	return latest, ok
}

// slotSpec binds a display slot to the measurement type and unit it shows.
type slotSpec struct {
	slot     string
	typeName string
	unit     string
}

var panelSlots = []slotSpec{
	{slot: display.SlotTemperature, typeName: TypeTemperature, unit: "°C"},
	{slot: display.SlotOzone, typeName: TypeOzone, unit: "ppm"},
}

// SlotTexts renders the text of every panel slot for a non-empty poll result.
func SlotTexts(records []models.Measurement) map[string]string {
	out := make(map[string]string, len(panelSlots))
	for _, spec := range panelSlots {
		latest, ok := SelectLatest(records, spec.typeName)
		if !ok {
			out[spec.slot] = TextUnavailable
			continue
		}
		out[spec.slot] = fmt.Sprintf("%s %s", latest.Value, spec.unit)
	}
	return out
}

// errorTexts is written to every slot when a poll fails.
func errorTexts() map[string]string {
	out := make(map[string]string, len(panelSlots))
	for _, spec := range panelSlots {
		out[spec.slot] = TextLoadError
	}
	return out
}
