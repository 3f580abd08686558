package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type ShipmentMetadataKind string

const (
	ShipmentMetadataLabel  ShipmentMetadataKind = "carrier_label"
	ShipmentMetadataManual ShipmentMetadataKind = "manual"
)

type ShipmentMetadata struct {
	Kind     ShipmentMetadataKind `json:"kind"`
	LabelID  string               `json:"labelId,omitempty"`
	LabelURL string               `json:"labelUrl,omitempty"`
	Note     string               `json:"note,omitempty"`
}

func (m *ShipmentMetadata) Validate() error {
	if m == nil {
		return nil
	}
	switch m.Kind {
	case ShipmentMetadataLabel:
		if m.LabelID == "" {
			return fmt.Errorf("shipment metadata: label id required")
		}
	case ShipmentMetadataManual:
	default:
		return fmt.Errorf("shipment metadata: unknown kind %q", m.Kind)
	}
	return nil
}

func (m *ShipmentMetadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (m *ShipmentMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = ShipmentMetadata{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, m)
}
