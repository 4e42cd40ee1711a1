package model

import "time"

// CustodyTransfer records a change of an asset's custodian. Names are
// snapshots taken at transfer time, not references.
type CustodyTransfer struct {
	ID            int64     `json:"id"`
	AssetID       int64     `json:"asset_id"`
	FromUsername  string    `json:"from_username,omitempty"`
	FromName      string    `json:"from_name,omitempty"`
	ToUsername    string    `json:"to_username"`
	ToName        string    `json:"to_name"`
	Note          string    `json:"note,omitempty"`
	TransferredBy string    `json:"transferred_by"`
	TransferredAt time.Time `json:"transferred_at"`

	// Joined fields (not always populated).
	AssetCode string `json:"asset_code,omitempty"`
	AssetName string `json:"asset_name,omitempty"`
}

// MaintenanceRecord is an append-only service note for an asset.
type MaintenanceRecord struct {
	ID          int64     `json:"id"`
	AssetID     int64     `json:"asset_id"`
	PerformedOn string    `json:"performed_on"`
	Description string    `json:"description"`
	Cost        int64     `json:"cost"`
	RecordedBy  string    `json:"recorded_by"`
	RecordedAt  time.Time `json:"recorded_at"`

	// Joined fields (not always populated).
	AssetCode string `json:"asset_code,omitempty"`
}

// NewMaintenance holds the fields for recording maintenance. Condition, when
// set, is applied to the asset together with the record.
type NewMaintenance struct {
	PerformedOn string `json:"performed_on"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
	Condition   string `json:"condition"`
}
