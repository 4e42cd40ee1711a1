package model

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// AssetType is a lookup entry that classifies assets.
type AssetType struct {
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Asset represents a single tracked physical asset.
type Asset struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	TypeCode   string `json:"type_code"`
	AcquiredOn string `json:"acquired_on,omitempty"`
	Location   string `json:"location"`
	Condition  string `json:"condition"`
	Value      int64  `json:"value"`
	PhotoMime  string `json:"photo_mime,omitempty"`

	CustodianID *int64    `json:"custodian_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	TypeLabel         string `json:"type_label,omitempty"`
	CustodianUsername string `json:"custodian_username,omitempty"`
	CustodianName     string `json:"custodian_name,omitempty"`
}

// Asset conditions.
const (
	ConditionNew              = "New"
	ConditionGood             = "Good"
	ConditionNeedsMaintenance = "Needs-maintenance"
	ConditionBroken           = "Broken"
	ConditionRetired          = "Retired"
)

// Conditions lists every known condition in display order.
var Conditions = []string{
	ConditionNew,
	ConditionGood,
	ConditionNeedsMaintenance,
	ConditionBroken,
	ConditionRetired,
}

// ValidCondition reports whether c is a known condition.
func ValidCondition(c string) bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// DateLayout is the format of calendar dates such as acquisition dates.
const DateLayout = "2006-01-02"

// ValidDate reports whether s is empty or a YYYY-MM-DD date.
func ValidDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// NewAsset holds the fields for creating an asset. The code is allocated by
// the store.
type NewAsset struct {
	Name              string `json:"name"`
	TypeCode          string `json:"type_code"`
	AcquiredOn        string `json:"acquired_on"`
	Location          string `json:"location"`
	CustodianUsername string `json:"custodian_username"`
	Condition         string `json:"condition"`
	Value             int64  `json:"value"`
}

// AssetUpdate holds the editable descriptive fields of an asset.
type AssetUpdate struct {
	Name       string `json:"name"`
	TypeCode   string `json:"type_code"`
	AcquiredOn string `json:"acquired_on"`
	Location   string `json:"location"`
}

// AssetFilter narrows ListAssets. Zero values match everything.
// CustodianUsername only matches an active account; assets held by a deleted
// account are reachable through CustodianID.
type AssetFilter struct {
	TypeCode          string
	CustodianUsername string
	CustodianID       int64
	Condition         string
	Location          string
	// After is an exclusive cursor: only codes ordered after it are returned.
	After string
	Limit int
}

// Dashboard summarizes the catalog for a single identity.
type Dashboard struct {
	TotalAssets int            `json:"total_assets"`
	TotalValue  int64          `json:"total_value"`
	ByCondition map[string]int `json:"by_condition"`
	InCustody   []Asset        `json:"in_custody"`
}

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount held in minor units, e.g. 1250 as "12.50".
func FormatMoney(minor int64) string {
	return moneyPrinter.Sprintf("%.2f", float64(minor)/100)
}
