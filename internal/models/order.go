package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Order is a single service visit on the calendar. Dates and hour slots are
// kept as strings ("2006-01-02" / "15:00") so range filters and calendar
// ordering stay plain lexicographic comparisons.
type Order struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderType  string    `json:"orderType" gorm:"not null;default:'primary'"` // primary, secondary
	ClientName string    `json:"clientName" gorm:"not null"`
	ClientType string    `json:"clientType" gorm:"default:'individual'"` // individual, legal
	Pest       string    `json:"pest"`
	ObjectType string    `json:"objectType"`
	Volume     string    `json:"volume"`
	Address    string    `json:"address"`
	Phones     PhoneList `json:"phones" gorm:"type:text"`
	Date       string    `json:"date" gorm:"type:varchar(10);index;not null"`
	Time       string    `json:"time" gorm:"type:varchar(5);not null"`
	BasePrice  float64   `json:"basePrice"`
	Comment    string    `json:"comment"`
	Manager    string    `json:"manager"`
	Status     string    `json:"status" gorm:"default:'in_progress';index"` // in_progress, completed, cancelled

	// Completion fields. MasterIncome and CashDesk are derived from
	// FinalAmount and MasterPercent, never set independently.
	FinalAmount       *float64 `json:"finalAmount,omitempty"`
	MasterPercent     *float64 `json:"masterPercent,omitempty"`
	MasterIncome      *float64 `json:"masterIncome,omitempty"`
	CashDesk          *float64 `json:"cashDesk,omitempty"`
	MasterName        string   `json:"masterName,omitempty"`
	MasterContact     string   `json:"masterContact,omitempty"`
	CompletionComment string   `json:"completionComment,omitempty"`
	ContractPhoto     string   `json:"contractPhoto,omitempty"`
	RepeatDate        string   `json:"repeatDate,omitempty"`
	RepeatTime        string   `json:"repeatTime,omitempty"`

	CancelReason string `json:"cancelReason,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type OrderStatus string

const (
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

type OrderType string

const (
	OrderPrimary   OrderType = "primary"
	OrderSecondary OrderType = "secondary"
)

type ClientType string

const (
	ClientIndividual ClientType = "individual"
	ClientLegal      ClientType = "legal"
)

// PhoneList is stored as a JSON-encoded array in a single text column but is
// always a string array at the API boundary. Phone search runs a substring
// match against the serialized column, so the encoding is part of the
// search contract.
type PhoneList []string

func (p PhoneList) Value() (driver.Value, error) {
	if p == nil {
		p = PhoneList{}
	}
	data, err := json.Marshal([]string(p))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize phones: %w", err)
	}
	return string(data), nil
}

func (p *PhoneList) Scan(value interface{}) error {
	if value == nil {
		*p = PhoneList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported phones column type %T", value)
	}

	var phones []string
	if err := json.Unmarshal(raw, &phones); err != nil {
		// Legacy rows may hold a bare phone number instead of an array.
		*p = PhoneList{string(raw)}
		return nil
	}
	*p = phones
	return nil
}

func (p PhoneList) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}
