package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names an event on the ledger's event surface.
type Type string

const (
	OracleRequest          Type = "OracleRequest"
	OracleReport           Type = "OracleReport"
	OracleRegistered       Type = "OracleRegistered"
	FlightStatusInfo       Type = "FlightStatusInfo"
	FlightRegistered       Type = "FlightRegistered"
	AirlineRegistered      Type = "AirlineRegistered"
	AirlineVoted           Type = "AirlineVoted"
	AirlineFunded          Type = "AirlineFunded"
	InsurancePurchased     Type = "InsurancePurchased"
	InsureeCredited        Type = "InsureeCredited"
	InsureePaid            Type = "InsureePaid"
	CallerAuthorized       Type = "CallerAuthorized"
	CallerDeauthorized     Type = "CallerDeauthorized"
	OperatingStatusChanged Type = "OperatingStatusChanged"
)

// Event is an immutable record of something the ledger did. Seq and Height
// are assigned when the owning transition commits.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Seq        uint64            `json:"seq"`
	Height     uint64            `json:"height"`
	Type       Type              `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func New(typ Type, at time.Time, attrs map[string]string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		Timestamp:  at,
		Attributes: attrs,
	}
}

// Attr is a shortcut for reading an attribute.
func (e Event) Attr(name string) string {
	return e.Attributes[name]
}
