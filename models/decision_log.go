package models

import (
	"encoding/json"
	"time"
)

// PolicyName identifies one of the six authorization policies
type PolicyName string

const (
	PolicyPlanTrip     PolicyName = "PLANIFICATION_TRAJET"
	PolicyReservation  PolicyName = "RESERVATION"
	PolicyAssignDriver PolicyName = "AFFECTATION_CHAUFFEUR"
	PolicyDeparture    PolicyName = "DEPART_BUS"
	PolicyTransfer     PolicyName = "TRANSFERT_AGENCE"
	PolicyMaintenance  PolicyName = "MAINTENANCE"
)

// DecisionLog is the persistent record of one policy evaluation: the
// decision, the rendered trace, and the entities the request referenced.
type DecisionLog struct {
	ID          int64           `json:"id" db:"id"`
	Policy      PolicyName      `json:"policy" db:"policy"`
	Decision    string          `json:"decision" db:"decision"`
	Explanation string          `json:"explanation" db:"explanation"`
	EntityRefs  json.RawMessage `json:"entity_refs,omitempty" db:"entity_refs"`
	RequestID   string          `json:"request_id,omitempty" db:"request_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the DecisionLog model
func (DecisionLog) TableName() string {
	return "decision_logs"
}
