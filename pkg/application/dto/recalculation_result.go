package dto

import (
	"time"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// RecalculationResult summarizes one rollup pass over a BOM
type RecalculationResult struct {
	BOMID          entities.BOMID `json:"bom_id"`
	ItemsProcessed int            `json:"items_processed"`
	RecordsWritten int            `json:"records_written"`
	RecordsCreated int            `json:"records_created"`

	// Gaps contribute zero and never fail the pass
	MissingCostRecords  []entities.ItemID `json:"missing_cost_records,omitempty"`
	MissingMachineRates []string          `json:"missing_machine_rates,omitempty"`
	RejectedOperations  []OperationError  `json:"rejected_operations,omitempty"`

	Warnings     []entities.StructuralWarning `json:"warnings,omitempty"`
	CalculatedAt time.Time                    `json:"calculated_at"`
	Duration     time.Duration                `json:"duration"`
}

// OperationError is a process input that failed validation during rollup
type OperationError struct {
	ItemID      entities.ItemID           `json:"item_id"`
	OperationID string                    `json:"operation_id"`
	Errors      entities.ValidationErrors `json:"errors"`
}

// HasGaps reports whether any input was missing or rejected
func (r *RecalculationResult) HasGaps() bool {
	return len(r.MissingCostRecords) > 0 || len(r.MissingMachineRates) > 0 || len(r.RejectedOperations) > 0
}
