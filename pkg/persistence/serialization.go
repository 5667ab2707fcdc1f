package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/types"
)

// MarshalClaimRecord serializes a ClaimRecord to JSON bytes.
func MarshalClaimRecord(record *types.ClaimRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("cannot marshal nil ClaimRecord")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ClaimRecord to JSON: %w", err)
	}

	return data, nil
}

// UnmarshalClaimRecord deserializes a ClaimRecord from JSON bytes.
func UnmarshalClaimRecord(data []byte) (*types.ClaimRecord, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var record types.ClaimRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to ClaimRecord: %w", err)
	}

	return &record, nil
}

// MarshalAirdropState serializes AirdropState to JSON bytes.
func MarshalAirdropState(state *AirdropState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("cannot marshal nil AirdropState")
	}

	return json.Marshal(state)
}

// UnmarshalAirdropState deserializes AirdropState from JSON bytes.
func UnmarshalAirdropState(data []byte) (*AirdropState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("cannot unmarshal empty data")
	}

	var state AirdropState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON to AirdropState: %w", err)
	}

	return &state, nil
}

// ValidateClaimRecord checks a record is complete enough to store.
func ValidateClaimRecord(record *types.ClaimRecord) error {
	if record == nil {
		return fmt.Errorf("claim record is nil")
	}
	if record.ClaimID == "" {
		return fmt.Errorf("claim record is missing an id")
	}
	if record.Amount == nil || record.Amount.Sign() <= 0 {
		return fmt.Errorf("claim record amount must be positive")
	}
	return nil
}
