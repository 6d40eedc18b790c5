package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// getCurrentTxTimestamp retrieves the current transaction timestamp from the stub.
func (s *DiplomaRegistryContract) getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

func (s *DiplomaRegistryContract) getCurrentActorInfo(ctx contractapi.TransactionContextInterface) (*actorInfo, error) {
	im := NewIdentityManager(ctx)
	addr, err := im.GetCurrentAddress()
	if err != nil {
		return nil, fmt.Errorf("failed to get current actor's address: %w", err)
	}
	fullID, err := im.GetCurrentIdentityFullID()
	if err != nil {
		logger.Debugf("Could not read X.509 ID for actor %s: %v", addr, err)
	}
	return &actorInfo{address: addr, fullID: fullID, mspID: im.GetCurrentMSPID()}, nil
}

// createDiplomaCompositeKey creates the ledger key of a canonical student address.
func (s *DiplomaRegistryContract) createDiplomaCompositeKey(ctx contractapi.TransactionContextInterface, studentAddress string) (string, error) {
	return ctx.GetStub().CreateCompositeKey(diplomaObjectType, []string{studentAddress})
}

func (s *DiplomaRegistryContract) validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return model.Errorf(model.KindInvalidInput, "%s cannot be empty", field)
	}
	if len(input) > max {
		return model.Errorf(model.KindInvalidInput, "%s exceeds max length %d", field, max)
	}
	return nil
}

// getDiplomaByAddress reads a record. The boolean is false when the address has no record.
func (s *DiplomaRegistryContract) getDiplomaByAddress(ctx contractapi.TransactionContextInterface, studentAddress string) (*model.DiplomaRecord, bool, error) {
	key, err := s.createDiplomaCompositeKey(ctx, studentAddress)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create key for diploma '%s': %w", studentAddress, err)
	}
	recordBytes, err := ctx.GetStub().GetState(key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read diploma '%s' from ledger: %w", studentAddress, err)
	}
	if recordBytes == nil {
		return nil, false, nil
	}
	var record model.DiplomaRecord
	if err := json.Unmarshal(recordBytes, &record); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal diploma '%s': %w", studentAddress, err)
	}
	return &record, true, nil
}

func (s *DiplomaRegistryContract) putDiploma(ctx contractapi.TransactionContextInterface, record *model.DiplomaRecord) error {
	key, err := s.createDiplomaCompositeKey(ctx, record.StudentAddress)
	if err != nil {
		return fmt.Errorf("failed to create key for diploma '%s': %w", record.StudentAddress, err)
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal diploma '%s': %w", record.StudentAddress, err)
	}
	if err := ctx.GetStub().PutState(key, recordBytes); err != nil {
		return fmt.Errorf("failed to save diploma '%s' to ledger: %w", record.StudentAddress, err)
	}
	return nil
}

func (s *DiplomaRegistryContract) readCounter(ctx contractapi.TransactionContextInterface) (int, error) {
	counterBytes, err := ctx.GetStub().GetState(diplomaCounterKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read diploma counter: %w", err)
	}
	if counterBytes == nil {
		return 0, nil
	}
	n, err := strconv.Atoi(string(counterBytes))
	if err != nil {
		return 0, fmt.Errorf("diploma counter is corrupt ('%s'): %w", string(counterBytes), err)
	}
	return n, nil
}

func (s *DiplomaRegistryContract) incrementCounter(ctx contractapi.TransactionContextInterface) (int, error) {
	n, err := s.readCounter(ctx)
	if err != nil {
		return 0, err
	}
	n++
	if err := ctx.GetStub().PutState(diplomaCounterKey, []byte(strconv.Itoa(n))); err != nil {
		return 0, fmt.Errorf("failed to save diploma counter: %w", err)
	}
	return n, nil
}

// emitDiplomaEvent sends a chaincode event. Failures are logged; the
// state change stands.
func (s *DiplomaRegistryContract) emitDiplomaEvent(ctx contractapi.TransactionContextInterface, eventName string, payload interface{}) {
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		logger.Warningf("emitDiplomaEvent: Failed to marshal payload for event '%s': %v", eventName, err)
		return
	}
	if errSet := ctx.GetStub().SetEvent(eventName, eventBytes); errSet != nil {
		logger.Warningf("emitDiplomaEvent: Failed to set event '%s': %v", eventName, errSet)
	}
}
