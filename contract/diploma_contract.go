package contract

import (
	"encoding/json"
	"fmt"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("diplomacert.contract")

// Object types for composite keys, also usable as 'docType' in CouchDB queries.
const (
	diplomaObjectType = "Diploma"        // Attribute for composite key: student address.
	configObjectType  = "RegistryConfig" // Stored under registryConfigKey.

	registryConfigKey = "RegistryConfig"
	diplomaCounterKey = "DiplomaCounter"
)

// Constants for input validation
const (
	maxStringInputLength = 256
	maxArtifactIDLength  = 512
)

// DiplomaRegistryContract is the authoritative diploma ledger: one record per
// student address, mutated only by the admin fixed at InitLedger.
// @contract:DiplomaRegistryContract
type DiplomaRegistryContract struct {
	contractapi.Contract
}

// actorInfo holds commonly needed details about the transaction invoker.
type actorInfo struct {
	address string
	fullID  string
	mspID   string
}

// GetEvaluateTransactions marks the read-only transactions in the contract metadata.
func (s *DiplomaRegistryContract) GetEvaluateTransactions() []string {
	return []string{
		"VerifyDiploma",
		"GetDiploma",
		"GetTotalIssued",
		"IsAdmin",
		"GetAdmin",
		"WhoAmI",
		"GetAllStudentAddresses",
	}
}

// InitLedger fixes the registry admin. It may run exactly once; an empty
// adminAddress makes the caller the admin, like a contract constructor.
func (s *DiplomaRegistryContract) InitLedger(ctx contractapi.TransactionContextInterface, adminAddress string) error {
	existing, err := ctx.GetStub().GetState(registryConfigKey)
	if err != nil {
		return fmt.Errorf("InitLedger: failed to read registry config: %w", err)
	}
	if existing != nil {
		return model.Errorf(model.KindAlreadyInitialized, "registry admin is already set")
	}

	actor, err := s.getCurrentActorInfo(ctx)
	if err != nil {
		return fmt.Errorf("InitLedger: %w", err)
	}

	admin := actor.address
	if adminAddress != "" {
		admin, err = model.NormalizeAddress(adminAddress)
		if err != nil {
			return err
		}
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("InitLedger: %w", err)
	}

	cfg := model.RegistryConfig{
		ObjectType:    configObjectType,
		AdminAddress:  admin,
		InitializedAt: now.UnixMilli(),
		InitTxID:      ctx.GetStub().GetTxID(),
	}
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("InitLedger: failed to marshal registry config: %w", err)
	}
	if err := ctx.GetStub().PutState(registryConfigKey, cfgBytes); err != nil {
		return fmt.Errorf("InitLedger: failed to save registry config: %w", err)
	}
	if err := ctx.GetStub().PutState(diplomaCounterKey, []byte("0")); err != nil {
		return fmt.Errorf("InitLedger: failed to initialise diploma counter: %w", err)
	}

	logger.Infof("Registry initialised by '%s' (MSP %s) with admin '%s'", actor.address, actor.mspID, admin)
	return nil
}
