package contract

import (
	"fmt"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Functions ---

// VerifyDiploma reports whether a record exists for studentAddress. It does
// not look at validity: a revoked diploma still verifies as registered, and
// callers that need authenticity must also check GetDiploma(...).isValid.
func (s *DiplomaRegistryContract) VerifyDiploma(ctx contractapi.TransactionContextInterface, studentAddress string) (bool, error) {
	addr, err := model.NormalizeAddress(studentAddress)
	if err != nil {
		return false, err
	}
	_, found, err := s.getDiplomaByAddress(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("VerifyDiploma: %w", err)
	}
	logger.Debugf("VerifyDiploma: '%s' registered=%t", addr, found)
	return found, nil
}

// GetDiploma returns the full record of studentAddress.
func (s *DiplomaRegistryContract) GetDiploma(ctx contractapi.TransactionContextInterface, studentAddress string) (*model.DiplomaRecord, error) {
	addr, err := model.NormalizeAddress(studentAddress)
	if err != nil {
		return nil, err
	}
	record, found, err := s.getDiplomaByAddress(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("GetDiploma: %w", err)
	}
	if !found {
		return nil, model.Errorf(model.KindNotFound, "no diploma registered for '%s'", addr)
	}
	return record, nil
}

// GetTotalIssued returns how many diplomas were ever issued. Revocation
// does not decrement it.
func (s *DiplomaRegistryContract) GetTotalIssued(ctx contractapi.TransactionContextInterface) (int, error) {
	n, err := s.readCounter(ctx)
	if err != nil {
		return 0, fmt.Errorf("GetTotalIssued: %w", err)
	}
	return n, nil
}

// IsAdmin reports whether address is the registry admin.
func (s *DiplomaRegistryContract) IsAdmin(ctx contractapi.TransactionContextInterface, address string) (bool, error) {
	addr, err := model.NormalizeAddress(address)
	if err != nil {
		return false, err
	}
	return NewIdentityManager(ctx).IsAdmin(addr)
}

// GetAdmin returns the admin address fixed at InitLedger.
func (s *DiplomaRegistryContract) GetAdmin(ctx contractapi.TransactionContextInterface) (string, error) {
	cfg, err := NewIdentityManager(ctx).GetRegistryConfig()
	if err != nil {
		return "", err
	}
	return cfg.AdminAddress, nil
}

// WhoAmI returns the address the registry derives for the caller.
func (s *DiplomaRegistryContract) WhoAmI(ctx contractapi.TransactionContextInterface) (string, error) {
	return NewIdentityManager(ctx).GetCurrentAddress()
}

// GetAllStudentAddresses lists every address holding a record, valid or
// revoked, in key order. This is a public function.
func (s *DiplomaRegistryContract) GetAllStudentAddresses(ctx contractapi.TransactionContextInterface) ([]string, error) {
	resultsIterator, err := ctx.GetStub().GetStateByPartialCompositeKey(diplomaObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("GetAllStudentAddresses: failed to get diplomas iterator: %w", err)
	}
	defer resultsIterator.Close()

	addresses := []string{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			return nil, fmt.Errorf("GetAllStudentAddresses: failed to iterate diplomas: %w", iterErr)
		}
		_, attrs, err := ctx.GetStub().SplitCompositeKey(queryResponse.Key)
		if err != nil || len(attrs) != 1 {
			logger.Warningf("GetAllStudentAddresses: Unexpected key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		addresses = append(addresses, attrs[0])
	}

	logger.Debugf("GetAllStudentAddresses: Returning %d addresses", len(addresses))
	return addresses, nil
}
