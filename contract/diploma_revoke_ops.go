package contract

import (
	"fmt"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Revocation ---

// RevokeDiploma marks a diploma invalid. Revocation is terminal; revoking an
// already revoked diploma fails with ALREADY_REVOKED and changes nothing.
func (s *DiplomaRegistryContract) RevokeDiploma(ctx contractapi.TransactionContextInterface, studentAddress string) error {
	im := NewIdentityManager(ctx)
	admin, err := im.RequireAdmin()
	if err != nil {
		return err
	}

	addr, err := model.NormalizeAddress(studentAddress)
	if err != nil {
		return err
	}

	record, found, err := s.getDiplomaByAddress(ctx, addr)
	if err != nil {
		return fmt.Errorf("RevokeDiploma: %w", err)
	}
	if !found {
		return model.Errorf(model.KindNotFound, "no diploma registered for '%s'", addr)
	}
	if !record.IsValid {
		return model.Errorf(model.KindAlreadyRevoked, "diploma of '%s' is already revoked", addr)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("RevokeDiploma: %w", err)
	}

	record.IsValid = false
	if err := s.putDiploma(ctx, record); err != nil {
		return fmt.Errorf("RevokeDiploma: %w", err)
	}

	s.emitDiplomaEvent(ctx, model.EventDiplomaRevoked, model.DiplomaRevokedEvent{
		StudentAddress: addr,
		RevokedBy:      admin,
		RevokedAt:      now.UnixMilli(),
		TxID:           ctx.GetStub().GetTxID(),
	})
	logger.Infof("Diploma of '%s' revoked by '%s'", addr, admin)
	return nil
}
