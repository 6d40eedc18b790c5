package contract

import (
	"fmt"
	"strings"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Issuance ---

// IssueDiploma certifies a diploma for studentAddress. Only the admin may
// issue, and an address holds at most one record for the life of the
// registry: re-issuing after a valid or revoked record fails with
// DUPLICATE_RECORD and leaves the existing record untouched.
func (s *DiplomaRegistryContract) IssueDiploma(ctx contractapi.TransactionContextInterface, studentAddress, studentName, specialization, artifactID string) error {
	im := NewIdentityManager(ctx)
	admin, err := im.RequireAdmin()
	if err != nil {
		return err
	}

	addr, err := model.NormalizeAddress(studentAddress)
	if err != nil {
		return err
	}
	if err := s.validateRequiredString(studentName, "studentName", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateRequiredString(specialization, "specialization", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateRequiredString(artifactID, "artifactId", maxArtifactIDLength); err != nil {
		return err
	}

	existing, found, err := s.getDiplomaByAddress(ctx, addr)
	if err != nil {
		return fmt.Errorf("IssueDiploma: %w", err)
	}
	if found {
		state := "valid"
		if !existing.IsValid {
			state = "revoked"
		}
		return model.Errorf(model.KindDuplicateRecord, "address '%s' already holds a %s diploma", addr, state)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("IssueDiploma: %w", err)
	}

	record := &model.DiplomaRecord{
		ObjectType:     diplomaObjectType,
		StudentAddress: addr,
		StudentName:    strings.TrimSpace(studentName),
		Specialization: strings.TrimSpace(specialization),
		IssueDate:      now.UnixMilli(),
		ArtifactID:     strings.TrimSpace(artifactID),
		IsValid:        true,
	}
	if err := s.putDiploma(ctx, record); err != nil {
		return fmt.Errorf("IssueDiploma: %w", err)
	}
	total, err := s.incrementCounter(ctx)
	if err != nil {
		return fmt.Errorf("IssueDiploma: %w", err)
	}

	s.emitDiplomaEvent(ctx, model.EventDiplomaIssued, model.DiplomaIssuedEvent{
		StudentAddress: addr,
		ArtifactID:     record.ArtifactID,
		IssueDate:      record.IssueDate,
		IssuedBy:       admin,
		TxID:           ctx.GetStub().GetTxID(),
	})
	logger.Infof("Diploma issued to '%s' (%s) by '%s'; %d issued in total", addr, record.Specialization, admin, total)
	return nil
}
