package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/artifact"
	"github.com/HamzaTakiX/Blockchain-project/metadata"
	"github.com/HamzaTakiX/Blockchain-project/model"
)

// IssueRequest is everything the admin provides to issue a diploma.
type IssueRequest struct {
	StudentAddress string
	StudentName    string
	Specialization string
	FileName       string
	FileType       string
	File           []byte
}

// IssueResult describes a successful issuance.
type IssueResult struct {
	StudentAddress  string             `json:"studentAddress"`
	FileID          artifact.ContentID `json:"fileId"`
	FileLocator     artifact.Locator   `json:"fileLocator"`
	MetadataID      artifact.ContentID `json:"metadataId"`
	MetadataLocator artifact.Locator   `json:"metadataLocator"`
	// MetadataTimestamp is the client clock written into the metadata
	// document. IssueDate is the ledger's own timestamp in milliseconds.
	MetadataTimestamp time.Time `json:"metadataTimestamp"`
	IssueDate         int64     `json:"issueDate,omitempty"`
	// Degraded is set when at least one blob was not stored. The ledger
	// record still points at the correct content id; storing the same
	// bytes again makes it retrievable.
	Degraded       bool    `json:"degraded"`
	DegradedCauses []error `json:"-"`
}

func (r IssueRequest) validate() (string, error) {
	addr, err := model.NormalizeAddress(r.StudentAddress)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(r.StudentName) == "" {
		return "", model.Errorf(model.KindInvalidInput, "student name is required")
	}
	if strings.TrimSpace(r.Specialization) == "" {
		return "", model.Errorf(model.KindInvalidInput, "specialization is required")
	}
	if len(r.File) == 0 {
		return "", model.Errorf(model.KindInvalidInput, "certificate file is empty")
	}
	if len(r.File) > artifact.MaxBlockSize {
		return "", model.Errorf(model.KindInvalidInput, "certificate file is %d bytes, limit is %d", len(r.File), artifact.MaxBlockSize)
	}
	if strings.TrimSpace(r.FileName) == "" {
		return "", model.Errorf(model.KindInvalidInput, "certificate file name is required")
	}
	return addr, nil
}

// Issue stores the certificate file and its metadata document, then records
// the diploma on the ledger. Authorization and duplicates are checked up
// front so that doomed requests leave no blobs behind; the ledger remains
// the final authority. If the ledger write fails after the uploads, the
// blobs stay orphaned in the store.
func (s *Session) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if s.store == nil {
		return nil, model.Errorf(model.KindStoreUnavailable, "no artifact store configured")
	}
	addr, err := req.validate()
	if err != nil {
		return nil, err
	}

	issuer, err := s.WhoAmI(ctx)
	if err != nil {
		return nil, err
	}
	isAdmin, err := s.IsAdmin(ctx, issuer)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, model.Errorf(model.KindUnauthorized, "'%s' is not the registry admin", issuer)
	}
	exists, err := s.Verify(ctx, addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.Errorf(model.KindDuplicateRecord, "address '%s' already holds a diploma", addr)
	}

	result := &IssueResult{StudentAddress: addr, MetadataTimestamp: s.now().UTC()}

	fileID, err := s.storeBlob(ctx, req.File, result)
	if err != nil {
		return nil, fmt.Errorf("storing certificate file: %w", err)
	}
	result.FileID = fileID
	result.FileLocator = s.gateway.Resolve(fileID)

	fileType := req.FileType
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	doc := metadata.New(
		metadata.Subject{
			StudentName:    strings.TrimSpace(req.StudentName),
			StudentAddress: addr,
			Specialization: strings.TrimSpace(req.Specialization),
			IssuerAddress:  issuer,
			IssuerName:     s.issuerName,
		},
		metadata.File{
			Hash: string(fileID),
			URL:  string(result.FileLocator),
			Name: req.FileName,
			Type: fileType,
			Size: int64(len(req.File)),
		},
		result.MetadataTimestamp,
	)
	docBytes, err := doc.Encode()
	if err != nil {
		return nil, err
	}
	metaID, err := s.storeBlob(ctx, docBytes, result)
	if err != nil {
		return nil, fmt.Errorf("storing metadata document: %w", err)
	}
	result.MetadataID = metaID
	result.MetadataLocator = s.gateway.Resolve(metaID)

	if _, err := s.submit(ctx, "IssueDiploma", addr, doc.StudentName, doc.Specialization, string(metaID)); err != nil {
		logger.Warningf("Ledger rejected diploma for %s after upload; blobs %s and %s are orphaned: %v", addr, fileID, metaID, err)
		return nil, err
	}

	if record, err := s.GetDiploma(ctx, addr); err == nil {
		result.IssueDate = record.IssueDate
	} else {
		logger.Warningf("Diploma for %s issued but not read back: %v", addr, err)
	}

	if result.Degraded {
		logger.Warningf("Issued diploma for %s with unpinned artifacts (%d store failures)", addr, len(result.DegradedCauses))
	} else {
		logger.Infof("Issued diploma for %s, metadata %s", addr, metaID)
	}
	return result, nil
}

func (s *Session) storeBlob(ctx context.Context, data []byte, result *IssueResult) (artifact.ContentID, error) {
	if !s.allowDegraded {
		return s.store.Store(ctx, data)
	}
	res, err := artifact.StoreOrDegrade(ctx, s.store, data)
	if err != nil {
		return "", err
	}
	if res.Degraded {
		result.Degraded = true
		result.DegradedCauses = append(result.DegradedCauses, res.Cause)
	}
	return res.ID, nil
}
