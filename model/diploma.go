package model

// DiplomaRecord is the on-ledger certification of one student identity.
type DiplomaRecord struct {
	ObjectType     string `json:"objectType"`     // Set to the composite key object type (Diploma)
	StudentAddress string `json:"studentAddress"` // Canonical lower-case 0x address, primary key
	StudentName    string `json:"studentName"`    // Immutable after issuance
	Specialization string `json:"specialization"` // Immutable after issuance
	IssueDate      int64  `json:"issueDate"`      // Epoch milliseconds of the issuing transaction
	ArtifactID     string `json:"artifactId"`     // Content id of the off-chain metadata document
	IsValid        bool   `json:"isValid"`        // true -> false on revocation, never back
}

// RegistryConfig is written once by InitLedger and never updated.
type RegistryConfig struct {
	ObjectType    string `json:"objectType"`
	AdminAddress  string `json:"adminAddress"`
	InitializedAt int64  `json:"initializedAt"` // Epoch milliseconds
	InitTxID      string `json:"initTxId"`
}

// Chaincode event names.
const (
	EventDiplomaIssued  = "DiplomaIssued"
	EventDiplomaRevoked = "DiplomaRevoked"
)

// DiplomaIssuedEvent is the payload of EventDiplomaIssued.
type DiplomaIssuedEvent struct {
	StudentAddress string `json:"studentAddress"`
	ArtifactID     string `json:"artifactId"`
	IssueDate      int64  `json:"issueDate"`
	IssuedBy       string `json:"issuedBy"`
	TxID           string `json:"txId"`
}

// DiplomaRevokedEvent is the payload of EventDiplomaRevoked.
type DiplomaRevokedEvent struct {
	StudentAddress string `json:"studentAddress"`
	RevokedBy      string `json:"revokedBy"`
	RevokedAt      int64  `json:"revokedAt"`
	TxID           string `json:"txId"`
}
