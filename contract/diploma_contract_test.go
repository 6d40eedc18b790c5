package contract

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/suite"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	studentOne = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	studentTwo = "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc"
)

type RegistrySuite struct {
	suite.Suite
	stub     *shimtest.MockStub
	contract *DiplomaRegistryContract
	admin    *testIdentity
	outsider *testIdentity
	clock    time.Time
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.stub = shimtest.NewMockStub("diplomacert", nil)
	s.contract = &DiplomaRegistryContract{}
	s.admin = newTestIdentity(s.T(), "registrar", "UniversityMSP")
	s.outsider = newTestIdentity(s.T(), "mallory", "UniversityMSP")
	s.clock = time.Date(2025, 6, 7, 10, 30, 0, 0, time.UTC)

	s.Require().NoError(s.contract.InitLedger(s.ctxAs(s.admin), ""))
	s.drainEvents()
}

// ctxAs starts a new mock transaction invoked by id. Each transaction is
// one minute after the previous one.
func (s *RegistrySuite) ctxAs(id *testIdentity) contractapi.TransactionContextInterface {
	s.stub.MockTransactionStart(uuid.NewString())
	s.clock = s.clock.Add(time.Minute)
	s.stub.TxTimestamp = timestamppb.New(s.clock)

	ctx := &contractapi.TransactionContext{}
	ctx.SetStub(s.stub)
	ctx.SetClientIdentity(id)
	return ctx
}

func (s *RegistrySuite) drainEvents() []*peer.ChaincodeEvent {
	var events []*peer.ChaincodeEvent
	for {
		select {
		case ev := <-s.stub.ChaincodeEventsChannel:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func (s *RegistrySuite) issue(student, name, specialization, artifact string) error {
	return s.contract.IssueDiploma(s.ctxAs(s.admin), student, name, specialization, artifact)
}

func (s *RegistrySuite) total() int {
	n, err := s.contract.GetTotalIssued(s.ctxAs(s.outsider))
	s.Require().NoError(err)
	return n
}

func (s *RegistrySuite) TestInitLedger() {
	s.Run("caller becomes admin", func() {
		admin, err := s.contract.GetAdmin(s.ctxAs(s.outsider))
		s.Require().NoError(err)
		s.Equal(s.admin.address, admin)
	})

	s.Run("second init is rejected", func() {
		err := s.contract.InitLedger(s.ctxAs(s.outsider), "")
		s.Require().ErrorIs(err, model.ErrAlreadyInitialized)

		admin, err := s.contract.GetAdmin(s.ctxAs(s.outsider))
		s.Require().NoError(err)
		s.Equal(s.admin.address, admin)
	})

	s.Run("explicit admin address is normalised", func() {
		stub := shimtest.NewMockStub("fresh", nil)
		stub.MockTransactionStart("init")
		ctx := &contractapi.TransactionContext{}
		ctx.SetStub(stub)
		ctx.SetClientIdentity(s.outsider)

		s.Require().NoError(s.contract.InitLedger(ctx, studentOne))
		admin, err := s.contract.GetAdmin(ctx)
		s.Require().NoError(err)
		s.Equal(strings.ToLower(studentOne), admin)
	})

	s.Run("uninitialised registry rejects issuance", func() {
		stub := shimtest.NewMockStub("empty", nil)
		stub.MockTransactionStart("tx")
		ctx := &contractapi.TransactionContext{}
		ctx.SetStub(stub)
		ctx.SetClientIdentity(s.admin)

		err := s.contract.IssueDiploma(ctx, studentOne, "Alice", "CS", "Qm123")
		s.Require().ErrorIs(err, model.ErrNotInitialized)

		isAdmin, err := s.contract.IsAdmin(ctx, s.admin.address)
		s.Require().NoError(err)
		s.False(isAdmin)
	})
}

func (s *RegistrySuite) TestIssueScenario() {
	s.Require().NoError(s.issue(studentOne, "Alice", "CS", "Qm123"))

	ok, err := s.contract.VerifyDiploma(s.ctxAs(s.outsider), studentOne)
	s.Require().NoError(err)
	s.True(ok)

	record, err := s.contract.GetDiploma(s.ctxAs(s.outsider), studentOne)
	s.Require().NoError(err)
	s.Equal("Alice", record.StudentName)
	s.Equal("CS", record.Specialization)
	s.Equal("Qm123", record.ArtifactID)
	s.True(record.IsValid)
	s.Equal(strings.ToLower(studentOne), record.StudentAddress)
	s.Equal(1, s.total())
}

func (s *RegistrySuite) TestIssueDateIsLedgerTimestamp() {
	ctx := s.ctxAs(s.admin)
	issuedAt := s.clock
	s.Require().NoError(s.contract.IssueDiploma(ctx, studentOne, "Alice", "CS", "Qm123"))

	record, err := s.contract.GetDiploma(s.ctxAs(s.outsider), studentOne)
	s.Require().NoError(err)
	s.Equal(issuedAt.UnixMilli(), record.IssueDate)
}

func (s *RegistrySuite) TestIssueEmitsEvent() {
	ctx := s.ctxAs(s.admin)
	s.Require().NoError(s.contract.IssueDiploma(ctx, studentOne, "Alice", "CS", "Qm123"))

	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(model.EventDiplomaIssued, events[0].EventName)

	var payload model.DiplomaIssuedEvent
	s.Require().NoError(json.Unmarshal(events[0].Payload, &payload))
	s.Equal(strings.ToLower(studentOne), payload.StudentAddress)
	s.Equal(s.admin.address, payload.IssuedBy)
	s.Equal("Qm123", payload.ArtifactID)
	s.Equal(ctx.GetStub().GetTxID(), payload.TxID)
}

func (s *RegistrySuite) TestNonAdminCannotIssue() {
	err := s.contract.IssueDiploma(s.ctxAs(s.outsider), studentTwo, "Bob", "Math", "QmBob")
	s.Require().ErrorIs(err, model.ErrUnauthorized)
	s.Equal(model.KindUnauthorized, model.KindOf(err))

	s.Equal(0, s.total())
	ok, err := s.contract.VerifyDiploma(s.ctxAs(s.outsider), studentTwo)
	s.Require().NoError(err)
	s.False(ok)
	s.Empty(s.drainEvents())
}

func (s *RegistrySuite) TestDuplicateIssueKeepsOriginal() {
	s.Require().NoError(s.issue(studentOne, "Alice", "CS", "Qm123"))

	err := s.issue(studentOne, "Mallory", "Law", "QmOther")
	s.Require().ErrorIs(err, model.ErrDuplicateRecord)

	// Same identity in a different case is the same key.
	err = s.issue(strings.ToUpper("0x"+studentOne[2:]), "Mallory", "Law", "QmOther")
	s.Require().Error(err)

	record, err := s.contract.GetDiploma(s.ctxAs(s.outsider), studentOne)
	s.Require().NoError(err)
	s.Equal("Alice", record.StudentName)
	s.Equal("CS", record.Specialization)
	s.Equal("Qm123", record.ArtifactID)
	s.Equal(1, s.total())
}

func (s *RegistrySuite) TestReissueAfterRevocationFails() {
	s.Require().NoError(s.issue(studentOne, "Alice", "CS", "Qm123"))
	s.Require().NoError(s.contract.RevokeDiploma(s.ctxAs(s.admin), studentOne))

	err := s.issue(studentOne, "Alice", "CS", "QmNew")
	s.Require().ErrorIs(err, model.ErrDuplicateRecord)

	record, err := s.contract.GetDiploma(s.ctxAs(s.outsider), studentOne)
	s.Require().NoError(err)
	s.False(record.IsValid)
	s.Equal("Qm123", record.ArtifactID)
}

func (s *RegistrySuite) TestIssueInputValidation() {
	cases := []struct {
		name                          string
		student, who, field, artifact string
	}{
		{"malformed address", "0x1234", "Alice", "CS", "Qm1"},
		{"address without prefix", strings.TrimPrefix(studentOne, "0x") + "00", "Alice", "CS", "Qm1"},
		{"empty name", studentOne, "  ", "CS", "Qm1"},
		{"empty specialization", studentOne, "Alice", "", "Qm1"},
		{"empty artifact", studentOne, "Alice", "CS", ""},
		{"name too long", studentOne, strings.Repeat("a", maxStringInputLength+1), "CS", "Qm1"},
		{"specialization too long", studentOne, "Alice", strings.Repeat("s", maxStringInputLength+1), "Qm1"},
		{"artifact id too long", studentOne, "Alice", "CS", strings.Repeat("b", maxArtifactIDLength+1)},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			err := s.issue(tc.student, tc.who, tc.field, tc.artifact)
			s.Require().ErrorIs(err, model.ErrInvalidInput)
		})
	}
	s.Equal(0, s.total())
}

func (s *RegistrySuite) TestIssueAcceptsInputsAtLengthLimits() {
	name := strings.Repeat("a", maxStringInputLength)
	specialization := strings.Repeat("s", maxStringInputLength)
	artifactID := strings.Repeat("b", maxArtifactIDLength)
	s.Require().NoError(s.issue(studentOne, name, specialization, artifactID))

	record, err := s.contract.GetDiploma(s.ctxAs(s.outsider), studentOne)
	s.Require().NoError(err)
	s.Equal(specialization, record.Specialization)
	s.Equal(artifactID, record.ArtifactID)
}

func (s *RegistrySuite) TestRevokeScenario() {
	s.Require().NoError(s.issue(studentOne, "Alice", "CS", "Qm123"))
	s.drainEvents()

	s.Require().NoError(s.contract.RevokeDiploma(s.ctxAs(s.admin), studentOne))

	record, err := s.contract.GetDiploma(s.ctxAs(s.outsider), studentOne)
	s.Require().NoError(err)
	s.False(record.IsValid)

	ok, err := s.contract.VerifyDiploma(s.ctxAs(s.outsider), studentOne)
	s.Require().NoError(err)
	s.True(ok, "verify answers existence, not validity")
	s.Equal(1, s.total(), "revocation never decrements the total")

	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(model.EventDiplomaRevoked, events[0].EventName)
}

func (s *RegistrySuite) TestRevokeFailures() {
	s.Run("unknown identity", func() {
		err := s.contract.RevokeDiploma(s.ctxAs(s.admin), studentTwo)
		s.Require().ErrorIs(err, model.ErrNotFound)
	})

	s.Run("non admin", func() {
		s.Require().NoError(s.issue(studentOne, "Alice", "CS", "Qm123"))
		err := s.contract.RevokeDiploma(s.ctxAs(s.outsider), studentOne)
		s.Require().ErrorIs(err, model.ErrUnauthorized)

		record, err := s.contract.GetDiploma(s.ctxAs(s.outsider), studentOne)
		s.Require().NoError(err)
		s.True(record.IsValid)
	})

	s.Run("revocation is terminal", func() {
		s.Require().NoError(s.contract.RevokeDiploma(s.ctxAs(s.admin), studentOne))
		err := s.contract.RevokeDiploma(s.ctxAs(s.admin), studentOne)
		s.Require().ErrorIs(err, model.ErrAlreadyRevoked)

		err = s.issue(studentOne, "Alice", "CS", "Qm123")
		s.Require().ErrorIs(err, model.ErrDuplicateRecord)

		record, err := s.contract.GetDiploma(s.ctxAs(s.outsider), studentOne)
		s.Require().NoError(err)
		s.False(record.IsValid)
	})
}

func (s *RegistrySuite) TestUnknownIdentityReads() {
	ok, err := s.contract.VerifyDiploma(s.ctxAs(s.outsider), studentTwo)
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.contract.GetDiploma(s.ctxAs(s.outsider), studentTwo)
	s.Require().ErrorIs(err, model.ErrNotFound)

	_, err = s.contract.VerifyDiploma(s.ctxAs(s.outsider), "not-an-address")
	s.Require().ErrorIs(err, model.ErrInvalidInput)
}

func (s *RegistrySuite) TestTotalCountsDistinctIssues() {
	s.Require().NoError(s.issue(studentOne, "Alice", "CS", "Qm1"))
	s.Require().NoError(s.issue(studentTwo, "Bob", "Math", "Qm2"))
	s.Require().Error(s.issue(studentTwo, "Bob", "Math", "Qm2"))
	s.Require().NoError(s.contract.RevokeDiploma(s.ctxAs(s.admin), studentTwo))
	s.Require().Error(s.contract.IssueDiploma(s.ctxAs(s.outsider), "0x90f79bf6eb2c4f870365e785982e1f101e93b906", "Eve", "Art", "Qm3"))

	s.Equal(2, s.total())
}

func (s *RegistrySuite) TestIsAdminAndWhoAmI() {
	isAdmin, err := s.contract.IsAdmin(s.ctxAs(s.outsider), "0x"+strings.ToUpper(s.admin.address[2:]))
	s.Require().NoError(err)
	s.True(isAdmin)

	isAdmin, err = s.contract.IsAdmin(s.ctxAs(s.outsider), s.outsider.address)
	s.Require().NoError(err)
	s.False(isAdmin)

	me, err := s.contract.WhoAmI(s.ctxAs(s.outsider))
	s.Require().NoError(err)
	s.Equal(s.outsider.address, me)
}

func (s *RegistrySuite) TestGetAllStudentAddresses() {
	addrs, err := s.contract.GetAllStudentAddresses(s.ctxAs(s.outsider))
	s.Require().NoError(err)
	s.Empty(addrs)

	s.Require().NoError(s.issue(studentTwo, "Bob", "Math", "Qm2"))
	s.Require().NoError(s.issue(studentOne, "Alice", "CS", "Qm1"))
	s.Require().NoError(s.contract.RevokeDiploma(s.ctxAs(s.admin), studentTwo))

	addrs, err = s.contract.GetAllStudentAddresses(s.ctxAs(s.outsider))
	s.Require().NoError(err)
	s.ElementsMatch([]string{strings.ToLower(studentOne), studentTwo}, addrs)
}
