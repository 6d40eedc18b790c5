// Package session is the client-side view of the diploma registry. A
// Session bundles a ledger contract handle with the blob store used for
// certificate files and metadata documents.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/artifact"
	"github.com/HamzaTakiX/Blockchain-project/metadata"
	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric/common/flogging"
	"google.golang.org/grpc/status"
)

var logger = flogging.MustGetLogger("diplomacert.session")

// Contract is the subset of the Fabric Gateway contract API a Session uses.
type Contract interface {
	SubmitTransaction(name string, args ...string) ([]byte, error)
	EvaluateTransaction(name string, args ...string) ([]byte, error)
}

// Options configures New.
type Options struct {
	Contract Contract
	// Store receives certificate files and metadata documents. Required for Issue.
	Store    artifact.Store
	Gateway  artifact.Gateway
	Resolver *metadata.Resolver
	// IssuerName is written into metadata documents.
	IssuerName string
	// AllowDegradedArtifacts lets Issue continue with locally computed
	// content ids when Store is unavailable.
	AllowDegradedArtifacts bool
	Clock                  func() time.Time
}

type Session struct {
	contract      Contract
	store         artifact.Store
	gateway       artifact.Gateway
	resolver      *metadata.Resolver
	issuerName    string
	allowDegraded bool
	now           func() time.Time
}

func New(opts Options) (*Session, error) {
	if opts.Contract == nil {
		return nil, errors.New("session: contract is required")
	}
	gw := opts.Gateway
	if gw.Base == "" {
		gw = artifact.NewGateway("")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	issuer := opts.IssuerName
	if issuer == "" {
		issuer = "Diploma Registry"
	}
	return &Session{
		contract:      opts.Contract,
		store:         opts.Store,
		gateway:       gw,
		resolver:      opts.Resolver,
		issuerName:    issuer,
		allowDegraded: opts.AllowDegradedArtifacts,
		now:           clock,
	}, nil
}

// Gateway returns the gateway used to build locators.
func (s *Session) Gateway() artifact.Gateway { return s.gateway }

func (s *Session) evaluate(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.contract.EvaluateTransaction(name, args...)
	if err != nil {
		return nil, ledgerError(name, err)
	}
	return result, nil
}

func (s *Session) submit(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := s.contract.SubmitTransaction(name, args...)
	if err != nil {
		return nil, ledgerError(name, err)
	}
	return result, nil
}

// ledgerError recovers the registry error kind. Gateway errors carry the
// chaincode's message in their gRPC status details rather than in Error().
func ledgerError(txName string, err error) error {
	if model.KindOf(err) != model.KindUnknown {
		return model.FromRemote(err)
	}
	if st, ok := status.FromError(err); ok {
		for _, d := range st.Details() {
			detail, ok := d.(interface{ GetMessage() string })
			if !ok {
				continue
			}
			msg := detail.GetMessage()
			if kind := model.KindOf(errors.New(msg)); kind != model.KindUnknown {
				return model.FromRemote(fmt.Errorf("%s: %s", txName, msg))
			}
		}
	}
	return fmt.Errorf("%s: %w", txName, err)
}

// WhoAmI returns the ledger address of the connected identity.
func (s *Session) WhoAmI(ctx context.Context) (string, error) {
	out, err := s.evaluate(ctx, "WhoAmI")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Admin returns the registry admin address.
func (s *Session) Admin(ctx context.Context) (string, error) {
	out, err := s.evaluate(ctx, "GetAdmin")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *Session) IsAdmin(ctx context.Context, address string) (bool, error) {
	addr, err := model.NormalizeAddress(address)
	if err != nil {
		return false, err
	}
	out, err := s.evaluate(ctx, "IsAdmin", addr)
	if err != nil {
		return false, err
	}
	return parseBool(out)
}

// IsCurrentUserAdmin reports whether the connected identity is the admin.
func (s *Session) IsCurrentUserAdmin(ctx context.Context) (bool, error) {
	me, err := s.WhoAmI(ctx)
	if err != nil {
		return false, err
	}
	return s.IsAdmin(ctx, me)
}

// Verify reports whether address has ever been issued a diploma. A revoked
// diploma still verifies; use GetDiploma for validity.
func (s *Session) Verify(ctx context.Context, address string) (bool, error) {
	addr, err := model.NormalizeAddress(address)
	if err != nil {
		return false, err
	}
	out, err := s.evaluate(ctx, "VerifyDiploma", addr)
	if err != nil {
		return false, err
	}
	return parseBool(out)
}

func (s *Session) GetDiploma(ctx context.Context, address string) (*model.DiplomaRecord, error) {
	addr, err := model.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	out, err := s.evaluate(ctx, "GetDiploma", addr)
	if err != nil {
		return nil, err
	}
	var record model.DiplomaRecord
	if err := json.Unmarshal(out, &record); err != nil {
		return nil, fmt.Errorf("GetDiploma: decoding record: %w", err)
	}
	return &record, nil
}

// DiplomaView is a ledger record together with its resolved metadata.
type DiplomaView struct {
	Record          *model.DiplomaRecord `json:"record"`
	MetadataLocator artifact.Locator     `json:"metadataLocator"`
	Metadata        *metadata.Resolution `json:"metadata,omitempty"`
}

// GetDiplomaWithMetadata fetches the record and, when a resolver is
// configured, its metadata document and the availability of the certificate
// file. Problems with either are reported in the resolution, never as an
// error.
func (s *Session) GetDiplomaWithMetadata(ctx context.Context, address string) (*DiplomaView, error) {
	record, err := s.GetDiploma(ctx, address)
	if err != nil {
		return nil, err
	}
	id := artifact.ContentID(record.ArtifactID)
	view := &DiplomaView{Record: record, MetadataLocator: s.gateway.Resolve(id)}
	if s.resolver != nil {
		res := s.resolver.ResolveWithFile(ctx, id)
		if res.Document != nil && res.Document.StudentAddress != record.StudentAddress {
			logger.Warningf("Metadata %s names student %s but is linked from %s", id, res.Document.StudentAddress, record.StudentAddress)
		}
		view.Metadata = &res
	}
	return view, nil
}

func (s *Session) TotalIssued(ctx context.Context) (int, error) {
	out, err := s.evaluate(ctx, "GetTotalIssued")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(string(out))
	if err != nil {
		return 0, fmt.Errorf("GetTotalIssued: unexpected result %q: %w", out, err)
	}
	return n, nil
}

func (s *Session) StudentAddresses(ctx context.Context) ([]string, error) {
	out, err := s.evaluate(ctx, "GetAllStudentAddresses")
	if err != nil {
		return nil, err
	}
	addresses := []string{}
	if len(out) == 0 {
		return addresses, nil
	}
	if err := json.Unmarshal(out, &addresses); err != nil {
		return nil, fmt.Errorf("GetAllStudentAddresses: decoding result: %w", err)
	}
	if addresses == nil {
		addresses = []string{}
	}
	return addresses, nil
}

// Revoke marks the diploma of address invalid.
func (s *Session) Revoke(ctx context.Context, address string) error {
	addr, err := model.NormalizeAddress(address)
	if err != nil {
		return err
	}
	if _, err := s.submit(ctx, "RevokeDiploma", addr); err != nil {
		return err
	}
	logger.Infof("Revoked diploma of %s", addr)
	return nil
}

func parseBool(out []byte) (bool, error) {
	b, err := strconv.ParseBool(string(out))
	if err != nil {
		return false, fmt.Errorf("unexpected boolean result %q: %w", out, err)
	}
	return b, nil
}
