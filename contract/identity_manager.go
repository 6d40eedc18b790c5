package contract

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HamzaTakiX/Blockchain-project/identity"
	"github.com/HamzaTakiX/Blockchain-project/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var idLogger = flogging.MustGetLogger("diplomacert.identitymanager")

// IdentityManager resolves the transaction invoker to a registry address and
// answers admin questions against the stored RegistryConfig.
type IdentityManager struct {
	Ctx contractapi.TransactionContextInterface
}

// NewIdentityManager creates a new instance of IdentityManager.
func NewIdentityManager(ctx contractapi.TransactionContextInterface) *IdentityManager {
	return &IdentityManager{Ctx: ctx}
}

// GetCurrentIdentityFullID retrieves the X.509 ID string of the current transactor.
func (im *IdentityManager) GetCurrentIdentityFullID() (string, error) {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	return id, nil
}

// GetCurrentAddress derives the invoker's address from its enrollment certificate.
func (im *IdentityManager) GetCurrentAddress() (string, error) {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	cert, err := clientIdentity.GetX509Certificate()
	if err != nil {
		return "", fmt.Errorf("failed to get client certificate: %w", err)
	}
	addr, err := identity.AddressFromCertificate(cert)
	if err != nil {
		return "", fmt.Errorf("failed to derive caller address: %w", err)
	}
	return addr, nil
}

// GetCurrentMSPID returns the MSP of the invoker, or an empty string when unavailable.
func (im *IdentityManager) GetCurrentMSPID() string {
	clientIdentity := im.Ctx.GetClientIdentity()
	if clientIdentity == nil {
		return ""
	}
	mspID, err := clientIdentity.GetMSPID()
	if err != nil {
		idLogger.Warningf("Could not determine MSPID of current caller: %v", err)
		return ""
	}
	return mspID
}

// GetRegistryConfig loads the genesis config. A registry that has not been
// initialised yields a NotInitialized error.
func (im *IdentityManager) GetRegistryConfig() (*model.RegistryConfig, error) {
	cfgBytes, err := im.Ctx.GetStub().GetState(registryConfigKey)
	if err != nil {
		return nil, fmt.Errorf("ledger error reading registry config: %w", err)
	}
	if cfgBytes == nil {
		return nil, model.Errorf(model.KindNotInitialized, "registry has no admin; call InitLedger first")
	}
	var cfg model.RegistryConfig
	if err := json.Unmarshal(cfgBytes, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registry config: %w", err)
	}
	return &cfg, nil
}

// IsAdmin compares a canonical address with the registry admin. An
// uninitialised registry has no admin, so the answer is false.
func (im *IdentityManager) IsAdmin(address string) (bool, error) {
	cfg, err := im.GetRegistryConfig()
	if err != nil {
		if errors.Is(err, model.ErrNotInitialized) {
			return false, nil
		}
		return false, err
	}
	return cfg.AdminAddress == address, nil
}

// RequireAdmin fails with Unauthorized unless the invoker is the admin.
func (im *IdentityManager) RequireAdmin() (string, error) {
	caller, err := im.GetCurrentAddress()
	if err != nil {
		return "", model.Wrap(model.KindUnauthorized, err, "cannot authenticate caller")
	}
	cfg, err := im.GetRegistryConfig()
	if err != nil {
		return "", err
	}
	if cfg.AdminAddress != caller {
		return "", model.Errorf(model.KindUnauthorized, "caller '%s' is not the registry admin", caller)
	}
	return caller, nil
}
