// Package gateway connects a client to the registry chaincode through the
// Fabric Gateway service of a peer.
package gateway

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/identity"

	"github.com/go-playground/validator"
	"github.com/hyperledger/fabric-gateway/pkg/client"
	fabid "github.com/hyperledger/fabric-gateway/pkg/identity"
	"github.com/hyperledger/fabric/common/flogging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

var logger = flogging.MustGetLogger("diplomacert.gateway")

// Config locates the peer and the client's MSP material. KeyPath is a PEM
// private key file, or a keystore directory holding one.
type Config struct {
	MSPID         string `validate:"required"`
	CertPath      string `validate:"required"`
	KeyPath       string `validate:"required"`
	TLSCertPath   string `validate:"required"`
	PeerEndpoint  string `validate:"required"`
	GatewayPeer   string
	ChannelName   string `validate:"required"`
	ChaincodeName string `validate:"required"`

	EvaluateTimeout     time.Duration
	EndorseTimeout      time.Duration
	SubmitTimeout       time.Duration
	CommitStatusTimeout time.Duration
}

func (c *Config) setDefaults() {
	if c.EvaluateTimeout == 0 {
		c.EvaluateTimeout = 5 * time.Second
	}
	if c.EndorseTimeout == 0 {
		c.EndorseTimeout = 15 * time.Second
	}
	if c.SubmitTimeout == 0 {
		c.SubmitTimeout = 5 * time.Second
	}
	if c.CommitStatusTimeout == 0 {
		c.CommitStatusTimeout = time.Minute
	}
}

// Validate reports the first missing setting.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validateErrors validator.ValidationErrors
		if errors.As(err, &validateErrors) && len(validateErrors) > 0 {
			return fmt.Errorf("gateway config: %s is required", validateErrors[0].Field())
		}
		return err
	}
	return nil
}

// Connection is an open gateway connection bound to one channel and chaincode.
type Connection struct {
	conn          *grpc.ClientConn
	gw            *client.Gateway
	network       *client.Network
	contract      *client.Contract
	chaincodeName string
	address       string
}

// Connect loads the client identity and opens a TLS gRPC connection to the peer.
func Connect(cfg Config) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	certPEM, err := os.ReadFile(cfg.CertPath)
	if err != nil {
		return nil, fmt.Errorf("reading client certificate: %w", err)
	}
	id, err := newIdentity(cfg.MSPID, certPEM)
	if err != nil {
		return nil, err
	}
	address, err := identity.AddressFromPEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("deriving client address: %w", err)
	}
	sign, err := newSign(cfg.KeyPath)
	if err != nil {
		return nil, err
	}

	conn, err := newGrpcConnection(cfg.TLSCertPath, cfg.PeerEndpoint, cfg.GatewayPeer)
	if err != nil {
		return nil, err
	}

	gw, err := client.Connect(
		id,
		client.WithSign(sign),
		client.WithClientConnection(conn),
		client.WithEvaluateTimeout(cfg.EvaluateTimeout),
		client.WithEndorseTimeout(cfg.EndorseTimeout),
		client.WithSubmitTimeout(cfg.SubmitTimeout),
		client.WithCommitStatusTimeout(cfg.CommitStatusTimeout),
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to gateway: %w", err)
	}

	network := gw.GetNetwork(cfg.ChannelName)
	logger.Infof("Connected to %s as %s (%s), channel %s, chaincode %s", cfg.PeerEndpoint, address, cfg.MSPID, cfg.ChannelName, cfg.ChaincodeName)
	return &Connection{
		conn:          conn,
		gw:            gw,
		network:       network,
		contract:      network.GetContract(cfg.ChaincodeName),
		chaincodeName: cfg.ChaincodeName,
		address:       address,
	}, nil
}

// Contract returns the chaincode handle.
func (c *Connection) Contract() *client.Contract {
	return c.contract
}

// Address is the registry address derived from the client certificate.
func (c *Connection) Address() string {
	return c.address
}

// Events streams the chaincode's events until ctx is done.
func (c *Connection) Events(ctx context.Context) (<-chan *client.ChaincodeEvent, error) {
	events, err := c.network.ChaincodeEvents(ctx, c.chaincodeName)
	if err != nil {
		return nil, fmt.Errorf("subscribing to chaincode events: %w", err)
	}
	return events, nil
}

// Close releases the gateway and the gRPC connection.
func (c *Connection) Close() error {
	gwErr := c.gw.Close()
	connErr := c.conn.Close()
	return errors.Join(gwErr, connErr)
}

func newIdentity(mspID string, certPEM []byte) (*fabid.X509Identity, error) {
	cert, err := fabid.CertificateFromPEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing client certificate: %w", err)
	}
	id, err := fabid.NewX509Identity(mspID, cert)
	if err != nil {
		return nil, fmt.Errorf("creating client identity: %w", err)
	}
	return id, nil
}

func newSign(keyPath string) (fabid.Sign, error) {
	keyFile, err := resolveKeyFile(keyPath)
	if err != nil {
		return nil, err
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	key, err := fabid.PrivateKeyFromPEM(keyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	sign, err := fabid.NewPrivateKeySign(key)
	if err != nil {
		return nil, fmt.Errorf("creating signer: %w", err)
	}
	return sign, nil
}

// resolveKeyFile accepts a key file or an MSP keystore directory, in which
// case the first regular file is used.
func resolveKeyFile(keyPath string) (string, error) {
	info, err := os.Stat(keyPath)
	if err != nil {
		return "", fmt.Errorf("private key path: %w", err)
	}
	if !info.IsDir() {
		return keyPath, nil
	}
	entries, err := os.ReadDir(keyPath)
	if err != nil {
		return "", fmt.Errorf("reading keystore: %w", err)
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			return filepath.Join(keyPath, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no private key found in keystore %s", keyPath)
}

func newGrpcConnection(tlsCertPath, peerEndpoint, gatewayPeer string) (*grpc.ClientConn, error) {
	certPEM, err := os.ReadFile(tlsCertPath)
	if err != nil {
		return nil, fmt.Errorf("reading peer TLS certificate: %w", err)
	}
	cert, err := fabid.CertificateFromPEM(certPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing peer TLS certificate: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(cert)

	conn, err := grpc.NewClient(peerEndpoint, grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(pool, gatewayPeer)))
	if err != nil {
		return nil, fmt.Errorf("creating gRPC connection to %s: %w", peerEndpoint, err)
	}
	return conn, nil
}
