package contract

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/identity"
	"github.com/stretchr/testify/require"
)

// testIdentity implements cid.ClientIdentity with a freshly generated
// enrollment certificate.
type testIdentity struct {
	name    string
	mspID   string
	cert    *x509.Certificate
	address string
}

func newTestIdentity(t *testing.T, name, mspID string) *testIdentity {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: name, OrganizationalUnit: []string{"client"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	addr, err := identity.AddressFromCertificate(cert)
	require.NoError(t, err)

	return &testIdentity{name: name, mspID: mspID, cert: cert, address: addr}
}

func (ti *testIdentity) GetID() (string, error) {
	return "x509::CN=" + ti.name + ",OU=client::CN=ca." + ti.mspID, nil
}

func (ti *testIdentity) GetMSPID() (string, error) { return ti.mspID, nil }

func (ti *testIdentity) GetAttributeValue(string) (string, bool, error) { return "", false, nil }

func (ti *testIdentity) AssertAttributeValue(string, string) error {
	return errors.New("attribute not found")
}

func (ti *testIdentity) GetX509Certificate() (*x509.Certificate, error) { return ti.cert, nil }
