// Package identity derives registry addresses from X.509 identities.
//
// A Fabric client is known to the registry by a 160-bit address computed
// from the public key in its enrollment certificate: Keccak-256 over the
// uncompressed EC point (without the 0x04 prefix) or the raw Ed25519 key,
// keeping the last 20 bytes. The derivation is the same one Ethereum uses
// for secp256k1 keys, applied to whatever curve the MSP issued.
package identity

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/HamzaTakiX/Blockchain-project/model"
	"golang.org/x/crypto/sha3"
)

// AddressFromPublicKey returns the canonical lower-case address of pub.
func AddressFromPublicKey(pub crypto.PublicKey) (string, error) {
	var raw []byte
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		ek, err := k.ECDH()
		if err != nil {
			return "", fmt.Errorf("unsupported EC public key: %w", err)
		}
		raw = ek.Bytes()[1:]
	case ed25519.PublicKey:
		raw = k
	default:
		return "", fmt.Errorf("unsupported public key type %T", pub)
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(raw)
	return model.AddressFromBytes(h.Sum(nil)), nil
}

// AddressFromCertificate derives the address of the certificate's subject key.
func AddressFromCertificate(cert *x509.Certificate) (string, error) {
	if cert == nil {
		return "", errors.New("certificate is nil")
	}
	return AddressFromPublicKey(cert.PublicKey)
}

// AddressFromPEM parses a PEM encoded certificate and derives its address.
func AddressFromPEM(certPEM []byte) (string, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return "", errors.New("no PEM block found in certificate data")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse certificate: %w", err)
	}
	return AddressFromCertificate(cert)
}
