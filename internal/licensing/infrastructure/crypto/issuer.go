package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

// IssueRequest describes a self-signed license certificate.
type IssueRequest struct {
	Subject   string
	Users     int
	NotBefore time.Time
	NotAfter  time.Time
	// OmitComment leaves out the vendor comment extension.
	OmitComment bool
}

// Issue creates a self-signed PEM certificate carrying the seat count in
// the vendor comment extension.
func Issue(req IssueRequest) (string, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return "", fmt.Errorf("generate serial: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: req.Subject},
		NotBefore:    req.NotBefore,
		NotAfter:     req.NotAfter,
	}
	if !req.OmitComment {
		value, err := commentExtension(req.Users)
		if err != nil {
			return "", err
		}
		template.ExtraExtensions = []pkix.Extension{{Id: OIDNetscapeComment, Value: value}}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	if err != nil {
		return "", fmt.Errorf("create certificate: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})), nil
}

func commentExtension(users int) ([]byte, error) {
	payload, err := json.Marshal(map[string]int{"users": users})
	if err != nil {
		return nil, err
	}
	comment := base64.StdEncoding.EncodeToString(payload)
	return asn1.MarshalWithParams(comment, "ia5")
}
