// Package crypto reads and issues X.509 license certificates.
package crypto

import (
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/kolabsys/phlesk/internal/licensing/domain"
)

// OIDNetscapeComment identifies the vendor comment extension (nsComment).
var OIDNetscapeComment = asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 13}

// ParseCertificate parses a PEM or DER encoded license certificate.
func ParseCertificate(keyBody string) (domain.Certificate, error) {
	der := []byte(keyBody)
	if block, _ := pem.Decode([]byte(strings.TrimSpace(keyBody))); block != nil {
		der = block.Bytes
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return domain.Certificate{}, fmt.Errorf("%w: %v", domain.ErrMalformedCertificate, err)
	}

	parsed := domain.Certificate{
		NotBefore: cert.NotBefore,
		NotAfter:  cert.NotAfter,
	}
	for _, ext := range cert.Extensions {
		if !ext.Id.Equal(OIDNetscapeComment) {
			continue
		}
		parsed.Comment = decodeComment(ext.Value)
		parsed.HasComment = true
		break
	}
	return parsed, nil
}

// decodeComment unwraps the IA5String holding the comment. Values that are
// not DER strings are used as is.
func decodeComment(value []byte) string {
	var comment string
	if rest, err := asn1.Unmarshal(value, &comment); err == nil && len(rest) == 0 {
		return comment
	}
	return string(value)
}
