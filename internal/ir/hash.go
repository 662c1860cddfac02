package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DomainQuery prefixes query hashes. Version suffix enables future
// algorithm migration.
const DomainQuery = "temporalq/query/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// QueryHash identifies a rendered command by its SQL text and the ordered
// names of its bindings. Parameter values are not part of the hash.
func QueryHash(sql string, bindings []string) string {
	var b strings.Builder
	b.WriteString(sql)
	for _, name := range bindings {
		b.WriteByte(0x00)
		b.WriteString(name)
	}
	return hashWithDomain(DomainQuery, []byte(b.String()))
}
