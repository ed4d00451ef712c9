package models

import (
	"encoding/json"
	"fmt"

	"github.com/spknetwork/oratr-vault/internal/common"
)

const (
	// ExportBundleType is the marker identifying vault export bundles.
	ExportBundleType = "oratr/vault-export"

	// ExportBundleVersion is the current bundle format version.
	ExportBundleVersion = 1
)

// ExportBundle is the unit exchanged between installations: one or more
// accounts re-encrypted under an independent export passphrase. The
// Encrypted field holds the envelope in its serialized text form, so the
// whole bundle survives copy-paste byte-for-byte.
type ExportBundle struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Encrypted string `json:"encrypted"`
}

// Validate checks the type marker and version. Failures map to the generic
// import error.
func (b *ExportBundle) Validate() error {
	if b.Type != ExportBundleType {
		return fmt.Errorf("%w: bad bundle type", common.ErrInvalidImport)
	}
	if b.Version != ExportBundleVersion {
		return fmt.Errorf("%w: unsupported bundle version", common.ErrInvalidImport)
	}
	return nil
}

// Encode serializes the bundle to its wire text form.
func (b *ExportBundle) Encode() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseExportBundle parses the wire text form. Unparseable input maps to
// the generic import error.
func ParseExportBundle(text string) (*ExportBundle, error) {
	var b ExportBundle
	if err := json.Unmarshal([]byte(text), &b); err != nil {
		return nil, fmt.Errorf("%w: not a bundle", common.ErrInvalidImport)
	}
	return &b, nil
}
