package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

// LoadKey decodes a hex v4.local key. An empty string yields a fresh random
// key and ephemeral reports true.
func LoadKey(hexKey string) (key paseto.V4SymmetricKey, ephemeral bool, err error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return paseto.NewV4SymmetricKey(), true, nil
	}
	key, err = paseto.V4SymmetricKeyFromHex(hexKey)
	if err != nil {
		return paseto.V4SymmetricKey{}, false, ErrConfig{Msg: "invalid symmetric key hex: " + err.Error()}
	}
	return key, false, nil
}

// NewKeyHex returns a random key suitable for admin.token_key.
func NewKeyHex() string {
	return paseto.NewV4SymmetricKey().ExportHex()
}
