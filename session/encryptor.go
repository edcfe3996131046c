package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"

	"github.com/ProtonMail/gopenpgp/v2/crypto"
)

var ErrSealedDataTooShort = errors.New("sealed data is shorter than its nonce")

// Encryptor seals data before it is written to disk.
type Encryptor interface {
	Encrypt([]byte) ([]byte, error)
	Decrypt([]byte) ([]byte, error)
}

type aesEncryptor struct {
	gcm cipher.AEAD
}

// NewAESEncryptor returns an AES-256-GCM encryptor keyed by the SHA-256 of the passphrase.
// The random nonce is stored in front of each sealed blob.
func NewAESEncryptor(passphrase []byte) (Encryptor, error) {
	aes, err := aes.NewCipher(hash(passphrase))
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(aes)
	if err != nil {
		return nil, err
	}

	return &aesEncryptor{gcm: gcm}, nil
}

func (e *aesEncryptor) Encrypt(b []byte) ([]byte, error) {
	nonce := make([]byte, e.gcm.NonceSize())

	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return e.gcm.Seal(nonce, nonce, b, nil), nil
}

func (e *aesEncryptor) Decrypt(enc []byte) ([]byte, error) {
	if len(enc) < e.gcm.NonceSize() {
		return nil, ErrSealedDataTooShort
	}

	return e.gcm.Open(nil, enc[:e.gcm.NonceSize()], enc[e.gcm.NonceSize():], nil)
}

type pgpEncryptor struct {
	password []byte
}

// NewPGPEncryptor returns an encryptor producing OpenPGP messages symmetrically encrypted with the password.
func NewPGPEncryptor(password []byte) Encryptor {
	return &pgpEncryptor{password: password}
}

func (e *pgpEncryptor) Encrypt(b []byte) ([]byte, error) {
	msg, err := crypto.EncryptMessageWithPassword(crypto.NewPlainMessage(b), e.password)
	if err != nil {
		return nil, err
	}

	return msg.GetBinary(), nil
}

func (e *pgpEncryptor) Decrypt(enc []byte) ([]byte, error) {
	msg, err := crypto.DecryptMessageWithPassword(crypto.NewPGPMessage(enc), e.password)
	if err != nil {
		return nil, err
	}

	return msg.GetBinary(), nil
}
