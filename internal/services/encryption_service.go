package services

import (
	"viktresan/internal/crypto"
	"viktresan/internal/models"
)

// EncryptionService wraps the field cipher with domain-specific helpers.
// Account emails are stored encrypted; the blind index backs email lookup
// (login and share-by-email resolution).
type EncryptionService struct {
	cipher *crypto.FieldCipher
}

func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	c, err := crypto.NewFieldCipher(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{cipher: c}, nil
}

// EncryptUser replaces the plaintext email with its ciphertext and fills the
// blind index column.
func (s *EncryptionService) EncryptUser(user *models.User) error {
	encrypted, err := s.cipher.Encrypt(user.Email)
	if err != nil {
		return err
	}
	user.EmailBlindIndex = s.cipher.BlindIndex(user.Email)
	user.Email = encrypted
	return nil
}

func (s *EncryptionService) DecryptUser(user *models.User) error {
	decrypted, err := s.cipher.Decrypt(user.Email)
	if err != nil {
		return err
	}
	user.Email = decrypted
	return nil
}

func (s *EncryptionService) DecryptEmail(ciphertext string) (string, error) {
	return s.cipher.Decrypt(ciphertext)
}

// EmailBlindIndex derives the lookup key for an email address.
func (s *EncryptionService) EmailBlindIndex(email string) string {
	return s.cipher.BlindIndex(email)
}
