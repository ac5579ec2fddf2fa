// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/soloking1412/email-recovery/lib/codec"
	"github.com/soloking1412/email-recovery/lib/secret"
)

// Keypair holds an age x25519 keypair. The private key lives in a
// secret.Buffer (mmap-backed, locked against swap, excluded from core
// dumps); the public key is a plain age1... string, safe to publish.
//
// The caller must Close the keypair when done.
type Keypair struct {
	// PrivateKey is the AGE-SECRET-KEY-1... identity. Never log it,
	// write it to disk unencrypted, or pass it on a command line.
	PrivateKey *secret.Buffer

	// PublicKey is the matching age1... recipient.
	PublicKey string
}

// Close releases the private key memory. Idempotent.
func (k *Keypair) Close() error {
	if k.PrivateKey != nil {
		return k.PrivateKey.Close()
	}
	return nil
}

// GenerateKeypair generates a new age x25519 keypair with the private
// key in protected memory. The caller must Close the result.
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("sealed: generating keypair: %w", err)
	}

	// The identity's own string is heap memory the GC will reclaim;
	// the protected buffer is the copy that outlives this call.
	privateKey, err := secret.NewFromBytes([]byte(identity.String()))
	if err != nil {
		return nil, fmt.Errorf("sealed: protecting private key: %w", err)
	}

	return &Keypair{
		PrivateKey: privateKey,
		PublicKey:  identity.Recipient().String(),
	}, nil
}

// ParsePublicKey validates an age public key string. Use it on
// recipient flags before sealing anything to them.
func ParsePublicKey(publicKey string) error {
	if _, err := age.ParseX25519Recipient(publicKey); err != nil {
		return fmt.Errorf("sealed: invalid age public key: %w", err)
	}
	return nil
}

// ParsePrivateKey validates an age private key held in a
// secret.Buffer.
func ParsePrivateKey(privateKey *secret.Buffer) error {
	if _, err := age.ParseX25519Identity(privateKey.String()); err != nil {
		return fmt.Errorf("sealed: invalid age private key: %w", err)
	}
	return nil
}

// Seal validates the bundle, encodes it with deterministic CBOR, and
// encrypts it to the given age recipients. At least one recipient is
// required. The result is raw age ciphertext, ready to write to a
// backup file.
func Seal(bundle Bundle, recipientKeys []string) ([]byte, error) {
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	if len(recipientKeys) == 0 {
		return nil, fmt.Errorf("sealed: at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("sealed: parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	payload, err := codec.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("sealed: encoding bundle: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return nil, fmt.Errorf("sealed: creating encryptor: %w", err)
	}
	if _, err := writer.Write(payload); err != nil {
		return nil, fmt.Errorf("sealed: writing bundle payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("sealed: finalizing encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

// Open decrypts a sealed bundle with the given identity key and
// validates the decoded result. The identity is borrowed, not closed.
func Open(ciphertext []byte, privateKey *secret.Buffer) (Bundle, error) {
	// age.ParseX25519Identity wants a string; the heap copy is brief
	// and call-scoped.
	identity, err := age.ParseX25519Identity(privateKey.String())
	if err != nil {
		return Bundle{}, fmt.Errorf("sealed: parsing private key: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return Bundle{}, fmt.Errorf("sealed: decrypting bundle: %w", err)
	}
	payload, err := io.ReadAll(reader)
	if err != nil {
		return Bundle{}, fmt.Errorf("sealed: reading bundle payload: %w", err)
	}

	var bundle Bundle
	if err := codec.Unmarshal(payload, &bundle); err != nil {
		return Bundle{}, fmt.Errorf("sealed: decoding bundle: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return Bundle{}, err
	}
	return bundle, nil
}
