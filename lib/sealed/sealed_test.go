// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"strings"
	"testing"
	"time"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/clock"
	"github.com/soloking1412/email-recovery/lib/guardian"
	"github.com/soloking1412/email-recovery/lib/secret"
)

func testAddress(b byte) addr.Address {
	raw := make([]byte, addr.Length)
	raw[addr.Length-1] = b
	a, err := addr.FromBytes(raw)
	if err != nil {
		panic(err)
	}
	return a
}

var (
	account = testAddress(0xA0)
	alice   = testAddress(0x01)
	bob     = testAddress(0x02)
	carol   = testAddress(0x03)
)

var exportTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

// populatedRegistry builds a registry with a three-guardian set in
// mixed lifecycle states: alice requested, bob accepted, carol revoked.
func populatedRegistry(t *testing.T) *guardian.Registry {
	t.Helper()

	registry := guardian.NewRegistry(guardian.NewMemoryStore(),
		guardian.WithClock(clock.Fake(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))))
	if _, _, err := registry.SetupGuardians(account, []addr.Address{alice, bob, carol}, []uint64{1, 2, 3}, 2); err != nil {
		t.Fatalf("SetupGuardians: %v", err)
	}
	if err := registry.AcceptGuardian(account, bob); err != nil {
		t.Fatalf("AcceptGuardian: %v", err)
	}
	if err := registry.RevokeGuardian(account, carol); err != nil {
		t.Fatalf("RevokeGuardian: %v", err)
	}
	return registry
}

func testKeypair(t *testing.T) *Keypair {
	t.Helper()

	keypair, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	t.Cleanup(func() { keypair.Close() })
	return keypair
}

func sameBundle(t *testing.T, got, want Bundle) {
	t.Helper()

	if got.Account != want.Account {
		t.Errorf("Account = %s, want %s", got.Account, want.Account)
	}
	if got.Threshold != want.Threshold {
		t.Errorf("Threshold = %d, want %d", got.Threshold, want.Threshold)
	}
	if !got.ExportedAt.Equal(want.ExportedAt) {
		t.Errorf("ExportedAt = %v, want %v", got.ExportedAt, want.ExportedAt)
	}
	if len(got.Guardians) != len(want.Guardians) {
		t.Fatalf("Guardians length = %d, want %d", len(got.Guardians), len(want.Guardians))
	}
	for i := range want.Guardians {
		if got.Guardians[i] != want.Guardians[i] {
			t.Errorf("Guardians[%d] = %+v, want %+v", i, got.Guardians[i], want.Guardians[i])
		}
	}
}

func TestGenerateKeypair(t *testing.T) {
	keypair := testKeypair(t)

	if !strings.HasPrefix(keypair.PublicKey, "age1") {
		t.Errorf("public key %q lacks age1 prefix", keypair.PublicKey)
	}
	if err := ParsePublicKey(keypair.PublicKey); err != nil {
		t.Errorf("ParsePublicKey: %v", err)
	}
	if err := ParsePrivateKey(keypair.PrivateKey); err != nil {
		t.Errorf("ParsePrivateKey: %v", err)
	}

	other := testKeypair(t)
	if other.PublicKey == keypair.PublicKey {
		t.Error("two generated keypairs share a public key")
	}
}

func TestSnapshotCapturesLifecycleStates(t *testing.T) {
	registry := populatedRegistry(t)

	bundle, err := Snapshot(registry, account, exportTime)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	sameBundle(t, bundle, Bundle{
		Account: account,
		Guardians: []BundleGuardian{
			{Address: alice, Weight: 1, Status: guardian.StatusRequested},
			{Address: bob, Weight: 2, Status: guardian.StatusAccepted},
			{Address: carol, Weight: 3, Status: guardian.StatusRevoked},
		},
		Threshold:  2,
		ExportedAt: exportTime,
	})
}

func TestSnapshotRequiresSetup(t *testing.T) {
	registry := guardian.NewRegistry(guardian.NewMemoryStore())
	if _, err := Snapshot(registry, account, exportTime); err == nil {
		t.Fatal("Snapshot of an unconfigured account succeeded")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	registry := populatedRegistry(t)
	bundle, err := Snapshot(registry, account, exportTime)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	keypair := testKeypair(t)
	ciphertext, err := Seal(bundle, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	opened, err := Open(ciphertext, keypair.PrivateKey)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sameBundle(t, opened, bundle)
}

func TestSealToMultipleRecipients(t *testing.T) {
	registry := populatedRegistry(t)
	bundle, err := Snapshot(registry, account, exportTime)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	first := testKeypair(t)
	second := testKeypair(t)
	ciphertext, err := Seal(bundle, []string{first.PublicKey, second.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	for name, keypair := range map[string]*Keypair{"first": first, "second": second} {
		opened, err := Open(ciphertext, keypair.PrivateKey)
		if err != nil {
			t.Fatalf("Open with %s recipient: %v", name, err)
		}
		sameBundle(t, opened, bundle)
	}
}

func TestOpenWrongIdentityFails(t *testing.T) {
	registry := populatedRegistry(t)
	bundle, err := Snapshot(registry, account, exportTime)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	keypair := testKeypair(t)
	ciphertext, err := Seal(bundle, []string{keypair.PublicKey})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	stranger := testKeypair(t)
	if _, err := Open(ciphertext, stranger.PrivateKey); err == nil {
		t.Fatal("Open with the wrong identity succeeded")
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	keypair := testKeypair(t)
	if _, err := Open([]byte("not an age file"), keypair.PrivateKey); err == nil {
		t.Fatal("Open of garbage ciphertext succeeded")
	}
}

func TestOpenRejectsInvalidIdentity(t *testing.T) {
	badKey, err := secret.NewFromBytes([]byte("not-an-age-key"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer badKey.Close()

	if _, err := Open([]byte{}, badKey); err == nil {
		t.Fatal("Open with an invalid identity succeeded")
	}
}

func TestSealRequiresRecipient(t *testing.T) {
	registry := populatedRegistry(t)
	bundle, err := Snapshot(registry, account, exportTime)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if _, err := Seal(bundle, nil); err == nil {
		t.Fatal("Seal with no recipients succeeded")
	}
	if _, err := Seal(bundle, []string{"age1notakey"}); err == nil {
		t.Fatal("Seal with a malformed recipient succeeded")
	}
}

func TestReplayRestoresStateExactly(t *testing.T) {
	source := populatedRegistry(t)
	bundle, err := Snapshot(source, account, exportTime)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	target := guardian.NewRegistry(guardian.NewMemoryStore(),
		guardian.WithClock(clock.Fake(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))))
	if err := bundle.Replay(target); err != nil {
		t.Fatalf("Replay: %v", err)
	}

	wantConfig, wantEntries := source.Entries(account)
	gotConfig, gotEntries := target.Entries(account)
	if gotConfig != wantConfig {
		t.Errorf("restored config = %+v, want %+v", gotConfig, wantConfig)
	}
	if len(gotEntries) != len(wantEntries) {
		t.Fatalf("restored entries = %d, want %d", len(gotEntries), len(wantEntries))
	}
	for i := range wantEntries {
		if gotEntries[i] != wantEntries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, gotEntries[i], wantEntries[i])
		}
	}
}

func TestReplayRequiresEmptyAccount(t *testing.T) {
	source := populatedRegistry(t)
	bundle, err := Snapshot(source, account, exportTime)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	// Replaying onto the same registry: account already configured.
	if err := bundle.Replay(source); err == nil {
		t.Fatal("Replay onto a configured account succeeded")
	}

	// Records without a config also block the import.
	target := guardian.NewRegistry(guardian.NewMemoryStore())
	if _, _, err := target.SetupGuardians(account, []addr.Address{alice}, []uint64{1}, 1); err != nil {
		t.Fatalf("SetupGuardians: %v", err)
	}
	target.ResetConfig(account)
	if err := bundle.Replay(target); err == nil {
		t.Fatal("Replay onto leftover records succeeded")
	}
}

func TestBundleValidate(t *testing.T) {
	valid := Bundle{
		Account: account,
		Guardians: []BundleGuardian{
			{Address: alice, Weight: 1, Status: guardian.StatusRequested},
			{Address: bob, Weight: 2, Status: guardian.StatusAccepted},
		},
		Threshold:  3,
		ExportedAt: exportTime,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid bundle rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Bundle)
	}{
		{"zero account", func(b *Bundle) { b.Account = addr.Address{} }},
		{"no guardians", func(b *Bundle) { b.Guardians = nil }},
		{"zero threshold", func(b *Bundle) { b.Threshold = 0 }},
		{"threshold exceeds total", func(b *Bundle) { b.Threshold = 4 }},
		{"zero guardian address", func(b *Bundle) { b.Guardians[0].Address = addr.Address{} }},
		{"guardian is the account", func(b *Bundle) { b.Guardians[0].Address = account }},
		{"zero weight", func(b *Bundle) { b.Guardians[0].Weight = 0 }},
		{"duplicate guardian", func(b *Bundle) { b.Guardians[1].Address = alice }},
		{"status none", func(b *Bundle) { b.Guardians[0].Status = guardian.StatusNone }},
		{"status unknown", func(b *Bundle) { b.Guardians[0].Status = guardian.Status(9) }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bundle := valid
			bundle.Guardians = append([]BundleGuardian(nil), valid.Guardians...)
			test.mutate(&bundle)
			if err := bundle.Validate(); err == nil {
				t.Error("invalid bundle validated")
			}
		})
	}
}
