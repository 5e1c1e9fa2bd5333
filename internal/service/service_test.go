// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-cipherlab.
//
// go-cipherlab is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
	"github.com/jeremyhahn/go-cipherlab/pkg/storage"
	"github.com/jeremyhahn/go-cipherlab/pkg/storage/memory"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

func testDefaults() Defaults {
	return Defaults{
		AffineA:    5,
		AffineB:    8,
		HillMatrix: [][]int64{{6, 24, 1}, {13, 16, 10}, {20, 17, 15}},
	}
}

func newService(t *testing.T, store *storage.ResultStore) *Service {
	t.Helper()
	return New(Options{
		Engine:   engine.New(engine.DefaultLimits()),
		Store:    store,
		Defaults: testDefaults(),
	})
}

func intPtr(v int) *int { return &v }

func TestProcessInlineText(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	res, err := svc.Process(ctx, &Job{Cipher: "vigenere", Operation: "encrypt", Key: "KEY", Text: "HELLO"})
	require.NoError(t, err)
	assert.Equal(t, "rijvs", res.Text)
	assert.Equal(t, []byte("rijvs"), res.Data)
	assert.Equal(t, "encrypt_result.txt", res.Filename)
	assert.False(t, res.IsFile)
	assert.Empty(t, res.ResultID)

	res, err = svc.Process(ctx, &Job{Cipher: "vigenere", Operation: "decrypt", Key: "KEY", Text: "rijvs"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "decrypt_result.txt", res.Filename)
}

func TestProcessDefaultsOperationToEncrypt(t *testing.T) {
	svc := newService(t, nil)
	res, err := svc.Process(context.Background(), &Job{Cipher: "vigenere", Key: "KEY", Text: "HELLO"})
	require.NoError(t, err)
	assert.Equal(t, types.OperationEncrypt, res.Operation)
	assert.Equal(t, "rijvs", res.Text)
}

func TestProcessAffineDefaultsAndOverrides(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	res, err := svc.Process(ctx, &Job{Cipher: "affine", Text: "HELLO"})
	require.NoError(t, err)
	assert.Equal(t, "rclla", res.Text)

	_, err = svc.Process(ctx, &Job{Cipher: "affine", Text: "HELLO", AffineA: intPtr(2)})
	assert.True(t, types.IsKind(err, types.KindNonCoprimeParameter))
}

func TestProcessHillDefaultMatrix(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	enc, err := svc.Process(ctx, &Job{Cipher: "hill", Text: "attackatdawn"})
	require.NoError(t, err)

	dec, err := svc.Process(ctx, &Job{Cipher: "hill", Operation: "decrypt", Text: enc.Text})
	require.NoError(t, err)
	assert.Equal(t, "attackatdawn", dec.Text)

	// A singular matrix still encrypts; only decryption needs the inverse.
	singular := [][]int64{{2, 4}, {1, 2}}
	_, err = svc.Process(ctx, &Job{Cipher: "hill", Text: "abc", HillMatrix: singular})
	require.NoError(t, err)

	_, err = svc.Process(ctx, &Job{Cipher: "hill", Operation: "decrypt", Text: "abcd", HillMatrix: singular})
	assert.True(t, types.IsKind(err, types.KindSingularMatrix))
}

func TestProcessInlineByteCipher(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	enc, err := svc.Process(ctx, &Job{Cipher: "super", Key: "first", Key2: "second", Text: "binary safe"})
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(enc.Data), enc.Text)

	// Pasted ciphertext may be wrapped across lines.
	wrapped := enc.Text[:4] + "\n  " + enc.Text[4:]
	dec, err := svc.Process(ctx, &Job{Cipher: "super", Operation: "decrypt", Key: "first", Key2: "second", Text: wrapped})
	require.NoError(t, err)
	assert.Equal(t, "binary safe", dec.Text)
}

func TestProcessInlineDecryptBinaryPreview(t *testing.T) {
	svc := newService(t, nil)

	dec, err := svc.Process(context.Background(), &Job{
		Cipher:    "extended_vigenere",
		Operation: "decrypt",
		Key:       "\x01",
		Text:      base64.StdEncoding.EncodeToString([]byte{0x00}),
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff}, dec.Data)
	assert.Equal(t, BinaryDataText, dec.Text)
}

func TestProcessBinaryFileRoundTrip(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()
	data := []byte{0x00, 0x01, 0xfe, 0xff, 'P', 'D', 'F'}

	for _, cipher := range []string{"extended_vigenere", "super"} {
		t.Run(cipher, func(t *testing.T) {
			enc, err := svc.Process(ctx, &Job{
				Cipher: cipher, Key: "k1", Key2: "k2",
				File: &Upload{Name: "report.PDF", Data: data},
			})
			require.NoError(t, err)
			assert.True(t, enc.IsFile)
			assert.Equal(t, "report_encrypted.dat", enc.Filename)
			assert.Equal(t, FileProcessedText, enc.Text)

			dec, err := svc.Process(ctx, &Job{
				Cipher: cipher, Operation: "decrypt", Key: "k1", Key2: "k2",
				File: &Upload{Name: enc.Filename, Data: enc.Data},
			})
			require.NoError(t, err)
			assert.Equal(t, data, dec.Data)
			assert.Equal(t, "report_decrypted.pdf", dec.Filename)
			assert.Equal(t, FileProcessedText, dec.Text)
		})
	}
}

func TestProcessBinaryFileWithoutHeader(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	// Ciphertext produced outside the service has no filename header.
	raw, err := svc.Engine().Run(&engine.Request{
		Variant:   types.VariantExtendedVigenere,
		Operation: types.OperationEncrypt,
		Payload:   []byte("plain"),
		Key:       "k",
	})
	require.NoError(t, err)

	dec, err := svc.Process(ctx, &Job{
		Cipher: "extended_vigenere", Operation: "decrypt", Key: "k",
		File: &Upload{Name: "blob.dat", Data: raw},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("plain"), dec.Data)
	assert.Equal(t, "blob_decrypted.dat", dec.Filename)
}

func TestProcessTextFileWithByteCipher(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	enc, err := svc.Process(ctx, &Job{Cipher: "extended_vigenere", Key: "k", File: &Upload{Name: "notes.txt", Data: []byte("hello")}})
	require.NoError(t, err)

	dec, err := svc.Process(ctx, &Job{Cipher: "extended_vigenere", Operation: "decrypt", Key: "k", File: &Upload{Name: enc.Filename, Data: enc.Data}})
	require.NoError(t, err)
	assert.Equal(t, "notes_decrypted.txt", dec.Filename)
	assert.Equal(t, "hello", dec.Text)
}

func TestProcessLetterCipherFiles(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	enc, err := svc.Process(ctx, &Job{Cipher: "vigenere", Key: "KEY", File: &Upload{Name: "dir/Letter.TXT", Data: []byte("HELLO")}})
	require.NoError(t, err)
	assert.Equal(t, "Letter_encrypted.txt", enc.Filename)
	assert.Equal(t, "rijvs", enc.Text)

	dec, err := svc.Process(ctx, &Job{Cipher: "vigenere", Operation: "decrypt", Key: "KEY", File: &Upload{Name: enc.Filename, Data: enc.Data}})
	require.NoError(t, err)
	assert.Equal(t, "Letter_encrypted_decrypted.txt", dec.Filename)
	assert.Equal(t, "hello", dec.Text)

	_, err = svc.Process(ctx, &Job{Cipher: "playfair", Key: "KEY", File: &Upload{Name: "image.png", Data: []byte{0x89}}})
	assert.True(t, types.IsKind(err, types.KindUnsupported))
}

func TestProcessLatin1TextFile(t *testing.T) {
	svc := newService(t, nil)
	// "café" in Latin-1; é is not a letter and is dropped.
	res, err := svc.Process(context.Background(), &Job{Cipher: "vigenere", Key: "A", File: &Upload{Name: "a.txt", Data: []byte{'c', 'a', 'f', 0xe9}}})
	require.NoError(t, err)
	assert.Equal(t, "caf", res.Text)
}

func TestProcessErrors(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		job  *Job
		kind types.Kind
	}{
		{"nil job", nil, types.KindMalformedInput},
		{"unknown cipher", &Job{Cipher: "enigma", Key: "k", Text: "x"}, types.KindUnsupported},
		{"unknown operation", &Job{Cipher: "vigenere", Operation: "rot", Key: "k", Text: "x"}, types.KindUnsupported},
		{"empty key", &Job{Cipher: "vigenere", Text: "x"}, types.KindEmptyKey},
		{"super missing key2", &Job{Cipher: "super", Key: "k", Text: "x"}, types.KindEmptyKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Process(ctx, tt.job)
			require.Error(t, err)
			assert.Equal(t, tt.kind, types.KindOf(err))
		})
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := svc.Process(cancelled, &Job{Cipher: "vigenere", Key: "k", Text: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessStoresResults(t *testing.T) {
	store := storage.NewResultStore(memory.New(), "memory", 0)
	svc := newService(t, store)
	ctx := context.Background()

	res, err := svc.Process(ctx, &Job{Cipher: "vigenere", Key: "KEY", Text: "HELLO"})
	require.NoError(t, err)
	require.NotEmpty(t, res.ResultID)

	data, meta, err := svc.Result(ctx, res.ResultID)
	require.NoError(t, err)
	assert.Equal(t, res.Data, data)
	assert.Equal(t, "encrypt_result.txt", meta.Filename)
	assert.Equal(t, "vigenere", meta.Variant)
}

func TestProcessStoreFailureDoesNotFailJob(t *testing.T) {
	store := storage.NewResultStore(memory.New(), "memory", 2)
	svc := newService(t, store)

	res, err := svc.Process(context.Background(), &Job{Cipher: "vigenere", Key: "KEY", Text: "HELLO"})
	require.NoError(t, err)
	assert.Empty(t, res.ResultID)
}

func TestResultStoreDisabled(t *testing.T) {
	svc := newService(t, nil)
	_, _, err := svc.Result(context.Background(), "bafkreiabc")
	assert.ErrorIs(t, err, ErrStoreDisabled)
}

func TestCiphersAndSelfTest(t *testing.T) {
	svc := New(Options{})
	assert.Len(t, svc.Ciphers(), len(types.Variants))
	assert.NoError(t, svc.SelfTest())
}

func TestFileHelpers(t *testing.T) {
	assert.Equal(t, "txt", FileExt("a.TXT"))
	assert.Equal(t, "bin", FileExt("Makefile"))
	assert.Equal(t, "bin", FileExt(".env"))
	assert.Equal(t, "gz", FileExt("archive.tar.gz"))

	assert.Equal(t, "report.pdf", baseName(`C:\Users\me\report.pdf`))
	assert.Equal(t, "report.pdf", baseName("../../report.pdf"))

	assert.Equal(t, "archive.tar_encrypted.dat", OutputFilename("archive.tar.gz", "gz", types.OperationEncrypt, false))
	assert.Equal(t, "x_decrypted.bin", OutputFilename("x", "", types.OperationDecrypt, false))
	assert.Equal(t, ".env_decrypted.txt", OutputFilename(".env", "bin", types.OperationDecrypt, true))

	assert.Equal(t, []byte("not base64!"), DecodeInlineCiphertext("not base64!"))
	assert.Equal(t, []byte{0xff}, DecodeInlineCiphertext(" /w== "))
	assert.Equal(t, "/w==", PreviewText([]byte{0xff}))
	assert.Equal(t, "é", string(DecodeText([]byte{0xe9})))
}
