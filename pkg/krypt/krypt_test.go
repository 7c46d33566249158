package krypt_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gm8ext/gex/pkg/krypt"
)

// seekableBuffer adapts a byte slice into an io.ReadWriteSeeker for testing
// the Stream wrapper without touching the filesystem.
type seekableBuffer struct {
	data []byte
	pos  int64
}

func (b *seekableBuffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *seekableBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = b.pos + offset
	case io.SeekEnd:
		target = int64(len(b.data)) + offset
	}
	b.pos = target
	return target, nil
}

func encodeDecodeRoundTrip(t *testing.T, seed int32, additive bool, plaintext []byte) []byte {
	t.Helper()

	var encoded bytes.Buffer
	encState := krypt.NewState(krypt.Encode)
	encState.InitState(seed, additive)
	encBuf := append([]byte(nil), plaintext...)
	encState.Transform(encBuf)
	encoded.Write(encBuf)

	decState := krypt.NewState(krypt.Decode)
	decState.InitState(seed, additive)
	decBuf := append([]byte(nil), encoded.Bytes()...)
	decState.Transform(decBuf)
	return decBuf
}

func TestCipherInverse(t *testing.T) {
	seeds := []int32{248, 3328, 28927}
	plaintext := []byte("the quick brown fox jumps over the lazy dog 0123456789")

	for _, seed := range seeds {
		for _, additive := range []bool{false, true} {
			got := encodeDecodeRoundTrip(t, seed, additive, plaintext)
			require.Equal(t, plaintext, got, "seed=%d additive=%v", seed, additive)
		}
	}
}

func TestIdentityPassThrough(t *testing.T) {
	seeds := []int32{248, 498, 748, -2}
	plaintext := []byte{10, 20, 30, 40}

	for _, seed := range seeds {
		require.True(t, krypt.IsIdenticalSeed(seed, false))

		st := krypt.NewState(krypt.Encode)
		identical := st.InitState(seed, false)
		require.True(t, identical)

		buf := append([]byte(nil), plaintext...)
		st.Transform(buf)
		require.Equal(t, plaintext, buf)
	}
}

func TestFirstByteExemption(t *testing.T) {
	plaintext := []byte{10, 20, 30, 40}

	for _, seed := range []int32{3328, 28927} {
		for _, additive := range []bool{false, true} {
			st := krypt.NewState(krypt.Encode)
			st.InitState(seed, additive)
			buf := append([]byte(nil), plaintext...)
			st.Transform(buf)
			require.Equal(t, plaintext[0], buf[0], "seed=%d additive=%v", seed, additive)
		}
	}
}

func TestTableConstructionDeterminismAndInverse(t *testing.T) {
	seed := int32(3328)

	enc1 := krypt.BuildEncodeTable(seed)
	enc2 := krypt.BuildEncodeTable(seed)
	require.Equal(t, enc1, enc2)

	seen := map[byte]bool{}
	for _, v := range enc1 {
		require.False(t, seen[v], "table is not a permutation")
		seen[v] = true
	}

	dec := krypt.InvertTable(enc1)
	for i := 0; i < 256; i++ {
		require.Equal(t, byte(i), dec[enc1[i]])
		require.Equal(t, byte(i), enc1[dec[i]])
	}
}

func TestIdentityEncodeExample(t *testing.T) {
	// Scenario (b): encrypting [10,20,30,40] with seed 248, additive=false
	// is a no-op.
	plaintext := []byte{10, 20, 30, 40}
	st := krypt.NewState(krypt.Encode)
	st.InitState(248, false)
	buf := append([]byte(nil), plaintext...)
	st.Transform(buf)
	require.Equal(t, plaintext, buf)
}

func TestNonIdentityEncodeFirstByte(t *testing.T) {
	// Scenario (c): seed 3328, additive=false, fresh stream: first byte
	// passes through, remaining bytes are substituted via the constructed
	// table.
	plaintext := []byte{10, 20, 30, 40}
	table := krypt.BuildEncodeTable(3328)

	st := krypt.NewState(krypt.Encode)
	st.InitState(3328, false)
	buf := append([]byte(nil), plaintext...)
	st.Transform(buf)

	require.Equal(t, byte(10), buf[0])
	require.Equal(t, table[20], buf[1])
	require.Equal(t, table[30], buf[2])
	require.Equal(t, table[40], buf[3])
}

func TestStreamSeekRejectsNegativeAdditiveCounter(t *testing.T) {
	inner := &seekableBuffer{}
	s := krypt.New(inner, krypt.Encode, nil)
	s.InitState(3328, true)

	_, err := s.Seek(-1, io.SeekCurrent)
	require.ErrorIs(t, err, krypt.ErrInvalidSeek)
}

func TestStreamRoundTripThroughReadWrite(t *testing.T) {
	inner := &seekableBuffer{}
	enc := krypt.New(inner, krypt.Encode, nil)
	enc.InitState(28927, true)

	plaintext := []byte("payload bytes flowing through the stream wrapper")
	n, err := enc.Write(plaintext)
	require.NoError(t, err)
	require.Equal(t, len(plaintext), n)

	inner.pos = 0
	dec := krypt.New(inner, krypt.Decode, nil)
	dec.InitState(28927, true)

	out := make([]byte, len(plaintext))
	_, err = io.ReadFull(dec, out)
	require.NoError(t, err)
	require.Equal(t, plaintext, out)
}

func TestEnsureRejectsNonIdenticalHandoff(t *testing.T) {
	inner := &seekableBuffer{}
	s := krypt.New(inner, krypt.Encode, nil)
	s.InitState(3328, false)

	_, err := krypt.Ensure(s, inner, krypt.Encode, nil)
	require.ErrorIs(t, err, krypt.ErrCipherInvariantViolation)
}

func TestEnsureReusesIdenticalStream(t *testing.T) {
	inner := &seekableBuffer{}
	s := krypt.New(inner, krypt.Encode, nil)

	got, err := krypt.Ensure(s, inner, krypt.Encode, nil)
	require.NoError(t, err)
	require.Same(t, s, got)
}

func TestEnsureConstructsFreshWhenNil(t *testing.T) {
	inner := &seekableBuffer{}
	got, err := krypt.Ensure(nil, inner, krypt.Encode, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.IsIdenticalCrypto())
}
