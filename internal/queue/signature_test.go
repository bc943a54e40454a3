package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const callback = "https://app.example.com/api/worker"

func TestVerify_CurrentKey(t *testing.T) {
	body := []byte(`{"jobId":"j1"}`)
	v := NewVerifier("current", "")

	sig := Sign("current", callback, body)
	require.NoError(t, v.Verify(sig, callback, body))
}

func TestVerify_MissingSignature(t *testing.T) {
	v := NewVerifier("current", "")
	require.ErrorIs(t, v.Verify("", callback, []byte(`{}`)), ErrMissingSignature)
}

func TestVerify_AlteredBody(t *testing.T) {
	v := NewVerifier("current", "")
	sig := Sign("current", callback, []byte(`{"jobId":"j1"}`))

	err := v.Verify(sig, callback, []byte(`{"jobId":"j2"}`))
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerify_WrongKey(t *testing.T) {
	body := []byte(`{"jobId":"j1"}`)
	v := NewVerifier("current", "")

	sig := Sign("other", callback, body)
	require.ErrorIs(t, v.Verify(sig, callback, body), ErrBadSignature)
}

func TestVerify_NextKeyRotation(t *testing.T) {
	body := []byte(`{"jobId":"j1"}`)
	v := NewVerifier("current", "next")

	// A delivery signed with the next key is accepted while the
	// current key is still configured.
	sig := Sign("next", callback, body)
	require.NoError(t, v.Verify(sig, callback, body))

	// And current still works.
	sig = Sign("current", callback, body)
	require.NoError(t, v.Verify(sig, callback, body))
}

func TestVerify_URLBinding(t *testing.T) {
	body := []byte(`{"jobId":"j1"}`)
	v := NewVerifier("current", "")

	// A signature computed for a different endpoint must not replay here.
	sig := Sign("current", "https://victim.example.com/api/worker", body)
	require.ErrorIs(t, v.Verify(sig, callback, body), ErrBadSignature)
}
