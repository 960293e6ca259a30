package solana

import (
	"testing"

	sol "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProgramAddress(t *testing.T) {
	contract := MustParsePublicKey(usdcMint)
	seeds := [][]byte{[]byte("vote_count"), contract.Bytes()}

	pda, bump, err := FindProgramAddress(seeds, SystemProgramID)
	require.NoError(t, err)
	assert.False(t, sol.IsOnCurve(pda.Bytes()), "program address must be off curve")

	direct, err := sol.CreateProgramAddress(append(seeds, []byte{bump}), SystemProgramID)
	require.NoError(t, err)
	assert.Equal(t, pda, direct)

	other, _, err := FindProgramAddress([][]byte{[]byte("voted"), contract.Bytes()}, SystemProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, pda, other)
}

func TestNewTransaction_Ordering(t *testing.T) {
	payer := MustParsePublicKey("So11111111111111111111111111111111111111112")
	program := MustParsePublicKey(usdcMint)
	writable := PublicKey{5}
	readonly := PublicKey{6}

	ix := NewInstruction(program, []*AccountMeta{
		NewAccountMeta(readonly, false, false),
		NewAccountMeta(writable, true, false),
		NewAccountMeta(payer, true, true),
	}, []byte{1, 2})

	tx, err := NewTransaction(payer, []Instruction{ix}, Hash{7})
	require.NoError(t, err)

	msg := tx.Message
	assert.Equal(t, Hash{7}, msg.RecentBlockhash)
	assert.Equal(t, uint8(1), msg.Header.NumRequiredSignatures)
	assert.Equal(t, uint8(0), msg.Header.NumReadonlySignedAccounts)
	assert.Equal(t, uint8(2), msg.Header.NumReadonlyUnsignedAccounts, "readonly account and program")

	require.Len(t, msg.AccountKeys, 4)
	assert.Equal(t, payer, msg.AccountKeys[0])
	assert.Equal(t, writable, msg.AccountKeys[1])
}

func TestNewTransaction_NoPayer(t *testing.T) {
	ix := NewInstruction(SystemProgramID, nil, nil)
	_, err := NewTransaction(PublicKey{}, []Instruction{ix}, Hash{1})
	assert.ErrorIs(t, err, ErrNoFeePayer)
}

func TestTransaction_RequiresSignature(t *testing.T) {
	payer := PublicKey{1}
	ix := NewInstruction(MustParsePublicKey(usdcMint), []*AccountMeta{
		NewAccountMeta(payer, true, true),
	}, nil)

	tx, err := NewTransaction(payer, []Instruction{ix}, Hash{2})
	require.NoError(t, err)

	_, err = tx.MarshalBinary()
	assert.Error(t, err)

	tx.Signatures = []Signature{{9}}
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, byte(1), raw[0], "signature count prefix")
	assert.Equal(t, byte(9), raw[1])
}
