package ethereum

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

var (
	testToken     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testRecipient = common.HexToAddress("0xAbc0000000000000000000000000000000000001")
)

func TestPackMint(t *testing.T) {
	burnID := bridge.BurnID{0x01, 0x02}
	amount, _ := new(big.Int).SetString("1000000000000000000", 10)

	data, err := PackMint(testRecipient, amount, burnID)
	require.NoError(t, err)
	assert.Equal(t, "0x1e458bee", hexutil.Encode(data[:4]))

	args, err := tokenABI.Methods["mint"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, testRecipient, args[0])
	assert.Equal(t, 0, amount.Cmp(args[1].(*big.Int)))
	assert.Equal(t, [32]byte(burnID), args[2])
}

func TestPackMint_Rejects(t *testing.T) {
	_, err := PackMint(testRecipient, big.NewInt(1), bridge.BurnID{})
	assert.Error(t, err)

	_, err = PackMint(testRecipient, big.NewInt(0), bridge.BurnID{0x01})
	assert.Error(t, err)
}

func TestPackBurn(t *testing.T) {
	data, err := PackBurn(testRecipient, big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, "0x9dc29fac", hexutil.Encode(data[:4]))

	_, err = PackBurn(common.Address{}, big.NewInt(42))
	assert.Error(t, err)
}

func tokenLog(t *testing.T, topic common.Hash, account common.Address, amount *big.Int, burnID bridge.BurnID) types.Log {
	t.Helper()
	data, err := tokenABI.Events[string(EventBurned)].Inputs.NonIndexed().Pack(amount)
	require.NoError(t, err)
	return types.Log{
		Address:     testToken,
		Topics:      []common.Hash{topic, common.BytesToHash(account.Bytes()), common.Hash(burnID)},
		Data:        data,
		BlockNumber: 77,
		TxHash:      common.HexToHash("0xabcdef"),
		BlockHash:   common.HexToHash("0x0b"),
		Index:       3,
	}
}

func TestParseTokenEvent(t *testing.T) {
	burnID := bridge.BurnID{0xaa}

	ev, err := ParseTokenEvent("sepolia", tokenLog(t, TokensBurnedTopic, testRecipient, big.NewInt(5), burnID))
	require.NoError(t, err)
	assert.Equal(t, EventBurned, ev.Kind)
	assert.Equal(t, testRecipient, ev.Account)
	assert.Equal(t, int64(5), ev.Amount.Int64())
	assert.Equal(t, burnID, ev.BurnID)
	assert.Equal(t, uint64(77), ev.BlockNumber)
	assert.Equal(t, uint(3), ev.LogIndex)

	ev, err = ParseTokenEvent("amoy", tokenLog(t, TokensMintedTopic, testRecipient, big.NewInt(9), burnID))
	require.NoError(t, err)
	assert.Equal(t, EventMinted, ev.Kind)
	assert.Equal(t, bridge.Network("amoy"), ev.Network)

	_, err = ParseTokenEvent("amoy", types.Log{Topics: []common.Hash{common.HexToHash("0x01")}})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestTokenEventQuery(t *testing.T) {
	to := uint64(200)
	q := TokenEventQuery(testToken, 100, &to)
	assert.Equal(t, []common.Address{testToken}, q.Addresses)
	assert.Equal(t, int64(100), q.FromBlock.Int64())
	assert.Equal(t, int64(200), q.ToBlock.Int64())
	assert.ElementsMatch(t, []common.Hash{TokensBurnedTopic, TokensMintedTopic}, q.Topics[0])

	assert.Nil(t, TokenEventQuery(testToken, 1, nil).ToBlock)
}
