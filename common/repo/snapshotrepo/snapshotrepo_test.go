package snapshotrepo

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) SnapshotRepo {
	t.Helper()
	repo, err := New(SnapshotRepoConfig{Path: filepath.Join(t.TempDir(), "snapshot.db")})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(SnapshotRepoConfig{})
	require.Error(t, err)
}

func TestTokens(t *testing.T) {
	repo := newRepo(t)

	tokens, err := repo.GetTokens(1)
	require.NoError(t, err)
	require.Empty(t, tokens)

	dai := models.Token{Name: "Dai Stablecoin", Symbol: "DAI", Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", ChainID: 1, Decimals: 18}
	usdc := models.Token{Name: "USD Coin", Symbol: "USDC", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", ChainID: 1, Decimals: 6}
	require.NoError(t, repo.SaveTokens(1, []models.Token{dai, usdc}))
	require.NoError(t, repo.SaveTokens(1, []models.Token{dai}))

	tokens, err = repo.GetTokens(1)
	require.NoError(t, err)
	require.ElementsMatch(t, []models.Token{dai, usdc}, tokens)

	other, err := repo.GetTokens(5)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestPairs(t *testing.T) {
	repo := newRepo(t)

	pair := models.UniswapV2Pair{
		Address:      "0xAE461cA67B15dc8dc81CE7615e0320dA1A9aB8D5",
		ExchangeName: "uniswap_v2",
		ChainID:      1,
		Token0:       "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Token1:       "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Amount0:      big.NewInt(1000),
		Amount1:      big.NewInt(2000),
		BlockNumber:  10,
	}
	require.NoError(t, repo.SavePairs(1, []models.UniswapV2Pair{pair}))

	wrongChain := pair
	wrongChain.ChainID = 5
	require.Error(t, repo.SavePairs(1, []models.UniswapV2Pair{wrongChain}))

	updated := pair
	updated.Address = "0xae461ca67b15dc8dc81ce7615e0320da1a9ab8d5"
	updated.Amount0 = big.NewInt(1100)
	updated.Amount1 = big.NewInt(1819)
	updated.BlockNumber = 11
	require.NoError(t, repo.SetPair(updated))

	pairs, err := repo.GetPairs(1)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Equal(t, big.NewInt(1100), pairs[0].Amount0)
	require.Equal(t, uint64(11), pairs[0].BlockNumber)
}

func TestBlockNumber(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.GetBlockNumber(1)
	require.ErrorIs(t, err, ErrNoBlockNumber)

	require.NoError(t, repo.SetBlockNumber(1, 19000000))
	blockNumber, err := repo.GetBlockNumber(1)
	require.NoError(t, err)
	require.Equal(t, uint64(19000000), blockNumber)
}
