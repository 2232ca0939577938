package v2pairsrepo

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/alexkalak/go_v2_router/common/periphery/pgdatabase"
)

var ErrInvalidReserve = errors.New("invalid reserve in v2 pair row")

type V2PairDBRepo interface {
	GetPairsByChainID(chainID uint) ([]models.UniswapV2Pair, error)
	GetNonDustyPairsByChainID(chainID uint) ([]models.UniswapV2Pair, error)
	UpsertPairs(pairs []models.UniswapV2Pair) error
	UpdatePairsReserves(pairs []models.UniswapV2Pair) error
	UpdatePairsIsDusty(pairs []models.UniswapV2Pair) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type v2pairDBRepo struct {
	pgDatabase *pgdatabase.PgDatabase
}

type V2PairDBRepoDependencies struct {
	Database *pgdatabase.PgDatabase
}

func (p *V2PairDBRepoDependencies) validate() error {
	if p.Database == nil {
		return errors.New("v2 pair repo database dependency cannot be nil")
	}

	return nil
}

func NewDBRepo(dependencies V2PairDBRepoDependencies) (V2PairDBRepo, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return &v2pairDBRepo{
		pgDatabase: dependencies.Database,
	}, nil
}

func selectPairs() sq.SelectBuilder {
	return psql.
		Select(
			models.UNISWAP_V2_PAIR_ADDRESS,
			models.UNISWAP_V2_PAIR_EXCHANGE_NAME,
			models.UNISWAP_V2_PAIR_CHAINID,
			models.UNISWAP_V2_PAIR_TOKEN0_ADDRESS,
			models.UNISWAP_V2_PAIR_TOKEN1_ADDRESS,
			models.UNISWAP_V2_PAIR_AMOUNT0,
			models.UNISWAP_V2_PAIR_AMOUNT1,
			models.UNISWAP_V2_PAIR_IS_DUSTY,
			models.UNISWAP_V2_PAIR_BLOCK_NUMBER,
		).
		From(models.UNISWAP_V2_PAIR_TABLE)
}

func parseReserve(column, value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	reserve, ok := new(big.Int).SetString(value, 10)
	if !ok || reserve.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidReserve, column, value)
	}
	return reserve, nil
}

func (r *v2pairDBRepo) query(query sq.SelectBuilder) ([]models.UniswapV2Pair, error) {
	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return nil, err
	}

	rows, err := query.
		RunWith(db).
		Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs = []models.UniswapV2Pair{}
	for rows.Next() {
		var pair models.UniswapV2Pair

		amount0Str := ""
		amount1Str := ""

		err := rows.Scan(
			&pair.Address,
			&pair.ExchangeName,
			&pair.ChainID,
			&pair.Token0,
			&pair.Token1,
			&amount0Str,
			&amount1Str,
			&pair.IsDusty,
			&pair.BlockNumber,
		)
		if err != nil {
			return nil, err
		}

		if pair.Amount0, err = parseReserve(models.UNISWAP_V2_PAIR_AMOUNT0, amount0Str); err != nil {
			return nil, err
		}
		if pair.Amount1, err = parseReserve(models.UNISWAP_V2_PAIR_AMOUNT1, amount1Str); err != nil {
			return nil, err
		}

		pairs = append(pairs, pair)
	}

	return pairs, rows.Err()
}

func (r *v2pairDBRepo) GetPairsByChainID(chainID uint) ([]models.UniswapV2Pair, error) {
	return r.query(selectPairs().Where(sq.Eq{models.UNISWAP_V2_PAIR_CHAINID: chainID}))
}

func (r *v2pairDBRepo) GetNonDustyPairsByChainID(chainID uint) ([]models.UniswapV2Pair, error) {
	return r.query(selectPairs().Where(sq.Eq{
		models.UNISWAP_V2_PAIR_CHAINID:  chainID,
		models.UNISWAP_V2_PAIR_IS_DUSTY: false,
	}))
}

func amountString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

func upsertPairsQuery(pairs []models.UniswapV2Pair) sq.InsertBuilder {
	query := psql.
		Insert(models.UNISWAP_V2_PAIR_TABLE).
		Columns(
			models.UNISWAP_V2_PAIR_ADDRESS,
			models.UNISWAP_V2_PAIR_EXCHANGE_NAME,
			models.UNISWAP_V2_PAIR_CHAINID,
			models.UNISWAP_V2_PAIR_TOKEN0_ADDRESS,
			models.UNISWAP_V2_PAIR_TOKEN1_ADDRESS,
			models.UNISWAP_V2_PAIR_AMOUNT0,
			models.UNISWAP_V2_PAIR_AMOUNT1,
			models.UNISWAP_V2_PAIR_IS_DUSTY,
			models.UNISWAP_V2_PAIR_BLOCK_NUMBER,
		)

	for _, pair := range pairs {
		query = query.Values(
			strings.ToLower(pair.Address),
			pair.ExchangeName,
			pair.ChainID,
			strings.ToLower(pair.Token0),
			strings.ToLower(pair.Token1),
			amountString(pair.Amount0),
			amountString(pair.Amount1),
			pair.IsDusty,
			pair.BlockNumber,
		)
	}

	return query.Suffix(fmt.Sprintf(
		"ON CONFLICT (%[1]s, %[2]s) DO UPDATE SET %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s, %[5]s = EXCLUDED.%[5]s, %[6]s = EXCLUDED.%[6]s",
		models.UNISWAP_V2_PAIR_ADDRESS,
		models.UNISWAP_V2_PAIR_CHAINID,
		models.UNISWAP_V2_PAIR_AMOUNT0,
		models.UNISWAP_V2_PAIR_AMOUNT1,
		models.UNISWAP_V2_PAIR_IS_DUSTY,
		models.UNISWAP_V2_PAIR_BLOCK_NUMBER,
	))
}

func (r *v2pairDBRepo) UpsertPairs(pairs []models.UniswapV2Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return err
	}

	_, err = upsertPairsQuery(pairs).RunWith(db).Exec()
	return err
}

func updatePairQuery(pair models.UniswapV2Pair, queryMap map[string]any) sq.UpdateBuilder {
	return psql.
		Update(models.UNISWAP_V2_PAIR_TABLE).
		SetMap(queryMap).
		Where(sq.Eq{
			models.UNISWAP_V2_PAIR_ADDRESS: strings.ToLower(pair.Address),
			models.UNISWAP_V2_PAIR_CHAINID: pair.ChainID,
		})
}

func (r *v2pairDBRepo) updatePairs(pairs []models.UniswapV2Pair, columns func(models.UniswapV2Pair) map[string]any) error {
	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	for _, pair := range pairs {
		_, err = updatePairQuery(pair, columns(pair)).RunWith(tx).Exec()
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func reservesColumns(pair models.UniswapV2Pair) map[string]any {
	return map[string]any{
		models.UNISWAP_V2_PAIR_AMOUNT0:      amountString(pair.Amount0),
		models.UNISWAP_V2_PAIR_AMOUNT1:      amountString(pair.Amount1),
		models.UNISWAP_V2_PAIR_BLOCK_NUMBER: pair.BlockNumber,
	}
}

func (r *v2pairDBRepo) UpdatePairsReserves(pairs []models.UniswapV2Pair) error {
	return r.updatePairs(pairs, reservesColumns)
}

func (r *v2pairDBRepo) UpdatePairsIsDusty(pairs []models.UniswapV2Pair) error {
	return r.updatePairs(pairs, func(pair models.UniswapV2Pair) map[string]any {
		return map[string]any{models.UNISWAP_V2_PAIR_IS_DUSTY: pair.IsDusty}
	})
}
