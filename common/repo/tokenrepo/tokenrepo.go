package tokenrepo

import (
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/alexkalak/go_v2_router/common/periphery/pgdatabase"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type TokenRepo interface {
	GetTokensByChainID(chainID uint) ([]models.Token, error)
	GetTokensByAddressesAndChainID(addresses []string, chainID uint) ([]models.Token, error)
	UpsertTokens(tokens []models.Token) error
}

type TokenRepoDependencies struct {
	Database *pgdatabase.PgDatabase
}

func (d *TokenRepoDependencies) validate() error {
	if d.Database == nil {
		return errors.New("token repo dependenices database cannot be nil")
	}

	return nil
}

type tokenRepo struct {
	pgDatabase *pgdatabase.PgDatabase
}

func New(dependencies TokenRepoDependencies) (TokenRepo, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return &tokenRepo{
		pgDatabase: dependencies.Database,
	}, nil
}

func selectTokens() sq.SelectBuilder {
	return psql.
		Select(
			models.TOKEN_NAME,
			models.TOKEN_SYMBOL,
			models.TOKEN_ADDRESS,
			models.TOKEN_CHAINID,
			models.TOKEN_LOGOURI,
			models.TOKEN_DECIMALS,
		).
		From(models.TOKENS_TABLE)
}

func lowerAll(addresses []string) []string {
	res := make([]string, 0, len(addresses))
	for _, address := range addresses {
		res = append(res, strings.ToLower(address))
	}
	return res
}

func (r *tokenRepo) query(query sq.SelectBuilder) ([]models.Token, error) {
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

	var tokens = []models.Token{}
	for rows.Next() {
		var token models.Token
		var logoURI *string
		err := rows.Scan(&token.Name, &token.Symbol, &token.Address, &token.ChainID, &logoURI, &token.Decimals)
		if err != nil {
			return nil, err
		}
		if logoURI != nil {
			token.LogoURI = *logoURI
		}

		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}

func (r *tokenRepo) GetTokensByChainID(chainID uint) ([]models.Token, error) {
	return r.query(selectTokens().Where(sq.Eq{models.TOKEN_CHAINID: chainID}))
}

func (r *tokenRepo) GetTokensByAddressesAndChainID(addresses []string, chainID uint) ([]models.Token, error) {
	if len(addresses) == 0 {
		return []models.Token{}, nil
	}

	return r.query(selectTokens().Where(sq.Eq{
		"LOWER(" + models.TOKEN_ADDRESS + ")": lowerAll(addresses),
		models.TOKEN_CHAINID:                  chainID,
	}))
}

func upsertTokensQuery(tokens []models.Token) sq.InsertBuilder {
	query := psql.
		Insert(models.TOKENS_TABLE).
		Columns(
			models.TOKEN_NAME,
			models.TOKEN_SYMBOL,
			models.TOKEN_ADDRESS,
			models.TOKEN_CHAINID,
			models.TOKEN_LOGOURI,
			models.TOKEN_DECIMALS,
		)

	for _, token := range tokens {
		query = query.Values(token.Name, token.Symbol, strings.ToLower(token.Address), token.ChainID, token.LogoURI, token.Decimals)
	}

	return query.Suffix(
		"ON CONFLICT (" + models.TOKEN_ADDRESS + ", " + models.TOKEN_CHAINID + ") DO UPDATE SET " +
			models.TOKEN_NAME + " = EXCLUDED." + models.TOKEN_NAME + ", " +
			models.TOKEN_SYMBOL + " = EXCLUDED." + models.TOKEN_SYMBOL + ", " +
			models.TOKEN_DECIMALS + " = EXCLUDED." + models.TOKEN_DECIMALS,
	)
}

func (r *tokenRepo) UpsertTokens(tokens []models.Token) error {
	if len(tokens) == 0 {
		return nil
	}

	db, err := r.pgDatabase.GetDB()
	if err != nil {
		return err
	}

	_, err = upsertTokensQuery(tokens).RunWith(db).Exec()
	return err
}
